package web

import (
	"geoq/common"
	"geoq/geometry"
	"net/http"
	"strconv"
)

func stringParam(request *http.Request, name string) (string, error) {
	value := request.URL.Query().Get(name)
	if value == "" {
		return "", common.NewValidationError(name, nil, "missing parameter '%s'", name)
	}
	return value, nil
}

func floatParam(request *http.Request, name string) (float64, error) {
	raw, err := stringParam(request, name)
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, common.NewValidationError(name, raw, "parameter '%s' must be a number but was '%s'", name, raw)
	}
	return value, nil
}

func intParam(request *http.Request, name string) (int, error) {
	raw, err := stringParam(request, name)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationError(name, raw, "parameter '%s' must be an integer but was '%s'", name, raw)
	}
	return value, nil
}

func pointParam(request *http.Request) (geometry.Point, error) {
	lat, err := floatParam(request, "lat")
	if err != nil {
		return geometry.Point{}, err
	}
	lon, err := floatParam(request, "lon")
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.NewPoint(lat, lon)
}

// distanceParam returns nil when no strategy is given, so that the default strategy of the collection is used.
func distanceParam(request *http.Request) (geometry.DistanceStrategy, error) {
	name := request.URL.Query().Get("distance")
	if name == "" {
		return nil, nil
	}
	return geometry.DistanceStrategyByName(name)
}
