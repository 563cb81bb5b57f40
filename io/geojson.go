package io

import (
	"fmt"
	"geoq/common"
	"geoq/feature"
	"geoq/geometry"
	"github.com/destel/rill"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"io"
	"os"
	"runtime"
	"sort"
	"time"
)

const (
	// IdProperty carries the entity ID next to the GeoJSON feature ID, so that also readers ignoring "id" see it.
	IdProperty = "@id"
	// CategoriesProperty lists the keys of all category attributes, since GeoJSON only knows strings.
	CategoriesProperty = "@categories"
)

func WriteFeaturesAsGeoJsonFile(features []feature.Feature, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to create GeoJSON file %s", filename)
	}

	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "Unable to close file handle for GeoJSON file %s", filename)
		}
	}()

	return WriteFeaturesAsGeoJson(features, file)
}

func WriteFeaturesAsGeoJson(features []feature.Feature, writer io.Writer) error {
	sigolo.Debug("Write features to GeoJSON")
	writeStartTime := time.Now()

	featureCollection := ToFeatureCollection(features)

	geojsonBytes, err := featureCollection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Unable to marshal GeoJSON feature collection")
	}

	_, err = writer.Write(geojsonBytes)
	if err != nil {
		return errors.Wrap(err, "Unable to write GeoJSON")
	}

	sigolo.Debugf("Finished writing %d features in %s", len(features), time.Since(writeStartTime))

	return nil
}

func ToFeatureCollection(features []feature.Feature) *geojson.FeatureCollection {
	featureCollection := geojson.NewFeatureCollection()
	for _, f := range features {
		featureCollection.Append(ToGeoJsonFeature(f))
	}
	return featureCollection
}

// ToGeoJsonFeature converts the entity into a GeoJSON feature. Numbers become JSON numbers, texts and categories become
// JSON strings.
func ToGeoJsonFeature(f feature.Feature) *geojson.Feature {
	geoJsonFeature := geojson.NewFeature(f.GetGeometry())
	geoJsonFeature.ID = f.GetID()
	geoJsonFeature.Properties[IdProperty] = f.GetID()

	var categories []string
	for _, key := range f.GetAttributeKeys() {
		value, _ := f.GetAttribute(key)
		if n, ok := value.Number(); ok {
			geoJsonFeature.Properties[key] = n
			continue
		}

		geoJsonFeature.Properties[key] = value.String()
		if value.Kind() == feature.KindCategory {
			categories = append(categories, key)
		}
	}

	if len(categories) > 0 {
		geoJsonFeature.Properties[CategoriesProperty] = categories
	}

	return geoJsonFeature
}

func ReadFeaturesFromGeoJsonFile(filename string) ([]feature.Feature, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open GeoJSON file %s", filename)
	}
	defer file.Close()

	features, err := ReadFeaturesFromGeoJson(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read GeoJSON file %s", filename)
	}
	return features, nil
}

func ReadFeaturesFromGeoJson(reader io.Reader) ([]feature.Feature, error) {
	readStartTime := time.Now()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to read GeoJSON data")
	}

	featureCollection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse GeoJSON feature collection")
	}

	type indexedFeature struct {
		index   int
		feature *geojson.Feature
	}
	indexedFeatures := make([]indexedFeature, len(featureCollection.Features))
	for i, geoJsonFeature := range featureCollection.Features {
		indexedFeatures[i] = indexedFeature{index: i, feature: geoJsonFeature}
	}

	// Conversion includes the geometry validation, so it's done in parallel. The order of the features is kept.
	converted := rill.OrderedMap(rill.FromSlice(indexedFeatures, nil), runtime.NumCPU(), func(f indexedFeature) (feature.Feature, error) {
		result, err := FromGeoJsonFeature(f.feature, uint64(f.index+1))
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid GeoJSON feature at index %d", f.index)
		}
		return result, nil
	})

	features, err := rill.ToSlice(converted)
	if err != nil {
		return nil, err
	}

	sigolo.Debugf("Read %d features from GeoJSON in %s", len(features), time.Since(readStartTime))

	return features, nil
}

// FromGeoJsonFeature creates a validated entity from the GeoJSON feature. Points become point entities and polygons
// shape entities. The ID is taken from the "@id" property, then from the feature ID and otherwise the fallback ID is
// used.
func FromGeoJsonFeature(geoJsonFeature *geojson.Feature, fallbackId uint64) (feature.Feature, error) {
	id := fallbackId
	if parsedId, ok := idOf(geoJsonFeature.Properties[IdProperty]); ok {
		id = parsedId
	} else if parsedId, ok := idOf(geoJsonFeature.ID); ok {
		id = parsedId
	}

	categories := map[string]bool{}
	if rawCategories, ok := geoJsonFeature.Properties[CategoriesProperty].([]interface{}); ok {
		for _, rawCategory := range rawCategories {
			categories[fmt.Sprint(rawCategory)] = true
		}
	}

	attributes := map[string]feature.Value{}
	for _, key := range sortedPropertyKeys(geoJsonFeature.Properties) {
		if key == IdProperty || key == CategoriesProperty {
			continue
		}

		switch value := geoJsonFeature.Properties[key].(type) {
		case nil:
			continue
		case float64:
			attributes[key] = feature.Number(value)
		case string:
			if categories[key] {
				attributes[key] = feature.Category(value)
			} else {
				attributes[key] = feature.Text(value)
			}
		default:
			attributes[key] = feature.Text(fmt.Sprint(value))
		}
	}

	switch g := geoJsonFeature.Geometry.(type) {
	case orb.Point:
		point, err := geometry.PointFromOrb(g)
		if err != nil {
			return nil, err
		}
		return feature.NewPointEntity(id, point, attributes), nil
	case orb.Polygon:
		polygon, err := geometry.PolygonFromOrb(g)
		if err != nil {
			return nil, err
		}
		entity, err := feature.NewShapeEntity(id, polygon, attributes)
		if err != nil {
			return nil, err
		}
		return entity, nil
	case nil:
		return nil, common.NewValidationError("geometry", nil, "feature %d has no geometry", id)
	}

	return nil, common.NewValidationError("geometry", geoJsonFeature.Geometry.GeoJSONType(), "geometry type %s of feature %d is not supported", geoJsonFeature.Geometry.GeoJSONType(), id)
}

func idOf(rawId interface{}) (uint64, bool) {
	switch id := rawId.(type) {
	case float64:
		if id >= 0 && id == float64(uint64(id)) {
			return uint64(id), true
		}
	case uint64:
		return id, true
	}
	return 0, false
}

func sortedPropertyKeys(properties geojson.Properties) []string {
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
