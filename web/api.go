package web

import (
	"encoding/json"
	"fmt"
	"geoq/common"
	"geoq/feature"
	"geoq/geometry"
	ownIo "geoq/io"
	"geoq/parser"
	"geoq/query"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"io"
	"net/http"
	"strconv"
)

const maxLengthOfPrintedQuery = 10000

type ErrorResponse struct {
	Error   string `json:"error"`
	Details error  `json:"details"`
}

func NewErrorResponse(message string, err error) ErrorResponse {
	return ErrorResponse{
		Error:   message,
		Details: err,
	}
}

type MedianResponse struct {
	Attribute string  `json:"attribute"`
	Median    float64 `json:"median"`
	Count     int     `json:"count"`
}

// Server answers spatial and attribute queries on one entity collection. All endpoints except /median respond with a
// GeoJSON feature collection.
type Server struct {
	collection *query.Collection[feature.Feature]
	router     *mux.Router
}

func NewServer(collection *query.Collection[feature.Feature]) *Server {
	s := &Server{
		collection: collection,
	}
	s.router = s.initRouter()
	return s
}

func StartServer(port int, collection *query.Collection[feature.Feature]) {
	server := NewServer(collection)
	sigolo.Infof("Start server on port %d with %d entities", port, collection.Len())
	err := http.ListenAndServe(":"+strconv.Itoa(port), server)
	sigolo.FatalCheck(err)
}

func (s *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.router.ServeHTTP(writer, request)
}

func (s *Server) initRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/entities/{id:[0-9]+}", s.geoJsonHandler(s.handleEntity)).Methods(http.MethodGet)
	r.HandleFunc("/nearest", s.geoJsonHandler(s.handleNearest)).Methods(http.MethodGet)
	r.HandleFunc("/within", s.geoJsonHandler(s.handleWithin)).Methods(http.MethodGet)
	r.HandleFunc("/containing", s.geoJsonHandler(s.handleContaining)).Methods(http.MethodGet)
	r.HandleFunc("/overlapping", s.geoJsonHandler(s.handleOverlapping)).Methods(http.MethodGet)
	r.HandleFunc("/search", s.geoJsonHandler(s.handleSearch)).Methods(http.MethodGet)
	r.HandleFunc("/range", s.geoJsonHandler(s.handleRange)).Methods(http.MethodGet)
	r.HandleFunc("/median", s.handleMedian).Methods(http.MethodGet)
	r.HandleFunc("/query", s.geoJsonHandler(s.handleQuery)).Methods(http.MethodPost)
	return r
}

type collectionHandler func(request *http.Request) (*query.Collection[feature.Feature], error)

func (s *Server) geoJsonHandler(handler collectionHandler) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")
		writer.Header().Set("Content-Type", "application/json")

		sigolo.Debugf("Handle %s %s", request.Method, request.URL.String())

		result, err := handler(request)
		if err != nil {
			writeError(writer, err)
			return
		}

		sigolo.Debugf("Found %d entities", result.Len())

		err = ownIo.WriteFeaturesAsGeoJson(result.Items(), writer)
		if err != nil {
			sigolo.Errorf("Error writing query result: %+v", err)
		}
	}
}

func (s *Server) handleEntity(request *http.Request) (*query.Collection[feature.Feature], error) {
	id, err := strconv.ParseUint(mux.Vars(request)["id"], 10, 64)
	if err != nil {
		return nil, common.NewValidationError("id", mux.Vars(request)["id"], "invalid entity ID")
	}

	result := s.collection.Filter(func(f feature.Feature) bool {
		return f.GetID() == id
	})
	if result.IsEmpty() {
		return nil, errNotFound{message: fmt.Sprintf("Entity %d not found", id)}
	}
	return result, nil
}

func (s *Server) handleNearest(request *http.Request) (*query.Collection[feature.Feature], error) {
	point, err := pointParam(request)
	if err != nil {
		return nil, err
	}
	k, err := intParam(request, "k")
	if err != nil {
		return nil, err
	}
	strategy, err := distanceParam(request)
	if err != nil {
		return nil, err
	}
	return s.collection.NearestTo(point, k, strategy)
}

func (s *Server) handleWithin(request *http.Request) (*query.Collection[feature.Feature], error) {
	point, err := pointParam(request)
	if err != nil {
		return nil, err
	}
	radius, err := floatParam(request, "radius")
	if err != nil {
		return nil, err
	}
	strategy, err := distanceParam(request)
	if err != nil {
		return nil, err
	}
	return s.collection.Within(point, radius, strategy)
}

func (s *Server) handleContaining(request *http.Request) (*query.Collection[feature.Feature], error) {
	point, err := pointParam(request)
	if err != nil {
		return nil, err
	}
	return s.collection.ShapesContaining(point)
}

func (s *Server) handleOverlapping(request *http.Request) (*query.Collection[feature.Feature], error) {
	var coordinates [4]float64
	for i, name := range []string{"minLat", "minLon", "maxLat", "maxLon"} {
		value, err := floatParam(request, name)
		if err != nil {
			return nil, err
		}
		coordinates[i] = value
	}

	box, err := geometry.NewBoundingBox(coordinates[0], coordinates[1], coordinates[2], coordinates[3])
	if err != nil {
		return nil, err
	}
	return s.collection.ShapesOverlapping(box)
}

func (s *Server) handleSearch(request *http.Request) (*query.Collection[feature.Feature], error) {
	key, err := stringParam(request, "key")
	if err != nil {
		return nil, err
	}
	pattern, err := stringParam(request, "pattern")
	if err != nil {
		return nil, err
	}
	return s.collection.SearchRegex(key, pattern)
}

func (s *Server) handleRange(request *http.Request) (*query.Collection[feature.Feature], error) {
	attribute, err := stringParam(request, "attribute")
	if err != nil {
		return nil, err
	}
	lo, err := floatParam(request, "min")
	if err != nil {
		return nil, err
	}
	hi, err := floatParam(request, "max")
	if err != nil {
		return nil, err
	}
	return s.collection.RangeByAttribute(attribute, lo, hi)
}

func (s *Server) handleQuery(request *http.Request) (*query.Collection[feature.Feature], error) {
	queryBytes, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, err
	}

	queryString := string(queryBytes)

	trimmedQueryString := queryString
	queryRunes := []rune(queryString)
	if len(queryRunes) > maxLengthOfPrintedQuery {
		trimmedQueryString = string(queryRunes[:maxLengthOfPrintedQuery]) + "... [truncated]"
	}
	sigolo.Infof("Query:\n%s", trimmedQueryString)

	queryObj, err := parser.ParseQueryString(queryString)
	if err != nil {
		return nil, err
	}

	return queryObj.Execute(s.collection)
}

func (s *Server) handleMedian(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Access-Control-Allow-Origin", "*")
	writer.Header().Set("Content-Type", "application/json")

	attribute, err := stringParam(request, "attribute")
	if err != nil {
		writeError(writer, err)
		return
	}

	median, err := s.collection.MedianOfAttribute(attribute)
	if err != nil {
		writeError(writer, err)
		return
	}

	count := 0
	s.collection.Each(func(i int, f feature.Feature) bool {
		if _, ok := f.GetAttribute(attribute); ok {
			count++
		}
		return true
	})

	writeJson(writer, http.StatusOK, MedianResponse{
		Attribute: attribute,
		Median:    median,
		Count:     count,
	})
}

type errNotFound struct {
	message string
}

func (e errNotFound) Error() string {
	return e.message
}

// statusOf maps errors caused by the request to 4xx and everything else to 500.
func statusOf(err error) int {
	if _, ok := err.(errNotFound); ok {
		return http.StatusNotFound
	}
	if parser.IsParsingError(err) || common.IsQueryError(err) || common.IsValidationError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(writer http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		sigolo.Errorf("Error handling request: %+v", err)
	} else {
		sigolo.Debugf("Invalid request: %s", err.Error())
	}

	writeJson(writer, status, NewErrorResponse(err.Error(), err))
}

func writeJson(writer http.ResponseWriter, status int, value any) {
	responseBytes, err := json.Marshal(value)
	if err != nil {
		sigolo.Errorf("Error creating and marshalling response object: %+v", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(status)
	_, err = writer.Write(responseBytes)
	if err != nil {
		sigolo.Errorf("Error writing response: %+v", err)
	}
}
