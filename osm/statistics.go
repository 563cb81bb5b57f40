package osm

import (
	"geoq/geometry"
	"github.com/paulmach/osm"
)

// OsmStatistics counts the objects of an OSM file and collects the extent of all valid node locations.
type OsmStatistics struct {
	NodeCount      int
	WayCount       int
	RelationCount  int
	InvalidNodes   int
	InputDataBound *geometry.BoundingBox
}

func NewOsmStatistics() *OsmStatistics {
	return &OsmStatistics{}
}

func (s *OsmStatistics) Name() string {
	return "OsmStatistics"
}

func (s *OsmStatistics) Init() error {
	s.NodeCount = 0
	s.WayCount = 0
	s.RelationCount = 0
	s.InvalidNodes = 0
	s.InputDataBound = nil
	return nil
}

func (s *OsmStatistics) HandleNode(node *osm.Node) error {
	s.NodeCount++

	point, err := geometry.NewPoint(node.Lat, node.Lon)
	if err != nil {
		s.InvalidNodes++
		return nil
	}

	if s.InputDataBound == nil {
		bound := geometry.BoundOf(point)
		s.InputDataBound = &bound
	} else {
		newBound := s.InputDataBound.Extend(point)
		s.InputDataBound = &newBound
	}

	return nil
}

func (s *OsmStatistics) HandleWay(way *osm.Way) error {
	s.WayCount++
	return nil
}

func (s *OsmStatistics) HandleRelation(relation *osm.Relation) error {
	s.RelationCount++
	return nil
}

func (s *OsmStatistics) Done() error {
	return nil
}
