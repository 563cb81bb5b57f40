package importing

import (
	"geoq/feature"
	"geoq/geometry"
	ownOsm "geoq/osm"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

const (
	OsmIdAttribute   = "@osm_id"
	OsmTypeAttribute = "@osm_type"
)

// EntityHandler turns tagged OSM nodes into point entities and tagged closed ways into shape entities. Untagged nodes
// are only kept as way geometry. Relations are not supported and ignored.
type EntityHandler struct {
	options       Options
	nodeLocations map[osm.NodeID]geometry.Point
	entities      []feature.Feature
	nextId        uint64
	skipped       int
}

func NewEntityHandler(options Options) *EntityHandler {
	return &EntityHandler{
		options: options,
	}
}

func (h *EntityHandler) Name() string {
	return "EntityHandler"
}

func (h *EntityHandler) Init() error {
	h.nodeLocations = map[osm.NodeID]geometry.Point{}
	h.entities = nil
	h.nextId = 1
	h.skipped = 0
	return nil
}

func (h *EntityHandler) HandleNode(node *osm.Node) error {
	point, err := geometry.NewPoint(node.Lat, node.Lon)
	if err != nil {
		return h.reject(ownOsm.OsmObjNode, int64(node.ID), err)
	}
	h.nodeLocations[node.ID] = point

	if len(node.Tags) == 0 {
		return nil
	}

	err = h.options.Region.Validate(point)
	if err != nil {
		return h.reject(ownOsm.OsmObjNode, int64(node.ID), err)
	}

	attributes := h.attributesOf(node.Tags, ownOsm.OsmObjNode, int64(node.ID))
	h.entities = append(h.entities, feature.NewPointEntity(h.nextId, point, attributes))
	h.nextId++

	return nil
}

func (h *EntityHandler) HandleWay(way *osm.Way) error {
	if len(way.Tags) == 0 || len(way.Nodes) < 4 || way.Nodes[0].ID != way.Nodes[len(way.Nodes)-1].ID {
		sigolo.Tracef("Skip way %d, it is untagged or not closed", way.ID)
		return nil
	}

	points := make([]geometry.Point, 0, len(way.Nodes))
	for _, wayNode := range way.Nodes {
		point, ok := h.nodeLocations[wayNode.ID]
		if !ok {
			return h.reject(ownOsm.OsmObjWay, int64(way.ID), errors.Errorf("node %d of way %d not found", wayNode.ID, way.ID))
		}
		points = append(points, point)
	}

	err := h.options.Region.ValidateAll(points...)
	if err != nil {
		return h.reject(ownOsm.OsmObjWay, int64(way.ID), err)
	}

	polygon, err := geometry.NewPolygon(points...)
	if err != nil {
		return h.reject(ownOsm.OsmObjWay, int64(way.ID), err)
	}

	attributes := h.attributesOf(way.Tags, ownOsm.OsmObjWay, int64(way.ID))
	entity, err := feature.NewShapeEntity(h.nextId, polygon, attributes)
	if err != nil {
		return h.reject(ownOsm.OsmObjWay, int64(way.ID), err)
	}
	h.entities = append(h.entities, entity)
	h.nextId++

	return nil
}

func (h *EntityHandler) HandleRelation(relation *osm.Relation) error {
	return nil
}

func (h *EntityHandler) Done() error {
	sigolo.Debugf("Created %d entities, skipped %d invalid objects", len(h.entities), h.skipped)
	h.nodeLocations = nil
	return nil
}

// Entities returns the entities created by the last read in the order of the input file.
func (h *EntityHandler) Entities() []feature.Feature {
	return h.entities
}

// Skipped returns the number of invalid objects of the last read. This is always 0 when invalid objects aren't skipped.
func (h *EntityHandler) Skipped() int {
	return h.skipped
}

func (h *EntityHandler) reject(objectType ownOsm.OsmObjectType, id int64, err error) error {
	if !h.options.SkipInvalid {
		return errors.Wrapf(err, "Invalid %s %d", objectType.String(), id)
	}

	sigolo.Debugf("Skip invalid %s %d: %s", objectType.String(), id, err.Error())
	h.skipped++
	return nil
}

func (h *EntityHandler) attributesOf(tags osm.Tags, objectType ownOsm.OsmObjectType, id int64) map[string]feature.Value {
	attributes := make(map[string]feature.Value, len(tags)+2)
	for _, tag := range tags {
		attributes[tag.Key] = h.options.valueOf(tag.Key, tag.Value)
	}
	attributes[OsmIdAttribute] = feature.Number(float64(id))
	attributes[OsmTypeAttribute] = feature.Category(objectType.String())
	return attributes
}
