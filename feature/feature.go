package feature

import (
	"geoq/common"
	"geoq/geometry"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"sort"
)

// Feature is anything with an ID, a location and named attributes that can be indexed and queried.
type Feature interface {
	GetID() uint64
	GetGeometryType() GeometryType

	// GetPoint returns the location of point features and the representative point (centroid) of shapes.
	GetPoint() geometry.Point

	// GetShape returns the polygon of shape features and false for point features.
	GetShape() (*geometry.Polygon, bool)
	GetGeometry() orb.Geometry

	GetAttribute(key string) (Value, bool)
	GetAttributeKeys() []string
	Print()
}

// Entity is the immutable default implementation of Feature.
type Entity struct {
	id         uint64
	point      geometry.Point
	shape      *geometry.Polygon
	attributes map[string]Value
}

func NewPointEntity(id uint64, point geometry.Point, attributes map[string]Value) *Entity {
	return &Entity{
		id:         id,
		point:      point,
		attributes: copyAttributes(attributes),
	}
}

func NewShapeEntity(id uint64, shape *geometry.Polygon, attributes map[string]Value) (*Entity, error) {
	if shape == nil {
		return nil, common.NewValidationError("shape", nil, "shape of entity %d must not be nil", id)
	}

	return &Entity{
		id:         id,
		point:      shape.Centroid(),
		shape:      shape,
		attributes: copyAttributes(attributes),
	}, nil
}

func copyAttributes(attributes map[string]Value) map[string]Value {
	result := make(map[string]Value, len(attributes))
	for k, v := range attributes {
		result[k] = v
	}
	return result
}

func (e *Entity) GetID() uint64 {
	return e.id
}

func (e *Entity) GetGeometryType() GeometryType {
	if e.shape != nil {
		return GeometryShape
	}
	return GeometryPoint
}

func (e *Entity) GetPoint() geometry.Point {
	return e.point
}

func (e *Entity) GetShape() (*geometry.Polygon, bool) {
	return e.shape, e.shape != nil
}

func (e *Entity) GetGeometry() orb.Geometry {
	if e.shape != nil {
		return e.shape.Orb()
	}
	return e.point.Orb()
}

func (e *Entity) GetAttribute(key string) (Value, bool) {
	value, ok := e.attributes[key]
	return value, ok
}

// GetAttributeKeys returns all attribute keys in lexicographical order.
func (e *Entity) GetAttributeKeys() []string {
	keys := make([]string, 0, len(e.attributes))
	for k := range e.attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithAttribute returns a copy of this entity with the given attribute added or replaced.
func (e *Entity) WithAttribute(key string, value Value) *Entity {
	attributes := copyAttributes(e.attributes)
	attributes[key] = value
	return &Entity{
		id:         e.id,
		point:      e.point,
		shape:      e.shape,
		attributes: attributes,
	}
}

func (e *Entity) Print() {
	if !sigolo.ShouldLogTrace() {
		return
	}

	sigolo.Tracef("Entity:")
	sigolo.Tracef("  id=%d", e.id)
	sigolo.Tracef("  type=%s", e.GetGeometryType().String())
	sigolo.Tracef("  point=%s", e.point.String())
	if e.shape != nil {
		sigolo.Tracef("  shape vertices=%d", e.shape.Len())
	}
	for _, key := range e.GetAttributeKeys() {
		sigolo.Tracef("  %s=%s (%s)", key, e.attributes[key].String(), e.attributes[key].Kind().String())
	}
}
