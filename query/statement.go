package query

import (
	"geoq/feature"
	"github.com/hauke96/sigolo/v2"
)

type Statement struct {
	location   LocationExpression
	objectType ObjectType
	filter     FilterExpression
}

// NewStatement creates a new statement. A nil filter expression means that all located entities of the object type
// are part of the result.
func NewStatement(locationExpression LocationExpression, objectType ObjectType, filterExpression FilterExpression) *Statement {
	return &Statement{
		location:   locationExpression,
		objectType: objectType,
		filter:     filterExpression,
	}
}

func (s Statement) Applies(feature feature.Feature) (bool, error) {
	switch s.objectType {
	case ObjectPoints:
		if _, isShape := feature.GetShape(); isShape {
			return false, nil
		}
	case ObjectShapes:
		if _, isShape := feature.GetShape(); !isShape {
			return false, nil
		}
	}

	if s.filter == nil {
		return true, nil
	}
	return s.filter.Applies(feature)
}

func (s Statement) Execute(collection *Collection[feature.Feature]) (*Collection[feature.Feature], error) {
	if sigolo.ShouldLogTrace() {
		s.Print(0)
	}

	located, err := s.location.Select(collection)
	if err != nil {
		return nil, err
	}
	sigolo.Tracef("Location of statement selected %d entities", located.Len())

	return located.FilterWithError(s.Applies)
}

func (s Statement) Print(indent int) {
	sigolo.Debugf("%s%s", spacing(indent), "Statement")
	s.location.Print(indent + 2)
	sigolo.Debugf("%stype: %s", spacing(indent+2), s.objectType.String())
	if s.filter != nil {
		s.filter.Print(indent + 2)
	}
}

func (s Statement) GetLocationExpression() LocationExpression {
	return s.location
}

func (s Statement) GetObjectType() ObjectType {
	return s.objectType
}

func (s Statement) GetFilterExpression() FilterExpression {
	return s.filter
}
