package query

import (
	"fmt"
	"geoq/common"
)

type BinaryOperator int

const (
	BinOpInvalid BinaryOperator = iota
	BinOpEqual
	BinOpNotEqual
	BinOpGreater
	BinOpGreaterEqual
	BinOpLower
	BinOpLowerEqual
	BinOpMatches
)

func (o BinaryOperator) String() string {
	switch o {
	case BinOpEqual:
		return "="
	case BinOpNotEqual:
		return "!="
	case BinOpGreater:
		return ">"
	case BinOpGreaterEqual:
		return ">="
	case BinOpLower:
		return "<"
	case BinOpLowerEqual:
		return "<="
	case BinOpMatches:
		return "~"
	}
	return fmt.Sprintf("[!UNKNOWN BinaryOperator %d]", o)
}

// IsComparisonOperator returns true for operators >, >=, < and <=. The = and != operators are considered "equality" but
// not comparison operators.
func (o BinaryOperator) IsComparisonOperator() bool {
	return o == BinOpGreater || o == BinOpGreaterEqual || o == BinOpLower || o == BinOpLowerEqual
}

// evaluate applies the operator to the result of a three-way comparison of an attribute value and a filter value.
func (o BinaryOperator) evaluate(comparison int) (bool, error) {
	switch o {
	case BinOpEqual:
		return comparison == 0, nil
	case BinOpNotEqual:
		return comparison != 0, nil
	case BinOpGreater:
		return comparison > 0, nil
	case BinOpGreaterEqual:
		return comparison >= 0, nil
	case BinOpLower:
		return comparison < 0, nil
	case BinOpLowerEqual:
		return comparison <= 0, nil
	}
	return false, common.NewQueryError("filter", "operator %s is not a comparison", o.String())
}

type LogicalOperator int

const (
	LogicOpAnd LogicalOperator = iota
	LogicOpOr
	LogicOpNot
)

func (o LogicalOperator) String() string {
	switch o {
	case LogicOpAnd:
		return "AND"
	case LogicOpOr:
		return "OR"
	case LogicOpNot:
		return "NOT"
	}
	return fmt.Sprintf("[!UNKNOWN LogicalOperator %d]", o)
}

// Order is the direction of a sort.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	switch o {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return fmt.Sprintf("[!UNKNOWN Order %d]", o)
}

// ObjectType restricts the entities of a statement to points, shapes or both.
type ObjectType int

const (
	ObjectEntities ObjectType = iota
	ObjectPoints
	ObjectShapes
)

func (o ObjectType) String() string {
	switch o {
	case ObjectEntities:
		return "entities"
	case ObjectPoints:
		return "points"
	case ObjectShapes:
		return "shapes"
	}
	return fmt.Sprintf("[!UNKNOWN ObjectType %d]", o)
}
