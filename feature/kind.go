package feature

import "fmt"

type GeometryType int

const (
	GeometryPoint GeometryType = iota
	GeometryShape
)

func (g GeometryType) String() string {
	switch g {
	case GeometryPoint:
		return "point"
	case GeometryShape:
		return "shape"
	}
	return fmt.Sprintf("[!UNKNOWN GeometryType %d]", g)
}

type ValueKind int

const (
	KindNumber ValueKind = iota
	KindText
	KindCategory
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindCategory:
		return "category"
	}
	return fmt.Sprintf("[!UNKNOWN ValueKind %d]", k)
}
