package importing

import (
	"geoq/feature"
	"geoq/geometry"
	"github.com/hauke96/sigolo/v2"
	"github.com/jonas-p/go-shp"
	"github.com/pkg/errors"
	"strings"
)

// importShapefile reads point and polygon records of an ESRI shapefile. The attributes are taken from the .dbf file
// next to it. Only the first ring of polygons is used, since further rings are holes or additional parts.
func importShapefile(inputFile string, options Options) ([]feature.Feature, error) {
	reader, err := shp.Open(inputFile)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open shapefile %s", inputFile)
	}
	defer reader.Close()

	fields := reader.Fields()
	fieldNames := make([]string, len(fields))
	for i, field := range fields {
		fieldNames[i] = strings.TrimRight(string(field.Name[:]), "\x00 ")
	}

	var entities []feature.Feature
	skipped := 0
	for reader.Next() {
		row, shape := reader.Shape()

		attributes := map[string]feature.Value{}
		for i, name := range fieldNames {
			raw := strings.TrimSpace(strings.Trim(reader.ReadAttribute(row, i), "\x00"))
			if raw == "" {
				continue
			}
			attributes[name] = options.valueOf(name, raw)
		}

		id := uint64(row + 1)
		entity, err := shapefileEntity(id, shape, attributes, options.Region)
		if err != nil {
			if !options.SkipInvalid {
				return nil, errors.Wrapf(err, "Invalid shapefile record %d", row)
			}
			sigolo.Debugf("Skip invalid shapefile record %d: %s", row, err.Error())
			skipped++
			continue
		}
		if entity == nil {
			sigolo.Tracef("Skip shapefile record %d with unsupported shape type %T", row, shape)
			continue
		}

		entities = append(entities, entity)
	}

	if skipped > 0 {
		sigolo.Infof("Skipped %d invalid records", skipped)
	}

	return entities, nil
}

// shapefileEntity returns nil without error for shape types that can't be represented as entity, e.g. lines.
func shapefileEntity(id uint64, shape shp.Shape, attributes map[string]feature.Value, region geometry.Region) (feature.Feature, error) {
	switch s := shape.(type) {
	case *shp.Point:
		point, err := geometry.NewPoint(s.Y, s.X)
		if err != nil {
			return nil, err
		}
		err = region.Validate(point)
		if err != nil {
			return nil, err
		}
		return feature.NewPointEntity(id, point, attributes), nil
	case *shp.Polygon:
		end := len(s.Points)
		if len(s.Parts) > 1 {
			end = int(s.Parts[1])
		}

		var points []geometry.Point
		for _, shpPoint := range s.Points[:end] {
			point, err := geometry.NewPoint(shpPoint.Y, shpPoint.X)
			if err != nil {
				return nil, err
			}
			points = append(points, point)
		}

		err := region.ValidateAll(points...)
		if err != nil {
			return nil, err
		}

		polygon, err := geometry.NewPolygon(points...)
		if err != nil {
			return nil, err
		}
		entity, err := feature.NewShapeEntity(id, polygon, attributes)
		if err != nil {
			return nil, err
		}
		return entity, nil
	}
	return nil, nil
}
