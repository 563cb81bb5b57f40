package importing

import (
	"context"
	"geoq/feature"
	"geoq/geometry"
	ownIo "geoq/io"
	ownOsm "geoq/osm"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

type Options struct {
	// Region in which all entities must lie.
	Region geometry.Region
	// SkipInvalid skips invalid objects instead of aborting the import.
	SkipInvalid bool
	// CategoryKeys are attribute keys whose values become categories instead of texts or numbers.
	CategoryKeys []string
}

func DefaultOptions() Options {
	return Options{
		Region: geometry.World,
	}
}

func (o Options) valueOf(key string, raw string) feature.Value {
	if slices.Contains(o.CategoryKeys, key) {
		return feature.Category(raw)
	}
	return feature.ParseValue(raw)
}

// Import reads the entities of an .osm, .pbf, .geojson or .shp file. OSM and GeoJSON files may be compressed with gzip
// (".gz") or zstd (".zst"). This is the validation boundary: every returned entity has valid geometry within the region
// of the options.
func Import(inputFile string, options Options) ([]feature.Feature, error) {
	sigolo.Infof("Start import of file %s", inputFile)
	importStartTime := time.Now()

	var entities []feature.Feature
	var err error
	if hasExtension(inputFile, ".shp") {
		entities, err = importShapefile(inputFile, options)
	} else {
		entities, err = importFile(inputFile, options)
	}
	if err != nil {
		return nil, err
	}

	importDuration := time.Since(importStartTime)
	sigolo.Infof("Finished import of %d entities in %s", len(entities), importDuration)

	return entities, nil
}

func importFile(inputFile string, options Options) ([]feature.Feature, error) {
	contentName := contentNameOf(inputFile)
	if !ownOsm.IsOsmFile(contentName) && !isGeoJsonFile(contentName) {
		return nil, errors.Errorf("Input file %s must be an .osm, .pbf, .geojson or .shp file", inputFile)
	}

	reader, err := openInput(inputFile)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if isGeoJsonFile(contentName) {
		features, err := ownIo.ReadFeaturesFromGeoJson(reader)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to read GeoJSON file %s", inputFile)
		}
		return validateFeatures(features, options)
	}

	format, err := ownOsm.FormatOfFile(contentName)
	if err != nil {
		return nil, err
	}
	return importOsm(reader, format, options)
}

func importOsm(reader io.Reader, format ownOsm.OsmFileFormat, options Options) ([]feature.Feature, error) {
	handler := NewEntityHandler(options)
	statistics := ownOsm.NewOsmStatistics()
	err := ownOsm.NewOsmReader().ReadFrom(context.Background(), reader, format, statistics, handler)
	if err != nil {
		return nil, err
	}

	sigolo.Debugf("Read %d nodes, %d ways and %d relations", statistics.NodeCount, statistics.WayCount, statistics.RelationCount)
	if statistics.InputDataBound != nil {
		sigolo.Debugf("Extent of input data: %s", statistics.InputDataBound.String())
	}
	if handler.Skipped() > 0 {
		sigolo.Infof("Skipped %d invalid objects", handler.Skipped())
	}

	return handler.Entities(), nil
}

// validateFeatures applies the region and category settings to features that were created outside of this package.
func validateFeatures(features []feature.Feature, options Options) ([]feature.Feature, error) {
	var result []feature.Feature
	for _, f := range features {
		err := validateInRegion(f, options.Region)
		if err != nil {
			if !options.SkipInvalid {
				return nil, errors.Wrapf(err, "Invalid entity %d", f.GetID())
			}
			sigolo.Debugf("Skip invalid entity %d: %s", f.GetID(), err.Error())
			continue
		}

		entity, ok := f.(*feature.Entity)
		if ok {
			for _, key := range options.CategoryKeys {
				value, hasKey := entity.GetAttribute(key)
				if hasKey && value.Kind() != feature.KindCategory {
					entity = entity.WithAttribute(key, feature.Category(value.String()))
				}
			}
			f = entity
		}

		result = append(result, f)
	}
	return result, nil
}

func validateInRegion(f feature.Feature, region geometry.Region) error {
	if shape, ok := f.GetShape(); ok {
		return region.ValidateAll(shape.Points()...)
	}
	return region.Validate(f.GetPoint())
}

func isGeoJsonFile(filename string) bool {
	return hasExtension(filename, ".geojson") || hasExtension(filename, ".json")
}

func hasExtension(filename string, extension string) bool {
	return strings.ToLower(filepath.Ext(filename)) == extension
}
