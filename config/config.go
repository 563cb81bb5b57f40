package config

import (
	"geoq/common"
	"geoq/geometry"
	"geoq/index"
	"geoq/query"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"os"
)

const lookupElevation = "lookup"

// Config is the content of the YAML configuration file. Missing fields keep the values of DefaultConfig.
type Config struct {
	Distance                string            `yaml:"distance"`
	Elevation               string            `yaml:"elevation"`
	ElevationSamples        []ElevationSample `yaml:"elevation_samples"`
	Dimensions              int               `yaml:"dimensions"`
	FanOut                  int               `yaml:"fan_out"`
	AttributeIndexCacheSize int               `yaml:"attribute_index_cache_size"`
	Region                  RegionConfig      `yaml:"region"`
	Web                     WebConfig         `yaml:"web"`
}

// ElevationSample is a known elevation in metres at a location. The "lookup" elevation strategy uses the elevation of
// the nearest sample for every point.
type ElevationSample struct {
	Lat       float64 `yaml:"lat"`
	Lon       float64 `yaml:"lon"`
	Elevation float64 `yaml:"elevation"`
}

// RegionConfig restricts imported entities to an area. Entities outside of it are rejected.
type RegionConfig struct {
	Name   string  `yaml:"name"`
	MinLat float64 `yaml:"min_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLat float64 `yaml:"max_lat"`
	MaxLon float64 `yaml:"max_lon"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

func DefaultConfig() *Config {
	defaultQueryConfig := query.DefaultConfig()
	return &Config{
		Distance:                defaultQueryConfig.Distance.Name(),
		Elevation:               defaultQueryConfig.Elevation.Name(),
		Dimensions:              defaultQueryConfig.Dimensions,
		FanOut:                  defaultQueryConfig.FanOut,
		AttributeIndexCacheSize: defaultQueryConfig.AttributeIndexCacheSize,
		Region: RegionConfig{
			Name:   geometry.World.Name,
			MinLat: geometry.MinLat,
			MinLon: geometry.MinLon,
			MaxLat: geometry.MaxLat,
			MaxLon: geometry.MaxLon,
		},
		Web: WebConfig{
			Port: 8080,
		},
	}
}

// Load reads the configuration file. An empty path results in the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		sigolo.Debugf("No config file given, use default configuration")
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read config file %s", path)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid config file %s", path)
	}

	sigolo.Debugf("Loaded config from %s: distance=%s, elevation=%s, dimensions=%d, fanOut=%d", path, config.Distance, config.Elevation, config.Dimensions, config.FanOut)
	return config, nil
}

// Parse reads the YAML data on top of the default configuration and validates the result.
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()

	err := yaml.Unmarshal(data, config)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse YAML")
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	_, err := geometry.DistanceStrategyByName(c.Distance)
	if err != nil {
		return err
	}

	if c.Elevation == lookupElevation {
		if len(c.ElevationSamples) == 0 {
			return common.NewValidationError("elevation_samples", nil, "elevation strategy '%s' needs at least one elevation sample", lookupElevation)
		}
		for i, sample := range c.ElevationSamples {
			_, err = geometry.NewPoint(sample.Lat, sample.Lon)
			if err != nil {
				return errors.Wrapf(err, "Invalid elevation sample %d", i)
			}
		}
	} else {
		_, err = geometry.ElevationStrategyByName(c.Elevation)
		if err != nil {
			return err
		}
	}

	if c.Dimensions != 2 && c.Dimensions != 3 {
		return common.NewValidationError("dimensions", c.Dimensions, "dimensions must be 2 or 3 but was %d", c.Dimensions)
	}
	if c.FanOut < 2 {
		return common.NewValidationError("fan_out", c.FanOut, "fan-out must be at least 2 but was %d", c.FanOut)
	}
	if c.AttributeIndexCacheSize < 1 {
		return common.NewValidationError("attribute_index_cache_size", c.AttributeIndexCacheSize, "attribute index cache size must be at least 1 but was %d", c.AttributeIndexCacheSize)
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return common.OutOfBoundsError("web.port", float64(c.Web.Port), 1, 65535)
	}

	_, err = c.GetRegion()
	return err
}

func (c *Config) GetRegion() (geometry.Region, error) {
	bound, err := geometry.NewBoundingBox(c.Region.MinLat, c.Region.MinLon, c.Region.MaxLat, c.Region.MaxLon)
	if err != nil {
		return geometry.Region{}, errors.Wrapf(err, "Invalid region '%s'", c.Region.Name)
	}
	return geometry.NewRegion(c.Region.Name, bound), nil
}

func (c *Config) GetElevationStrategy() (geometry.ElevationStrategy, error) {
	if c.Elevation != lookupElevation {
		return geometry.ElevationStrategyByName(c.Elevation)
	}

	var samplePoints []geometry.Point
	for _, sample := range c.ElevationSamples {
		p, err := geometry.NewPoint(sample.Lat, sample.Lon)
		if err != nil {
			return nil, err
		}
		samplePoints = append(samplePoints, p)
	}

	positions := make([]int, len(samplePoints))
	for i := range positions {
		positions[i] = i
	}
	tree, err := index.NewKDTree(positions, func(i int) geometry.Point {
		return samplePoints[i]
	}, 2, nil)
	if err != nil {
		return nil, err
	}

	return geometry.LookupElevation{
		Lookup: func(lat float64, lon float64) (float64, error) {
			p, err := geometry.NewPoint(lat, lon)
			if err != nil {
				return 0, err
			}
			nearest, err := tree.Nearest(p, 1, geometry.GreatCircle{})
			if err != nil {
				return 0, err
			}
			return c.ElevationSamples[nearest[0].Item].Elevation, nil
		},
	}, nil
}

// QueryConfig returns the configuration for new entity collections.
func (c *Config) QueryConfig() (query.Config, error) {
	distance, err := geometry.DistanceStrategyByName(c.Distance)
	if err != nil {
		return query.Config{}, err
	}

	elevation, err := c.GetElevationStrategy()
	if err != nil {
		return query.Config{}, err
	}

	return query.Config{
		Distance:                distance,
		Elevation:               elevation,
		Dimensions:              c.Dimensions,
		FanOut:                  c.FanOut,
		AttributeIndexCacheSize: c.AttributeIndexCacheSize,
	}, nil
}
