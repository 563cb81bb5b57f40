package main

import (
	"fmt"
	"geoq/config"
	"geoq/feature"
	"geoq/geometry"
	"geoq/importing"
	ownIo "geoq/io"
	ownOsm "geoq/osm"
	"geoq/parser"
	"geoq/query"
	"geoq/web"
	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/hauke96/sigolo/v2"
	"os"
	"strings"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging      string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info"`
	Version      VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Config       string      `help:"YAML configuration file." short:"c" type:"path"`
	Output       string      `help:"GeoJSON output file. The result is written to stdout if not set." short:"o" type:"path"`
	SkipInvalid  bool        `help:"Skip invalid input objects instead of aborting."`
	CategoryKeys []string    `help:"Attribute keys whose values are categories." placeholder:"<key>"`
	Import       struct {
		Input string `help:"The input file. Either .osm, .osm.pbf, .geojson or .shp. OSM and GeoJSON files may be compressed (.gz, .zst)." placeholder:"<input-file>" arg:"" type:"existingfile"`
	} `cmd:"" help:"Validates the given input file and writes its entities as GeoJSON."`
	Nearest struct {
		Input string  `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Lat   float64 `help:"Latitude of the query location." required:""`
		Lon   float64 `help:"Longitude of the query location." required:""`
		K     int     `help:"Number of entities to return." short:"k" default:"1"`
	} `cmd:"" help:"Returns the k entities nearest to the location."`
	Within struct {
		Input  string  `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Lat    float64 `help:"Latitude of the query location." required:""`
		Lon    float64 `help:"Longitude of the query location." required:""`
		Radius float64 `help:"Radius in kilometres." short:"r" required:""`
	} `cmd:"" help:"Returns all entities within the radius around the location."`
	Containing struct {
		Input string  `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Lat   float64 `help:"Latitude of the query location." required:""`
		Lon   float64 `help:"Longitude of the query location." required:""`
	} `cmd:"" help:"Returns all shapes containing the location."`
	Overlapping struct {
		Input  string  `placeholder:"<input-file>" arg:"" type:"existingfile"`
		MinLat float64 `help:"Minimum latitude of the box." required:""`
		MinLon float64 `help:"Minimum longitude of the box." required:""`
		MaxLat float64 `help:"Maximum latitude of the box." required:""`
		MaxLon float64 `help:"Maximum longitude of the box." required:""`
	} `cmd:"" help:"Returns all shapes overlapping the box."`
	Search struct {
		Input   string `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Key     string `help:"Attribute to search in." short:"k" required:""`
		Pattern string `help:"Regular expression the attribute value must match." short:"p" required:""`
	} `cmd:"" help:"Returns all entities with an attribute value matching the pattern."`
	Sort struct {
		Input      string `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Attribute  string `help:"Attribute to sort by." short:"a" required:""`
		Descending bool   `help:"Sort in descending order." short:"d"`
	} `cmd:"" help:"Returns all entities sorted by the attribute."`
	Median struct {
		Input     string `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Attribute string `help:"Numeric attribute." short:"a" required:""`
	} `cmd:"" help:"Prints the median of a numeric attribute."`
	Groups struct {
		Input     string `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Attribute string `help:"Attribute to group by." short:"a" required:""`
	} `cmd:"" help:"Prints the number of entities per attribute value."`
	Query struct {
		Input string `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Query string `help:"The query string." placeholder:"<query>" arg:""`
	} `cmd:"" help:"Returns the entities for the given query."`
	Stats struct {
		Input string `help:"The OSM input file, either .osm or .osm.pbf." placeholder:"<input-file>" arg:"" type:"existingfile"`
	} `cmd:"" help:"Prints the number of objects and the extent of an OSM file."`
	Serve struct {
		Input string `placeholder:"<input-file>" arg:"" type:"existingfile"`
		Port  int    `help:"Port of the HTTP server. Overrides the port of the configuration." short:"p"`
	} `cmd:"" help:"Starts the HTTP query API."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("geoq"),
		kong.Description("Indexed spatial and attribute queries on geographic entities."),
		kong.Vars{
			"version": VERSION,
		},
	)

	if strings.ToLower(cli.Logging) == "debug" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	} else if strings.ToLower(cli.Logging) == "trace" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	} else if strings.ToLower(cli.Logging) == "info" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	} else {
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", cli.Logging)
	}

	appConfig, err := config.Load(cli.Config)
	sigolo.FatalCheck(err)

	var result *query.Collection[feature.Feature]

	switch ctx.Command() {
	case "import <input>":
		result = loadCollection(appConfig, cli.Import.Input)
	case "nearest <input>":
		collection := loadCollection(appConfig, cli.Nearest.Input)
		result, err = collection.NearestTo(mustPoint(cli.Nearest.Lat, cli.Nearest.Lon), cli.Nearest.K, nil)
	case "within <input>":
		collection := loadCollection(appConfig, cli.Within.Input)
		result, err = collection.Within(mustPoint(cli.Within.Lat, cli.Within.Lon), cli.Within.Radius, nil)
	case "containing <input>":
		collection := loadCollection(appConfig, cli.Containing.Input)
		result, err = collection.ShapesContaining(mustPoint(cli.Containing.Lat, cli.Containing.Lon))
	case "overlapping <input>":
		collection := loadCollection(appConfig, cli.Overlapping.Input)
		box, boxErr := geometry.NewBoundingBox(cli.Overlapping.MinLat, cli.Overlapping.MinLon, cli.Overlapping.MaxLat, cli.Overlapping.MaxLon)
		sigolo.FatalCheck(boxErr)
		result, err = collection.ShapesOverlapping(box)
	case "search <input>":
		collection := loadCollection(appConfig, cli.Search.Input)
		result, err = collection.SearchRegex(cli.Search.Key, cli.Search.Pattern)
	case "sort <input>":
		collection := loadCollection(appConfig, cli.Sort.Input)
		order := query.Ascending
		if cli.Sort.Descending {
			order = query.Descending
		}
		result, err = collection.SortByAttribute(cli.Sort.Attribute, order)
	case "median <input>":
		collection := loadCollection(appConfig, cli.Median.Input)
		median, medianErr := collection.MedianOfAttribute(cli.Median.Attribute)
		sigolo.FatalCheck(medianErr)
		fmt.Printf("%s: %s\n", cli.Median.Attribute, humanize.Ftoa(median))
		return
	case "groups <input>":
		collection := loadCollection(appConfig, cli.Groups.Input)
		groups := collection.GroupByAttribute(cli.Groups.Attribute)
		for _, key := range groups.SortedKeys() {
			group, _ := groups.Get(key)
			fmt.Printf("%s\t%s\n", key, humanize.Comma(int64(group.Len())))
		}
		return
	case "query <input> <query>":
		collection := loadCollection(appConfig, cli.Query.Input)
		q, parseErr := parser.ParseQueryString(cli.Query.Query)
		sigolo.FatalCheck(parseErr)
		result, err = q.Execute(collection)
	case "stats <input>":
		statistics := ownOsm.NewOsmStatistics()
		err = ownOsm.NewOsmReader().Read(cli.Stats.Input, statistics)
		sigolo.FatalCheck(err)
		fmt.Printf("Nodes:     %s (%s invalid)\n", humanize.Comma(int64(statistics.NodeCount)), humanize.Comma(int64(statistics.InvalidNodes)))
		fmt.Printf("Ways:      %s\n", humanize.Comma(int64(statistics.WayCount)))
		fmt.Printf("Relations: %s\n", humanize.Comma(int64(statistics.RelationCount)))
		if statistics.InputDataBound != nil {
			fmt.Printf("Extent:    %s\n", statistics.InputDataBound.String())
		}
		return
	case "serve <input>":
		collection := loadCollection(appConfig, cli.Serve.Input)
		port := appConfig.Web.Port
		if cli.Serve.Port != 0 {
			port = cli.Serve.Port
		}
		web.StartServer(port, collection)
		return
	default:
		sigolo.Fatalf("Unknown command '%s'", ctx.Command())
	}
	sigolo.FatalCheck(err)

	sigolo.Infof("Found %s entities", humanize.Comma(int64(result.Len())))
	writeResult(result)
}

func loadCollection(appConfig *config.Config, inputFile string) *query.Collection[feature.Feature] {
	region, err := appConfig.GetRegion()
	sigolo.FatalCheck(err)

	entities, err := importing.Import(inputFile, importing.Options{
		Region:       region,
		SkipInvalid:  cli.SkipInvalid,
		CategoryKeys: cli.CategoryKeys,
	})
	sigolo.FatalCheck(err)

	queryConfig, err := appConfig.QueryConfig()
	sigolo.FatalCheck(err)

	sigolo.Infof("Loaded %s entities from %s", humanize.Comma(int64(len(entities))), inputFile)
	return query.NewCollection(entities, queryConfig)
}

func mustPoint(lat float64, lon float64) geometry.Point {
	point, err := geometry.NewPoint(lat, lon)
	sigolo.FatalCheck(err)
	return point
}

func writeResult(result *query.Collection[feature.Feature]) {
	if cli.Output != "" {
		err := ownIo.WriteFeaturesAsGeoJsonFile(result.Items(), cli.Output)
		sigolo.FatalCheck(err)
		sigolo.Infof("Wrote result to %s", cli.Output)
		return
	}

	err := ownIo.WriteFeaturesAsGeoJson(result.Items(), os.Stdout)
	sigolo.FatalCheck(err)
	fmt.Println()
}
