package osm

import (
	"fmt"
	"github.com/pkg/errors"
	"path/filepath"
	"strings"
)

// OsmObjectType is an enum for all the three existing object types in OpenStreetMap.
type OsmObjectType int

const (
	OsmObjNode OsmObjectType = iota
	OsmObjWay
	OsmObjRelation
)

func (o OsmObjectType) String() string {
	switch o {
	case OsmObjNode:
		return "node"
	case OsmObjWay:
		return "way"
	case OsmObjRelation:
		return "relation"
	}
	panic(fmt.Sprintf("[!UNKNOWN OsmObjectType %d]", o))
}

// OsmFileFormat is the encoding of an OSM data file.
type OsmFileFormat int

const (
	OsmFormatXml OsmFileFormat = iota
	OsmFormatPbf
)

func (f OsmFileFormat) String() string {
	switch f {
	case OsmFormatXml:
		return "xml"
	case OsmFormatPbf:
		return "pbf"
	}
	panic(fmt.Sprintf("[!UNKNOWN OsmFileFormat %d]", f))
}

// FormatOfFile determines the format by the file extension: ".osm" files are XML, ".pbf" files (e.g. ".osm.pbf") are
// protobuf encoded.
func FormatOfFile(filename string) (OsmFileFormat, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	switch extension {
	case ".osm":
		return OsmFormatXml, nil
	case ".pbf":
		return OsmFormatPbf, nil
	}
	return 0, errors.Errorf("Input file %s must be an .osm or .pbf file", filename)
}

// IsOsmFile returns true for file names with a supported OSM file extension.
func IsOsmFile(filename string) bool {
	_, err := FormatOfFile(filename)
	return err == nil
}
