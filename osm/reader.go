package osm

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"io"
	"os"
	"time"
)

// OsmDataHandler receives all objects of an OSM file in the order of the file, which is usually nodes, then ways and
// relations.
type OsmDataHandler interface {
	Name() string
	Init() error
	HandleNode(node *osm.Node) error
	HandleWay(way *osm.Way) error
	HandleRelation(relation *osm.Relation) error
	Done() error
}

type OsmReader struct {
	firstWayHasBeenProcessed      bool
	firstRelationHasBeenProcessed bool
}

func NewOsmReader() *OsmReader {
	return &OsmReader{
		firstWayHasBeenProcessed:      false,
		firstRelationHasBeenProcessed: false,
	}
}

// Read opens the .osm or .pbf file and passes all its objects to the handlers.
func (r *OsmReader) Read(filename string, handlers ...OsmDataHandler) error {
	format, err := FormatOfFile(filename)
	if err != nil {
		return err
	}

	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to open OSM input file %s", filename)
	}
	defer file.Close()

	sigolo.Infof("Start processing OSM data file %s", filename)
	return r.ReadFrom(context.Background(), file, format, handlers...)
}

func (r *OsmReader) ReadFrom(ctx context.Context, reader io.Reader, format OsmFileFormat, handlers ...OsmDataHandler) error {
	var scanner osm.Scanner
	switch format {
	case OsmFormatXml:
		scanner = osmxml.New(ctx, reader)
	case OsmFormatPbf:
		scanner = osmpbf.New(ctx, reader, 1)
	default:
		return errors.Errorf("Unsupported OSM file format %d", format)
	}

	importStartTime := time.Now()
	r.firstWayHasBeenProcessed = false
	r.firstRelationHasBeenProcessed = false

	err := r.process(scanner, format, handlers)
	closeErr := scanner.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "Unable to close OSM scanner")
	}

	importDuration := time.Since(importStartTime)
	sigolo.Infof("Done processing OSM data in %s", importDuration)

	return nil
}

func (r *OsmReader) process(scanner osm.Scanner, format OsmFileFormat, handlers []OsmDataHandler) error {
	var err error
	for _, handler := range handlers {
		err = handler.Init()
		if err != nil {
			return errors.Wrapf(err, "Initializing OSM data handler '%s' failed", handler.Name())
		}
	}

	sigolo.Debugf("Start processing %s data, nodes first (1/3)", format.String())
	for scanner.Scan() {
		switch osmObj := scanner.Object().(type) {
		case *osm.Node:
			for _, handler := range handlers {
				err = handler.HandleNode(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling node %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		case *osm.Way:
			if !r.firstWayHasBeenProcessed {
				sigolo.Debug("Start processing ways (2/3)")
				r.firstWayHasBeenProcessed = true
			}

			for _, handler := range handlers {
				err = handler.HandleWay(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling way %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		case *osm.Relation:
			if !r.firstRelationHasBeenProcessed {
				sigolo.Debug("Start processing relations (3/3)")
				r.firstRelationHasBeenProcessed = true
			}

			for _, handler := range handlers {
				err = handler.HandleRelation(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling relation %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		}
	}

	err = scanner.Err()
	if err != nil {
		return errors.Wrapf(err, "Unable to scan %s data", format.String())
	}

	for _, handler := range handlers {
		err = handler.Done()
		if err != nil {
			return errors.Wrapf(err, "Calling done function on handler '%s' failed", handler.Name())
		}
	}

	return nil
}
