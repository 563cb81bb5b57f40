package importing

import (
	"geoq/feature"
	"geoq/geometry"
	"geoq/util"
	"github.com/jonas-p/go-shp"
	"path/filepath"
	"testing"
)

func writeTestShapefile(t *testing.T) string {
	filename := filepath.Join(t.TempDir(), "stations.shp")
	writer, err := shp.Create(filename, shp.POINT)
	util.AssertNil(t, err)

	err = writer.SetFields([]shp.Field{
		shp.StringField("NAME", 25),
		shp.StringField("EXITS", 5),
	})
	util.AssertNil(t, err)

	points := []shp.Point{
		{X: 103.85, Y: 1.28},
		{X: 103.84, Y: 1.35},
		{X: 11.5, Y: 48.1},
	}
	names := []string{"Raffles Place", "Bishan", "Marienplatz"}
	exits := []string{"10", "4", "6"}
	for i := range points {
		writer.Write(&points[i])
		util.AssertNil(t, writer.WriteAttribute(i, 0, names[i]))
		util.AssertNil(t, writer.WriteAttribute(i, 1, exits[i]))
	}
	writer.Close()

	return filename
}

func TestImport_shapefile(t *testing.T) {
	// Arrange
	inputFile := writeTestShapefile(t)

	// Act
	entities, err := Import(inputFile, DefaultOptions())

	// Assert
	util.AssertNil(t, err)
	util.AssertLen(t, 3, entities)
	util.AssertEqual(t, uint64(1), entities[0].GetID())
	util.AssertTrue(t, entities[0].GetPoint().Equal(geometry.MustNewPoint(1.28, 103.85)))

	name, _ := entities[1].GetAttribute("NAME")
	util.AssertEqual(t, feature.Text("Bishan"), name)
	exitCount, _ := entities[1].GetAttribute("EXITS")
	util.AssertEqual(t, feature.Number(4), exitCount)
}

func TestImport_shapefileRegion(t *testing.T) {
	// Arrange
	inputFile := writeTestShapefile(t)
	bound, err := geometry.NewBoundingBox(1.1, 103.5, 1.5, 104.1)
	util.AssertNil(t, err)
	options := DefaultOptions()
	options.Region = geometry.NewRegion("singapore", bound)

	// Act
	entities, err := Import(inputFile, options)

	// Assert
	util.AssertNil(t, entities)
	util.AssertErrorContains(t, "Invalid shapefile record 2", err)

	// Act
	options.SkipInvalid = true
	entities, err = Import(inputFile, options)

	// Assert
	util.AssertNil(t, err)
	util.AssertLen(t, 2, entities)
}
