package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"mapview/internal/layers/models"
	dErrors "mapview/pkg/domain-errors"
	"mapview/pkg/platform/sentinel"
)

type CatalogSuite struct {
	suite.Suite
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func minOf(v float64) *float64 { return &v }

func tractsLayer() models.LayerDescriptor {
	return models.LayerDescriptor{
		ID:     "tracts",
		Name:   "Tracts",
		Type:   models.RenderFill,
		Source: models.Source{ID: "tracts-src", Type: models.SourceGeoJSON},
		Fields: []string{"f1", "f2"},
		FieldLegends: map[string]models.FieldLegend{
			"f1": {LegendLabel: "Field one", Ranges: models.RangeLegend{
				{Min: minOf(0), Color: "#a", Label: "low"},
				{Min: minOf(10), Color: "#b", Label: "high"},
			}},
			"f2": {LegendLabel: "Field two", Ranges: models.RangeLegend{
				{Min: minOf(0), Color: "#c", Label: "any"},
			}},
		},
		Visible: true,
	}
}

func plainLayer(id string) models.LayerDescriptor {
	c := models.DirectColor("teal")
	return models.LayerDescriptor{
		ID:     id,
		Name:   id,
		Type:   models.RenderFill,
		Source: models.Source{ID: id + "-src", Type: models.SourceGeoJSON},
		Color:  &c,
	}
}

func (s *CatalogSuite) TestDefault() {
	c, err := Default()
	s.Require().NoError(err)

	ids := make([]string, 0, c.Len())
	for _, d := range c.List() {
		ids = append(ids, d.ID)
	}
	s.Equal([]string{
		"parcels", "zoning-layer", "tif-layer", "half-mile-buffer-layer",
		"austin-dda", "austin-qct", "census-tracts",
	}, ids, "declaration order must be preserved")
	s.Equal("census-tracts", c.MultiFieldLayer())

	parcels, err := c.Get("parcels")
	s.Require().NoError(err)
	s.Require().NotNil(parcels.Color)
	s.Equal(models.ExprStep, parcels.Color.Kind)
	s.True(parcels.Ranges.Thresholded())

	zoning, err := c.Get("zoning-layer")
	s.Require().NoError(err)
	s.Equal(models.ExprMatch, zoning.Color.Kind)
	s.Len(zoning.Color.Cases, 13)
	s.False(zoning.Ranges.Thresholded())
}

func (s *CatalogSuite) TestGet() {
	c, err := New(File{Layers: []models.LayerDescriptor{plainLayer("a")}})
	s.Require().NoError(err)

	s.Run("known id", func() {
		d, err := c.Get("a")
		s.NoError(err)
		s.Equal("a", d.ID)
	})

	s.Run("unknown id is not found", func() {
		_, err := c.Get("missing")
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})
}

func (s *CatalogSuite) TestSuggest() {
	c, err := Default()
	s.Require().NoError(err)

	id, ok := c.Suggest("parcel")
	s.True(ok)
	s.Equal("parcels", id)

	id, ok = c.Suggest("Austin-QCT")
	s.True(ok)
	s.Equal("austin-qct", id)

	_, ok = c.Suggest("roads")
	s.False(ok)
	_, ok = c.Suggest("")
	s.False(ok)

	field, ok := c.SuggestField("poverty-rate")
	s.True(ok)
	s.Equal("poverty_rate", field)

	empty, err := New(File{Layers: []models.LayerDescriptor{plainLayer("a")}})
	s.Require().NoError(err)
	_, ok = empty.SuggestField("f1")
	s.False(ok)
}

func (s *CatalogSuite) TestListIsACopy() {
	c, err := New(File{Layers: []models.LayerDescriptor{plainLayer("a"), plainLayer("b")}})
	s.Require().NoError(err)

	list := c.List()
	list[0] = list[1]
	s.Equal("a", c.List()[0].ID)
}

func (s *CatalogSuite) TestMultiFieldInference() {
	s.Run("single field layer is inferred", func() {
		c, err := New(File{Layers: []models.LayerDescriptor{plainLayer("a"), tractsLayer()}})
		s.Require().NoError(err)
		s.Equal("tracts", c.MultiFieldLayer())
	})

	s.Run("no field layer", func() {
		c, err := New(File{Layers: []models.LayerDescriptor{plainLayer("a")}})
		s.Require().NoError(err)
		s.Empty(c.MultiFieldLayer())
	})

	s.Run("two field layers need an explicit choice", func() {
		other := tractsLayer()
		other.ID = "other"
		_, err := New(File{Layers: []models.LayerDescriptor{tractsLayer(), other}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))

		c, err := New(File{MultiFieldLayer: "other", Layers: []models.LayerDescriptor{tractsLayer(), other}})
		s.Require().NoError(err)
		s.Equal("other", c.MultiFieldLayer())
	})

	s.Run("explicit layer must exist and declare fields", func() {
		_, err := New(File{MultiFieldLayer: "nope", Layers: []models.LayerDescriptor{tractsLayer()}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))

		_, err = New(File{MultiFieldLayer: "a", Layers: []models.LayerDescriptor{plainLayer("a")}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))
	})
}

func (s *CatalogSuite) TestValidation() {
	cases := map[string]func(d *models.LayerDescriptor){
		"missing id":          func(d *models.LayerDescriptor) { d.ID = "" },
		"unknown render type": func(d *models.LayerDescriptor) { d.Type = "polygon" },
		"missing source":      func(d *models.LayerDescriptor) { d.Source.ID = "" },
		"field without legend": func(d *models.LayerDescriptor) {
			d.Fields = append(d.Fields, "f3")
		},
		"legend for undeclared field": func(d *models.LayerDescriptor) {
			d.Fields = d.Fields[:1]
		},
		"duplicate field": func(d *models.LayerDescriptor) {
			d.Fields = append(d.Fields, "f1")
		},
		"empty field ranges": func(d *models.LayerDescriptor) {
			d.FieldLegends["f2"] = models.FieldLegend{LegendLabel: "x"}
		},
		"field range without min": func(d *models.LayerDescriptor) {
			d.FieldLegends["f2"] = models.FieldLegend{Ranges: models.RangeLegend{{Color: "#c", Label: "any"}}}
		},
		"descending thresholds": func(d *models.LayerDescriptor) {
			d.FieldLegends["f1"] = models.FieldLegend{Ranges: models.RangeLegend{
				{Min: minOf(10), Color: "#a"},
				{Min: minOf(5), Color: "#b"},
			}}
		},
		"equal thresholds": func(d *models.LayerDescriptor) {
			d.FieldLegends["f1"] = models.FieldLegend{Ranges: models.RangeLegend{
				{Min: minOf(5), Color: "#a"},
				{Min: minOf(5), Color: "#b"},
			}}
		},
		"range without color": func(d *models.LayerDescriptor) {
			d.Ranges = models.RangeLegend{{Label: "nothing"}}
		},
		"empty layer ranges": func(d *models.LayerDescriptor) {
			d.Ranges = models.RangeLegend{}
		},
		"mixed layer ranges": func(d *models.LayerDescriptor) {
			d.Ranges = models.RangeLegend{
				{Min: minOf(0), Color: "#a"},
				{Color: "#b"},
			}
		},
	}

	for name, mutate := range cases {
		s.Run(name, func() {
			d := tractsLayer()
			// field legends are shared by reference; copy before mutating
			legends := make(map[string]models.FieldLegend, len(d.FieldLegends))
			for k, v := range d.FieldLegends {
				legends[k] = v
			}
			d.FieldLegends = legends
			mutate(&d)

			_, err := New(File{Layers: []models.LayerDescriptor{d}})
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig), "got %v", err)
		})
	}

	s.Run("duplicate layer id", func() {
		_, err := New(File{Layers: []models.LayerDescriptor{plainLayer("a"), plainLayer("a")}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))
	})
}

func TestParse(t *testing.T) {
	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := Parse([]byte("layers:\n  - id: a\n    colour: red\n"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))
	})

	t.Run("layout and filter pass through", func(t *testing.T) {
		doc := `
layers:
  - id: roads
    name: Roads
    type: line
    source: {id: roads, type: vector, url: "mapbox://roads"}
    sourceLayer: roads
    color: "#333"
    layout: {line-join: round, line-cap: round}
    filter: ["==", ["get", "class"], "primary"]
`
		c, err := Parse([]byte(doc))
		require.NoError(t, err)
		d, err := c.Get("roads")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"line-join": "round", "line-cap": "round"}, d.Layout)
		assert.Equal(t, []any{"==", []any{"get", "class"}, "primary"}, d.Filter)
	})

	t.Run("non ascending thresholds fail fast", func(t *testing.T) {
		doc := `
layers:
  - id: a
    name: A
    type: fill
    source: {id: a, type: geojson}
    ranges:
      - {min: 5, color: "#111", label: five}
      - {min: 1, color: "#222", label: one}
`
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "range 1")
	})
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `{"layers":[{"id":"a","name":"A","type":"circle","source":{"id":"a","type":"geojson"},"color":"red","visible":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := FromFile(path)
	require.NoError(t, err)
	d, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, models.RenderCircle, d.Type)
	assert.True(t, d.Visible)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
