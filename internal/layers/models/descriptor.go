package models

// RenderType is the renderer's drawing primitive for a layer.
type RenderType string

const (
	RenderFill       RenderType = "fill"
	RenderLine       RenderType = "line"
	RenderCircle     RenderType = "circle"
	RenderSymbol     RenderType = "symbol"
	RenderRaster     RenderType = "raster"
	RenderBackground RenderType = "background"
	RenderHillshade  RenderType = "hillshade"
	RenderHeatmap    RenderType = "heatmap"
)

// IsValid checks if the render type is one the renderer understands.
func (t RenderType) IsValid() bool {
	switch t {
	case RenderFill, RenderLine, RenderCircle, RenderSymbol,
		RenderRaster, RenderBackground, RenderHillshade, RenderHeatmap:
		return true
	}
	return false
}

// ColorProperty names the paint property that carries the layer's color
// expression for this render type.
func (t RenderType) ColorProperty() string {
	switch t {
	case RenderSymbol:
		return "text-color"
	case RenderHillshade:
		return "hillshade-accent-color"
	default:
		return string(t) + "-color"
	}
}

// SourceType identifies how the renderer obtains a layer's geometry.
type SourceType string

const (
	SourceVector  SourceType = "vector"
	SourceGeoJSON SourceType = "geojson"
	SourceRaster  SourceType = "raster"
	SourceImage   SourceType = "image"
)

// Source is an opaque reference handed to the renderer; nothing here fetches it.
type Source struct {
	ID      string     `json:"id"`
	Type    SourceType `json:"type"`
	URL     string     `json:"url,omitempty"`
	Tiles   []string   `json:"tiles,omitempty"`
	Data    string     `json:"data,omitempty"`
	MinZoom *float64   `json:"minzoom,omitempty"`
	MaxZoom *float64   `json:"maxzoom,omitempty"`
}

// TooltipField is one property shown in the click-to-inspect panel.
type TooltipField struct {
	Field string `json:"field"`
	Label string `json:"label,omitempty"`
}

// Tooltip configures the inspect panel for interactive layers.
type Tooltip struct {
	Enabled bool           `json:"enabled"`
	Fields  []TooltipField `json:"fields,omitempty"`
}

// FieldLegend is the legend and color ramp for one selectable field.
type FieldLegend struct {
	LegendLabel string      `json:"legendLabel"`
	Ranges      RangeLegend `json:"ranges"`
}

// LayerDescriptor is one entry of the layer catalog. Descriptors are never
// mutated after the catalog is built; derived styles are new values.
type LayerDescriptor struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Type         RenderType             `json:"type"`
	Source       Source                 `json:"source"`
	SourceLayer  string                 `json:"sourceLayer,omitempty"`
	Color        *Expression            `json:"color,omitempty"`
	Paint        map[string]any         `json:"paint,omitempty"`
	Layout       map[string]any         `json:"layout,omitempty"`
	Filter       []any                  `json:"filter,omitempty"`
	Fields       []string               `json:"fields,omitempty"`
	FieldLegends map[string]FieldLegend `json:"fieldLegends,omitempty"`
	LegendLabel  string                 `json:"legendLabel,omitempty"`
	Ranges       RangeLegend            `json:"ranges,omitempty"`
	Visible      bool                   `json:"visible"`
	Interactive  bool                   `json:"interactive"`
	Tooltip      *Tooltip               `json:"tooltip,omitempty"`
}

// HasField reports whether field is one of the layer's selectable fields.
func (d *LayerDescriptor) HasField(field string) bool {
	for _, f := range d.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// FieldLegend returns the legend configured for field, if any.
func (d *LayerDescriptor) FieldLegend(field string) (FieldLegend, bool) {
	fl, ok := d.FieldLegends[field]
	return fl, ok
}

// IsMultiField reports whether the layer's style is driven by a selected field.
func (d *LayerDescriptor) IsMultiField() bool {
	return len(d.Fields) > 0
}
