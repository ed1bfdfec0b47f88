// Package controller owns one viewer's layer visibility and selected field.
//
// The multi-field layer's visibility follows the selected field: selecting a
// field shows it, clearing the field hides it. A direct toggle of that layer
// is still honoured, and it always clears the selected field, so a selected
// field never coexists with a hidden multi-field layer.
//
// A Controller is not safe for concurrent use; callers serialise transitions.
package controller

import (
	"context"
	"log/slog"

	"mapview/internal/layers/legend"
	"mapview/internal/layers/metrics"
	"mapview/internal/layers/models"
	"mapview/internal/layers/paint"
)

const (
	kindToggle = "toggle"
	kindSelect = "select_field"
)

// Catalog is the read-only layer registry the controller works against.
type Catalog interface {
	Get(id string) (*models.LayerDescriptor, error)
	List() []*models.LayerDescriptor
	MultiFieldLayer() string
	Suggest(id string) (string, bool)
	SuggestField(field string) (string, bool)
}

// Controller holds per-session visibility state.
type Controller struct {
	catalog    Catalog
	visibility map[string]bool
	selected   string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(c *Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// New starts a controller with every layer at its default visibility and no
// field selected.
func New(catalog Catalog, opts ...Option) *Controller {
	c := &Controller{catalog: catalog, visibility: make(map[string]bool)}
	for _, d := range catalog.List() {
		c.visibility[d.ID] = d.Visible
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToggleLayer flips the visibility of layer id. Toggling the multi-field
// layer also clears the selected field. Unknown ids are ignored.
func (c *Controller) ToggleLayer(ctx context.Context, id string) models.Batch {
	if _, err := c.catalog.Get(id); err != nil {
		args := []any{"layer_id", id}
		if hint, ok := c.catalog.Suggest(id); ok {
			args = append(args, "did_you_mean", hint)
		}
		c.ignore(ctx, kindToggle, "toggle for unknown layer ignored", args...)
		return models.Batch{}
	}
	c.metrics.IncTransition(kindToggle)

	visible := !c.visibility[id]
	c.visibility[id] = visible

	if id == c.catalog.MultiFieldLayer() && c.selected != "" {
		c.debug(ctx, "selected field cleared by layer toggle", "layer_id", id, "field", c.selected)
		c.selected = ""
	}
	return models.Batch{models.VisibilityChanged(id, visible)}
}

// SelectField selects field on the multi-field layer, or clears the
// selection when field is already selected. The returned batch carries a
// visibility notification when the layer's derived visibility changes and a
// style notification whenever a field ends up selected, in that order.
// Fields the multi-field layer does not declare are ignored.
func (c *Controller) SelectField(ctx context.Context, field string) models.Batch {
	layerID := c.catalog.MultiFieldLayer()
	if layerID == "" {
		c.ignore(ctx, kindSelect, "field selection without a multi-field layer ignored", "field", field)
		return models.Batch{}
	}
	d, err := c.catalog.Get(layerID)
	if err != nil || !d.HasField(field) {
		args := []any{"layer_id", layerID, "field", field}
		if hint, ok := c.catalog.SuggestField(field); ok {
			args = append(args, "did_you_mean", hint)
		}
		c.ignore(ctx, kindSelect, "selection of unknown field ignored", args...)
		return models.Batch{}
	}
	c.metrics.IncTransition(kindSelect)

	if field == c.selected {
		c.selected = ""
	} else {
		c.selected = field
	}

	batch := models.Batch{}
	visible := c.selected != ""
	if c.visibility[layerID] != visible {
		c.visibility[layerID] = visible
		batch = append(batch, models.VisibilityChanged(layerID, visible))
	}
	if c.selected != "" {
		if style, ok := paint.Style(d, c.selected); ok {
			batch = append(batch, models.StyleChanged(layerID, style))
		}
	}
	return batch
}

// Visibility returns a copy of the visibility map.
func (c *Controller) Visibility() map[string]bool {
	out := make(map[string]bool, len(c.visibility))
	for k, v := range c.visibility {
		out[k] = v
	}
	return out
}

// SelectedField returns the selected field and whether one is selected.
func (c *Controller) SelectedField() (string, bool) {
	return c.selected, c.selected != ""
}

// Legend returns the legend of the selected field, or an empty legend when
// nothing is selected.
func (c *Controller) Legend() []models.LegendEntry {
	if c.selected == "" {
		return []models.LegendEntry{}
	}
	d, err := c.catalog.Get(c.catalog.MultiFieldLayer())
	if err != nil {
		return []models.LegendEntry{}
	}
	return c.resolve(d, c.selected)
}

// Panels returns one control panel per ordinary layer and one per field of
// the multi-field layer, in catalog order. Legends are only filled in for
// active panels.
func (c *Controller) Panels() []models.Panel {
	multi := c.catalog.MultiFieldLayer()
	var panels []models.Panel
	for _, d := range c.catalog.List() {
		if d.ID == multi {
			for _, field := range d.Fields {
				p := models.Panel{
					LayerID: d.ID,
					Field:   field,
					Title:   legend.Title(d, field),
					Active:  field == c.selected,
					Legend:  []models.LegendEntry{},
				}
				if p.Active {
					p.Legend = c.resolve(d, field)
				}
				panels = append(panels, p)
			}
			continue
		}

		p := models.Panel{
			LayerID: d.ID,
			Title:   d.Name,
			Active:  c.visibility[d.ID],
			Legend:  []models.LegendEntry{},
		}
		if p.Active {
			p.Legend = c.resolve(d, "")
			p.Accent = legend.Accent(p.Legend)
		}
		panels = append(panels, p)
	}
	return panels
}

// Tooltip returns the inspect-panel configuration for layer id. For the
// multi-field layer the selected field is appended to the configured fields.
func (c *Controller) Tooltip(id string) (models.Tooltip, bool) {
	d, err := c.catalog.Get(id)
	if err != nil || d.Tooltip == nil {
		return models.Tooltip{}, false
	}
	t := models.Tooltip{
		Enabled: d.Tooltip.Enabled,
		Fields:  append([]models.TooltipField(nil), d.Tooltip.Fields...),
	}
	if id == c.catalog.MultiFieldLayer() && c.selected != "" {
		t.Fields = append(t.Fields, models.TooltipField{
			Field: c.selected,
			Label: legend.Title(d, c.selected),
		})
	}
	return t, true
}

func (c *Controller) resolve(d *models.LayerDescriptor, field string) []models.LegendEntry {
	entries, src := legend.ResolveWithSource(d, field)
	c.metrics.IncLegend(string(src))
	return entries
}

func (c *Controller) ignore(ctx context.Context, kind, msg string, args ...any) {
	c.metrics.IncLookupMiss(kind)
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, args...)
	}
}

func (c *Controller) debug(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.DebugContext(ctx, msg, args...)
	}
}
