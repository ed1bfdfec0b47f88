// Package paint turns a field's color ramp into the step expression the
// renderer evaluates per feature.
package paint

import (
	"mapview/internal/layers/models"
)

// Build returns a step expression over field: values below ranges[1].Min take
// ranges[0].Color, otherwise the color of the highest range whose Min is at
// or below the value. ranges must be ascending and thresholded, which the
// catalog guarantees at load time.
func Build(field string, ranges models.RangeLegend) models.Expression {
	e := models.Expression{Kind: models.ExprStep, Input: field}
	if len(ranges) == 0 {
		return e
	}
	e.Default = ranges[0].Color
	if len(ranges) > 1 {
		e.Stops = make([]models.Stop, 0, len(ranges)-1)
		for _, r := range ranges[1:] {
			e.Stops = append(e.Stops, models.Stop{Threshold: *r.Min, Color: r.Color})
		}
	}
	return e
}

// Style builds the full paint object for layer d colored by field. The
// layer's static paint and layout properties are copied, never shared. ok is false when
// d has no legend for field.
func Style(d *models.LayerDescriptor, field string) (style models.Style, ok bool) {
	fl, ok := d.FieldLegend(field)
	if !ok {
		return models.Style{}, false
	}
	return models.Style{
		ColorProperty: d.Type.ColorProperty(),
		Color:         Build(field, fl.Ranges),
		Paint:         copyProps(d.Paint),
		Layout:        copyProps(d.Layout),
	}, true
}

func copyProps(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
