// Package legend derives the displayed legend for a layer, whichever of the
// configured ramp or the decoded color expression describes it.
package legend

import (
	"mapview/internal/layers/models"
)

// Source identifies which input a legend was derived from.
type Source string

const (
	SourceField      Source = "field"
	SourceLayerRange Source = "layer_range"
	SourceStep       Source = "step"
	SourceMatch      Source = "match"
	SourceNone       Source = "none"
)

// Resolve returns the legend for d, optionally colored by field. The first
// applicable rule wins:
//
//  1. field's legend, one swatch per range (its label is shown as the title)
//  2. the layer's own ranges, after a header carrying the legend label
//  3. the decoded color expression (step or match)
//
// Anything else yields an empty legend. Resolve never fails.
func Resolve(d *models.LayerDescriptor, field string) []models.LegendEntry {
	entries, _ := ResolveWithSource(d, field)
	return entries
}

// ResolveWithSource is Resolve that also reports which rule produced the
// legend.
func ResolveWithSource(d *models.LayerDescriptor, field string) ([]models.LegendEntry, Source) {
	if d == nil {
		return []models.LegendEntry{}, SourceNone
	}

	if field != "" {
		if fl, ok := d.FieldLegend(field); ok {
			return fromRanges(fl.Ranges, 0), SourceField
		}
	}

	if len(d.Ranges) > 0 {
		if d.LegendLabel == "" {
			return fromRanges(d.Ranges, 0), SourceLayerRange
		}
		entries := fromRanges(d.Ranges, 1)
		return append([]models.LegendEntry{models.Header(d.LegendLabel)}, entries...), SourceLayerRange
	}

	if d.Color == nil {
		return []models.LegendEntry{}, SourceNone
	}
	return fromExpression(*d.Color)
}

func fromRanges(ranges models.RangeLegend, extra int) []models.LegendEntry {
	entries := make([]models.LegendEntry, 0, len(ranges)+extra)
	for _, r := range ranges {
		entries = append(entries, models.Swatch(r.Color, r.Label))
	}
	return entries
}

// fromExpression decodes step and match expressions. Step legends list each
// stop as "< threshold" and leave the default color out.
func fromExpression(e models.Expression) ([]models.LegendEntry, Source) {
	switch e.Kind {
	case models.ExprStep:
		entries := make([]models.LegendEntry, 0, len(e.Stops))
		for _, s := range e.Stops {
			entries = append(entries, models.Swatch(s.Color, "< "+models.FormatThreshold(s.Threshold)))
		}
		return entries, SourceStep
	case models.ExprMatch:
		entries := make([]models.LegendEntry, 0, len(e.Cases)+1)
		for _, c := range e.Cases {
			entries = append(entries, models.Swatch(c.Color, c.Label()))
		}
		return append(entries, models.Swatch(e.Default, "Others")), SourceMatch
	default:
		return []models.LegendEntry{}, SourceNone
	}
}

// Title is the heading shown above a field's legend: the field legend's
// label, or the field name when none is configured.
func Title(d *models.LayerDescriptor, field string) string {
	if fl, ok := d.FieldLegend(field); ok && fl.LegendLabel != "" {
		return fl.LegendLabel
	}
	return field
}

// Accent returns the color a layer's toggle is tinted with: the swatch color
// when the legend is exactly one colored entry, otherwise "".
func Accent(entries []models.LegendEntry) string {
	if len(entries) != 1 || entries[0].IsHeader() {
		return ""
	}
	return *entries[0].Color
}
