package models

// Range is one band of a color ramp. Min is the inclusive lower threshold;
// the first range of a thresholded legend is the catch-all below Range[1].Min.
// Categorical layer legends leave Min unset on every range.
type Range struct {
	Min   *float64 `json:"min,omitempty"`
	Color string   `json:"color"`
	Label string   `json:"label"`
}

// RangeLegend is an ordered color ramp.
type RangeLegend []Range

// Thresholded reports whether every range carries a threshold.
func (r RangeLegend) Thresholded() bool {
	if len(r) == 0 {
		return false
	}
	for _, rg := range r {
		if rg.Min == nil {
			return false
		}
	}
	return true
}

// LegendEntry is one row of a displayed legend. A nil Color marks a section
// header rather than a swatch.
type LegendEntry struct {
	Color *string `json:"color"`
	Label string  `json:"label"`
}

// Swatch builds a colored legend entry.
func Swatch(color, label string) LegendEntry {
	return LegendEntry{Color: &color, Label: label}
}

// Header builds a section header entry.
func Header(label string) LegendEntry {
	return LegendEntry{Label: label}
}

// IsHeader reports whether the entry is a section header.
func (e LegendEntry) IsHeader() bool {
	return e.Color == nil
}

// Panel is the per-control view the UI renders: one per ordinary layer and
// one per selectable field of the multi-field layer, in catalog order.
type Panel struct {
	LayerID string        `json:"layer_id"`
	Field   string        `json:"field,omitempty"`
	Title   string        `json:"title"`
	Active  bool          `json:"active"`
	Accent  string        `json:"accent,omitempty"`
	Legend  []LegendEntry `json:"legend"`
}
