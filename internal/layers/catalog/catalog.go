// Package catalog holds the immutable, ordered registry of map layers the
// viewer can display. A catalog is built once at startup; every color ramp is
// validated up front so nothing downstream re-checks threshold ordering.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"sigs.k8s.io/yaml"

	"mapview/internal/layers/models"
	dErrors "mapview/pkg/domain-errors"
	"mapview/pkg/platform/sentinel"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// File is the on-disk catalog document.
type File struct {
	// MultiFieldLayer names the layer whose style follows the selected field.
	// When empty, the single layer declaring fields is used.
	MultiFieldLayer string                   `json:"multiFieldLayer,omitempty"`
	Layers          []models.LayerDescriptor `json:"layers"`
}

// Catalog is a read-only, ordered set of layer descriptors. Callers must treat
// returned descriptors as immutable.
type Catalog struct {
	layers     []*models.LayerDescriptor
	byID       map[string]*models.LayerDescriptor
	multiField string
}

// Default builds the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// FromFile builds a catalog from a YAML or JSON document on disk.
func FromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON catalog document and validates it.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidConfig, "decode catalog")
	}
	return New(f)
}

// New validates f and builds a catalog from it. Any malformed descriptor
// fails the whole catalog.
func New(f File) (*Catalog, error) {
	c := &Catalog{
		layers: make([]*models.LayerDescriptor, 0, len(f.Layers)),
		byID:   make(map[string]*models.LayerDescriptor, len(f.Layers)),
	}

	var multi []string
	for i := range f.Layers {
		d := f.Layers[i]
		if err := validateDescriptor(&d); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, configError("layer %q: duplicate id", d.ID)
		}
		c.layers = append(c.layers, &d)
		c.byID[d.ID] = &d
		if d.IsMultiField() {
			multi = append(multi, d.ID)
		}
	}

	switch {
	case f.MultiFieldLayer != "":
		d, ok := c.byID[f.MultiFieldLayer]
		if !ok {
			return nil, configError("multi-field layer %q is not in the catalog", f.MultiFieldLayer)
		}
		if !d.IsMultiField() {
			return nil, configError("multi-field layer %q declares no fields", f.MultiFieldLayer)
		}
		c.multiField = f.MultiFieldLayer
	case len(multi) == 1:
		c.multiField = multi[0]
	case len(multi) > 1:
		return nil, configError("layers %v declare fields; set multiFieldLayer to pick one", multi)
	}

	return c, nil
}

// Get returns the descriptor with the given id.
func (c *Catalog) Get(id string) (*models.LayerDescriptor, error) {
	d, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("layer %q: %w", id, sentinel.ErrNotFound)
	}
	return d, nil
}

// List returns descriptors in declaration order.
func (c *Catalog) List() []*models.LayerDescriptor {
	out := make([]*models.LayerDescriptor, len(c.layers))
	copy(out, c.layers)
	return out
}

// MultiFieldLayer returns the id of the field-driven layer, or "" if the
// catalog has none.
func (c *Catalog) MultiFieldLayer() string {
	return c.multiField
}

// Suggest returns the layer id closest to id by edit distance, when one is
// close enough to be a likely typo.
func (c *Catalog) Suggest(id string) (string, bool) {
	return closest(id, c.ids())
}

// SuggestField returns the multi-field layer's field closest to field.
func (c *Catalog) SuggestField(field string) (string, bool) {
	d, ok := c.byID[c.multiField]
	if !ok {
		return "", false
	}
	return closest(field, d.Fields)
}

func (c *Catalog) ids() []string {
	ids := make([]string, len(c.layers))
	for i, d := range c.layers {
		ids[i] = d.ID
	}
	return ids
}

// closest picks the candidate within a third of the input's length (and at
// least one edit) of s. Ties keep declaration order.
func closest(s string, candidates []string) (string, bool) {
	if s == "" {
		return "", false
	}
	limit := max(len(s)/3, 1)
	best, bestDist := "", limit+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(strings.ToLower(s), strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

// Len returns the number of layers.
func (c *Catalog) Len() int {
	return len(c.layers)
}

func validateDescriptor(d *models.LayerDescriptor) error {
	if d.ID == "" {
		return configError("layer %q: id is required", d.Name)
	}
	if !d.Type.IsValid() {
		return configError("layer %q: unknown render type %q", d.ID, d.Type)
	}
	if d.Source.ID == "" {
		return configError("layer %q: source id is required", d.ID)
	}
	if d.Ranges != nil {
		if err := validateRanges(d.Ranges, false); err != nil {
			return configError("layer %q: %v", d.ID, err)
		}
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for _, field := range d.Fields {
		if _, dup := seen[field]; dup {
			return configError("layer %q: field %q declared twice", d.ID, field)
		}
		seen[field] = struct{}{}
		fl, ok := d.FieldLegends[field]
		if !ok {
			return configError("layer %q: field %q has no field legend", d.ID, field)
		}
		if err := validateRanges(fl.Ranges, true); err != nil {
			return configError("layer %q field %q: %v", d.ID, field, err)
		}
	}
	for field := range d.FieldLegends {
		if _, ok := seen[field]; !ok {
			return configError("layer %q: field legend %q is not a declared field", d.ID, field)
		}
	}
	return nil
}

// validateRanges enforces a non-empty ramp with colors and strictly ascending
// thresholds. Field ramps feed the paint builder and must be thresholded;
// layer-level ramps may instead be purely categorical.
func validateRanges(r models.RangeLegend, requireMin bool) error {
	if len(r) == 0 {
		return fmt.Errorf("empty range list")
	}
	withMin := 0
	for i, rg := range r {
		if rg.Color == "" {
			return fmt.Errorf("range %d: color is required", i)
		}
		if rg.Min != nil {
			withMin++
		} else if requireMin {
			return fmt.Errorf("range %d: min is required", i)
		}
	}
	if withMin == 0 {
		return nil
	}
	if withMin != len(r) {
		return fmt.Errorf("ranges mix thresholded and categorical entries")
	}
	for i := 1; i < len(r); i++ {
		if *r[i].Min <= *r[i-1].Min {
			return fmt.Errorf("range %d: threshold %s is not above %s",
				i, models.FormatThreshold(*r[i].Min), models.FormatThreshold(*r[i-1].Min))
		}
	}
	return nil
}

func configError(format string, args ...any) error {
	return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf(format, args...))
}
