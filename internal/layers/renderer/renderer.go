// Package renderer delivers controller notifications to the map renderer.
// Delivery is fire-and-forget: a failed notification is logged and counted,
// and the remaining notifications of the batch are still applied in order.
package renderer

import (
	"context"
	"log/slog"

	"mapview/internal/layers/metrics"
	"mapview/internal/layers/models"
)

//go:generate mockgen -source=renderer.go -destination=mocks/renderer-mocks.go -package=mocks Renderer

// Renderer is the map surface the viewer drives.
type Renderer interface {
	SetVisibility(ctx context.Context, layerID string, visible bool) error
	SetStyle(ctx context.Context, layerID string, style models.Style) error
}

// Dispatcher applies notification batches to a Renderer.
type Dispatcher struct {
	renderer Renderer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewDispatcher constructs a Dispatcher. logger and m may be nil.
func NewDispatcher(r Renderer, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{renderer: r, logger: logger, metrics: m}
}

// Dispatch applies batch in order.
func (d *Dispatcher) Dispatch(ctx context.Context, batch models.Batch) {
	for _, n := range batch {
		var err error
		switch n.Kind {
		case models.NotifyVisibility:
			if n.Visible == nil {
				continue
			}
			err = d.renderer.SetVisibility(ctx, n.LayerID, *n.Visible)
		case models.NotifyStyle:
			if n.Style == nil {
				continue
			}
			err = d.renderer.SetStyle(ctx, n.LayerID, *n.Style)
		default:
			continue
		}
		d.metrics.IncNotification(string(n.Kind))
		if err != nil {
			d.metrics.IncDispatchFailure()
			if d.logger != nil {
				d.logger.WarnContext(ctx, "renderer notification failed",
					"layer_id", n.LayerID,
					"kind", n.Kind,
					"error", err,
				)
			}
		}
	}
}
