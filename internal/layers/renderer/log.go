package renderer

import (
	"context"
	"log/slog"

	"mapview/internal/layers/models"
)

// LogRenderer records notifications in the structured log. It stands in for
// a real renderer when no pub/sub backend is configured.
type LogRenderer struct {
	logger *slog.Logger
}

func NewLogRenderer(logger *slog.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

func (r *LogRenderer) SetVisibility(ctx context.Context, layerID string, visible bool) error {
	r.logger.InfoContext(ctx, "layer visibility",
		"layer_id", layerID,
		"visible", visible,
	)
	return nil
}

func (r *LogRenderer) SetStyle(ctx context.Context, layerID string, style models.Style) error {
	r.logger.InfoContext(ctx, "layer style",
		"layer_id", layerID,
		"property", style.ColorProperty,
		"expression", string(style.Color.Kind),
	)
	return nil
}
