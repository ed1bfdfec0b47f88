package handler

import (
	"github.com/google/uuid"

	"mapview/internal/layers/models"
	"mapview/internal/layers/service"
)

// LayersResponse is returned by GET /layers.
type LayersResponse struct {
	MultiFieldLayer string                    `json:"multi_field_layer,omitempty"`
	Layers          []*models.LayerDescriptor `json:"layers"`
}

// LegendResponse is returned by GET /layers/{layerID}/legend.
type LegendResponse struct {
	LayerID string               `json:"layer_id"`
	Field   string               `json:"field,omitempty"`
	Title   string               `json:"title,omitempty"`
	Legend  []models.LegendEntry `json:"legend"`
}

// StateResponse is the viewer state of one session.
type StateResponse struct {
	SessionID     uuid.UUID            `json:"session_id"`
	Visibility    map[string]bool      `json:"visibility"`
	SelectedField *string              `json:"selected_field"`
	Legend        []models.LegendEntry `json:"legend"`
	Panels        []models.Panel       `json:"panels"`
}

// TransitionResponse is the state after a transition and the notifications
// sent to the renderer, in order.
type TransitionResponse struct {
	StateResponse
	Notifications models.Batch `json:"notifications"`
}

// TooltipResponse is returned by GET /sessions/{sessionID}/layers/{layerID}/tooltip.
type TooltipResponse struct {
	LayerID string                `json:"layer_id"`
	Enabled bool                  `json:"enabled"`
	Fields  []models.TooltipField `json:"fields"`
}

func toStateResponse(s *service.State) StateResponse {
	resp := StateResponse{
		SessionID:  s.SessionID,
		Visibility: s.Visibility,
		Legend:     s.Legend,
		Panels:     s.Panels,
	}
	if s.SelectedField != "" {
		field := s.SelectedField
		resp.SelectedField = &field
	}
	if resp.Legend == nil {
		resp.Legend = []models.LegendEntry{}
	}
	if resp.Panels == nil {
		resp.Panels = []models.Panel{}
	}
	return resp
}

func toTransitionResponse(r *service.TransitionResult) TransitionResponse {
	batch := r.Notifications
	if batch == nil {
		batch = models.Batch{}
	}
	return TransitionResponse{
		StateResponse: toStateResponse(&r.State),
		Notifications: batch,
	}
}
