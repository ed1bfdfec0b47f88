package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mapview/internal/layers/models"
	"mapview/internal/layers/service"
	dErrors "mapview/pkg/domain-errors"
	"mapview/pkg/platform/httputil"
	"mapview/pkg/requestcontext"
)

// Service defines the interface for viewer operations.
type Service interface {
	Layers() []*models.LayerDescriptor
	MultiFieldLayer() string
	Legend(ctx context.Context, layerID, field string) ([]models.LegendEntry, string, error)
	Mount(ctx context.Context) (*service.State, error)
	Unmount(ctx context.Context, sessionID uuid.UUID) error
	State(ctx context.Context, sessionID uuid.UUID) (*service.State, error)
	ToggleLayer(ctx context.Context, sessionID uuid.UUID, layerID string) (*service.TransitionResult, error)
	SelectField(ctx context.Context, sessionID uuid.UUID, field string) (*service.TransitionResult, error)
	Tooltip(ctx context.Context, sessionID uuid.UUID, layerID string) (*models.Tooltip, error)
}

// Handler wires viewer endpoints to the layers service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a layers handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts layer and session endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/layers", h.HandleListLayers)
	r.Get("/layers/{layerID}/legend", h.HandleLegend)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.HandleMount)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleState)
			r.Delete("/", h.HandleUnmount)
			r.Post("/field", h.HandleSelectField)
			r.Post("/layers/{layerID}/toggle", h.HandleToggleLayer)
			r.Get("/layers/{layerID}/tooltip", h.HandleTooltip)
		})
	})
}

// HandleListLayers handles GET /layers.
func (h *Handler) HandleListLayers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LayersResponse{
		MultiFieldLayer: h.service.MultiFieldLayer(),
		Layers:          h.service.Layers(),
	})
}

// HandleLegend handles GET /layers/{layerID}/legend.
func (h *Handler) HandleLegend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	layerID := chi.URLParam(r, "layerID")
	field := r.URL.Query().Get("field")

	entries, title, err := h.service.Legend(ctx, layerID, field)
	if err != nil {
		h.writeFailure(w, r, "legend lookup failed", err, "layer_id", layerID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LegendResponse{
		LayerID: layerID,
		Field:   field,
		Title:   title,
		Legend:  entries,
	})
}

// HandleMount handles POST /sessions.
func (h *Handler) HandleMount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.service.Mount(ctx)
	if err != nil {
		h.writeFailure(w, r, "mount failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toStateResponse(state))
}

// HandleState handles GET /sessions/{sessionID}.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	state, err := h.service.State(r.Context(), sessionID)
	if err != nil {
		h.writeFailure(w, r, "state lookup failed", err, "session_id", sessionID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(state))
}

// HandleUnmount handles DELETE /sessions/{sessionID}.
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.service.Unmount(r.Context(), sessionID); err != nil {
		h.writeFailure(w, r, "unmount failed", err, "session_id", sessionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleLayer handles POST /sessions/{sessionID}/layers/{layerID}/toggle.
func (h *Handler) HandleToggleLayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	layerID := chi.URLParam(r, "layerID")

	result, err := h.service.ToggleLayer(ctx, sessionID, layerID)
	if err != nil {
		h.writeFailure(w, r, "toggle failed", err, "session_id", sessionID, "layer_id", layerID)
		return
	}

	h.logger.InfoContext(ctx, "layer toggled",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sessionID,
		"layer_id", layerID,
		"notifications", len(result.Notifications),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, toTransitionResponse(result))
}

// HandleSelectField handles POST /sessions/{sessionID}/field.
func (h *Handler) HandleSelectField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SelectFieldRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SelectField(ctx, sessionID, req.Field)
	if err != nil {
		h.writeFailure(w, r, "field selection failed", err, "session_id", sessionID, "field", req.Field)
		return
	}

	h.logger.InfoContext(ctx, "field selected",
		"request_id", requestID,
		"session_id", sessionID,
		"field", req.Field,
		"selected_field", result.SelectedField,
		"notifications", len(result.Notifications),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, toTransitionResponse(result))
}

// HandleTooltip handles GET /sessions/{sessionID}/layers/{layerID}/tooltip.
func (h *Handler) HandleTooltip(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	layerID := chi.URLParam(r, "layerID")

	tooltip, err := h.service.Tooltip(r.Context(), sessionID, layerID)
	if err != nil {
		h.writeFailure(w, r, "tooltip lookup failed", err, "session_id", sessionID, "layer_id", layerID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TooltipResponse{
		LayerID: layerID,
		Enabled: tooltip.Enabled,
		Fields:  tooltip.Fields,
	})
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return uuid.Nil, false
	}
	return sessionID, true
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	ctx := r.Context()
	args = append(args, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}
