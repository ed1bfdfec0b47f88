package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mapview/internal/layers/controller"
	"mapview/internal/layers/legend"
	"mapview/internal/layers/metrics"
	"mapview/internal/layers/models"
	"mapview/internal/layers/renderer"
	"mapview/internal/layers/store/session"
	dErrors "mapview/pkg/domain-errors"
	"mapview/pkg/platform/sentinel"
	"mapview/pkg/requestcontext"
)

type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

// State is a snapshot of one viewer session.
type State struct {
	SessionID     uuid.UUID
	Visibility    map[string]bool
	SelectedField string
	Legend        []models.LegendEntry
	Panels        []models.Panel
}

// TransitionResult is the state after a transition plus the notifications it
// sent to the renderer, in delivery order.
type TransitionResult struct {
	State
	Notifications models.Batch
}

// Service mounts viewer sessions and routes UI events to their controllers.
type Service struct {
	catalog    controller.Catalog
	sessions   SessionStore
	dispatcher *renderer.Dispatcher
	renderer   renderer.Renderer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRenderer sets the renderer notifications are delivered to. Without one
// notifications are only returned to the caller.
func WithRenderer(r renderer.Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// New constructs a Service.
func New(catalog controller.Catalog, sessions SessionStore, opts ...Option) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("layer catalog is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	s := &Service{
		catalog:  catalog,
		sessions: sessions,
		tracer:   otel.Tracer("mapview/internal/layers/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer != nil {
		s.dispatcher = renderer.NewDispatcher(s.renderer, s.logger, s.metrics)
	}
	return s, nil
}

// Layers returns the catalog in declaration order.
func (s *Service) Layers() []*models.LayerDescriptor {
	return s.catalog.List()
}

// MultiFieldLayer returns the id of the layer colored by the selected field,
// or "" when the catalog has none.
func (s *Service) MultiFieldLayer() string {
	return s.catalog.MultiFieldLayer()
}

// Legend resolves the legend of a catalog layer, optionally for a field.
// The returned title is the field's legend label, or the layer's legend label
// when no field applies.
func (s *Service) Legend(ctx context.Context, layerID, field string) ([]models.LegendEntry, string, error) {
	d, err := s.catalog.Get(layerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			msg := "layer not found"
			if hint, ok := s.catalog.Suggest(layerID); ok {
				msg = fmt.Sprintf("layer not found; did you mean %q?", hint)
			}
			return nil, "", dErrors.New(dErrors.CodeNotFound, msg)
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load layer")
	}
	entries, src := legend.ResolveWithSource(d, field)
	s.metrics.IncLegend(string(src))

	title := d.LegendLabel
	if src == legend.SourceField {
		title = legend.Title(d, field)
	}
	return entries, title, nil
}

// Mount creates a viewer session with every layer at its default visibility.
func (s *Service) Mount(ctx context.Context) (*State, error) {
	now := requestcontext.Now(ctx)
	ctrl := controller.New(s.catalog,
		controller.WithLogger(s.logger),
		controller.WithMetrics(s.metrics),
	)
	sess := session.New(uuid.New(), ctrl, now)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}
	s.refreshActiveSessions(ctx)
	s.logInfo(ctx, "viewer mounted", "session_id", sess.ID)

	var state State
	sess.Do(now, func(c *controller.Controller) {
		state = snapshot(sess.ID, c)
	})
	return &state, nil
}

// Unmount discards a viewer session.
func (s *Service) Unmount(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return translateSessionErr(err)
	}
	s.refreshActiveSessions(ctx)
	s.logInfo(ctx, "viewer unmounted", "session_id", sessionID)
	return nil
}

// State returns the current snapshot of a session.
func (s *Service) State(ctx context.Context, sessionID uuid.UUID) (*State, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, translateSessionErr(err)
	}
	var state State
	sess.Do(requestcontext.Now(ctx), func(c *controller.Controller) {
		state = snapshot(sessionID, c)
	})
	return &state, nil
}

// ToggleLayer flips a layer's visibility in a session. Unknown layers leave
// the session unchanged and produce no notifications.
func (s *Service) ToggleLayer(ctx context.Context, sessionID uuid.UUID, layerID string) (*TransitionResult, error) {
	return s.transition(ctx, sessionID, "ToggleLayer",
		[]attribute.KeyValue{attribute.String("layer_id", layerID)},
		func(c *controller.Controller) models.Batch {
			return c.ToggleLayer(ctx, layerID)
		})
}

// SelectField selects, switches or clears the multi-field layer's field.
func (s *Service) SelectField(ctx context.Context, sessionID uuid.UUID, field string) (*TransitionResult, error) {
	return s.transition(ctx, sessionID, "SelectField",
		[]attribute.KeyValue{attribute.String("field", field)},
		func(c *controller.Controller) models.Batch {
			return c.SelectField(ctx, field)
		})
}

// Tooltip returns the inspect-panel fields for a layer in a session.
func (s *Service) Tooltip(ctx context.Context, sessionID uuid.UUID, layerID string) (*models.Tooltip, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, translateSessionErr(err)
	}
	var (
		tooltip models.Tooltip
		ok      bool
	)
	sess.Do(requestcontext.Now(ctx), func(c *controller.Controller) {
		tooltip, ok = c.Tooltip(layerID)
	})
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "layer has no tooltip")
	}
	return &tooltip, nil
}

// SweepIdle unmounts sessions not seen within ttl.
func (s *Service) SweepIdle(ctx context.Context, ttl time.Duration) (int, error) {
	removed, err := s.sessions.DeleteIdleBefore(ctx, requestcontext.Now(ctx).Add(-ttl))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sweep idle sessions")
	}
	if removed > 0 {
		s.refreshActiveSessions(ctx)
		s.logInfo(ctx, "idle viewers unmounted", "count", removed)
	}
	return removed, nil
}

// RunJanitor sweeps idle sessions every interval until ctx is cancelled.
func (s *Service) RunJanitor(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SweepIdle(ctx, ttl); err != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "session sweep failed", "error", err)
			}
		}
	}
}

func (s *Service) transition(
	ctx context.Context,
	sessionID uuid.UUID,
	name string,
	attrs []attribute.KeyValue,
	fn func(c *controller.Controller) models.Batch,
) (*TransitionResult, error) {
	ctx, span := s.tracer.Start(ctx, "layers."+name,
		trace.WithAttributes(append(attrs, attribute.String("session_id", sessionID.String()))...))
	defer span.End()

	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, translateSessionErr(err)
	}

	ctx = requestcontext.WithSessionID(ctx, sessionID)
	var result TransitionResult
	sess.Do(requestcontext.Now(ctx), func(c *controller.Controller) {
		batch := fn(c)
		if s.dispatcher != nil {
			s.dispatcher.Dispatch(ctx, batch)
		}
		result = TransitionResult{State: snapshot(sessionID, c), Notifications: batch}
	})
	span.SetAttributes(attribute.Int("notifications", len(result.Notifications)))
	return &result, nil
}

func snapshot(id uuid.UUID, c *controller.Controller) State {
	field, _ := c.SelectedField()
	return State{
		SessionID:     id,
		Visibility:    c.Visibility(),
		SelectedField: field,
		Legend:        c.Legend(),
		Panels:        c.Panels(),
	}
}

func translateSessionErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
}

func (s *Service) refreshActiveSessions(ctx context.Context) {
	if n, err := s.sessions.Count(ctx); err == nil {
		s.metrics.SetActiveSessions(n)
	}
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}
