package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mapview/internal/layers/catalog"
	"mapview/internal/layers/metrics"
	"mapview/internal/layers/models"
	"mapview/internal/layers/renderer/mocks"
	"mapview/internal/layers/store/session"
	dErrors "mapview/pkg/domain-errors"
	"mapview/pkg/requestcontext"
)

// =============================================================================
// Service Test Suite
// =============================================================================
// Runs the service against the embedded catalog, an in-memory session store
// and a mocked renderer. census-tracts is the multi-field layer and starts
// visible; zoning-layer starts hidden.

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	mock     *gomock.Controller
	renderer *mocks.MockRenderer
	sessions *session.InMemoryStore
	metrics  *metrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.mock = gomock.NewController(s.T())
	s.renderer = mocks.NewMockRenderer(s.mock)
	s.sessions = session.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())

	c, err := catalog.Default()
	s.Require().NoError(err)
	svc, err := New(c, s.sessions, WithRenderer(s.renderer), WithMetrics(s.metrics))
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) mount() uuid.UUID {
	state, err := s.service.Mount(s.ctx)
	s.Require().NoError(err)
	return state.SessionID
}

func (s *ServiceSuite) TestNewRequiresDependencies() {
	c, err := catalog.Default()
	s.Require().NoError(err)

	_, err = New(nil, s.sessions)
	s.Error(err)
	_, err = New(c, nil)
	s.Error(err)
}

// =============================================================================
// Mount / Unmount
// =============================================================================

func (s *ServiceSuite) TestMountStartsAtDefaults() {
	state, err := s.service.Mount(s.ctx)
	s.Require().NoError(err)

	s.NotEqual(uuid.Nil, state.SessionID)
	s.True(state.Visibility["parcels"])
	s.False(state.Visibility["zoning-layer"])
	s.True(state.Visibility["census-tracts"])
	s.Empty(state.SelectedField)
	s.Empty(state.Legend)
	s.NotEmpty(state.Panels)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ActiveSessions))
}

func (s *ServiceSuite) TestSessionsAreIndependent() {
	a, b := s.mount(), s.mount()
	s.renderer.EXPECT().SetVisibility(gomock.Any(), "zoning-layer", true).Return(nil)

	_, err := s.service.ToggleLayer(s.ctx, a, "zoning-layer")
	s.Require().NoError(err)

	stateB, err := s.service.State(s.ctx, b)
	s.Require().NoError(err)
	s.False(stateB.Visibility["zoning-layer"])
}

func (s *ServiceSuite) TestUnmount() {
	id := s.mount()
	s.Require().NoError(s.service.Unmount(s.ctx, id))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.ActiveSessions))

	_, err := s.service.State(s.ctx, id)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Unmount(s.ctx, id)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Transitions
// =============================================================================

func (s *ServiceSuite) TestToggleDispatchesWithSessionInContext() {
	id := s.mount()
	s.renderer.EXPECT().
		SetVisibility(gomock.Any(), "zoning-layer", true).
		DoAndReturn(func(ctx context.Context, _ string, _ bool) error {
			s.Equal(id, requestcontext.SessionID(ctx))
			return nil
		})

	result, err := s.service.ToggleLayer(s.ctx, id, "zoning-layer")
	s.Require().NoError(err)
	s.Equal(models.Batch{models.VisibilityChanged("zoning-layer", true)}, result.Notifications)
	s.True(result.Visibility["zoning-layer"])
}

func (s *ServiceSuite) TestToggleUnknownLayerIsNoop() {
	id := s.mount()

	result, err := s.service.ToggleLayer(s.ctx, id, "nope")
	s.Require().NoError(err)
	s.Empty(result.Notifications)
}

func (s *ServiceSuite) TestSelectFieldDispatchesVisibilityThenStyle() {
	id := s.mount()
	s.renderer.EXPECT().SetVisibility(gomock.Any(), "census-tracts", false).Return(nil)
	_, err := s.service.ToggleLayer(s.ctx, id, "census-tracts")
	s.Require().NoError(err)

	gomock.InOrder(
		s.renderer.EXPECT().SetVisibility(gomock.Any(), "census-tracts", true).Return(nil),
		s.renderer.EXPECT().SetStyle(gomock.Any(), "census-tracts", gomock.Any()).Return(nil),
	)
	result, err := s.service.SelectField(s.ctx, id, "poverty_rate")
	s.Require().NoError(err)
	s.Require().Len(result.Notifications, 2)
	s.Equal("poverty_rate", result.SelectedField)
	s.Len(result.Legend, 4)
}

func (s *ServiceSuite) TestTransitionOnUnknownSession() {
	_, err := s.service.ToggleLayer(s.ctx, uuid.New(), "parcels")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.SelectField(s.ctx, uuid.New(), "poverty_rate")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestWithoutRendererStillReturnsBatch() {
	c, err := catalog.Default()
	s.Require().NoError(err)
	svc, err := New(c, session.NewInMemoryStore())
	s.Require().NoError(err)

	state, err := svc.Mount(s.ctx)
	s.Require().NoError(err)
	result, err := svc.SelectField(s.ctx, state.SessionID, "avg_score")
	s.Require().NoError(err)
	s.Require().Len(result.Notifications, 1)
	s.Equal(models.NotifyStyle, result.Notifications[0].Kind)
}

// =============================================================================
// Catalog browsing and tooltips
// =============================================================================

func (s *ServiceSuite) TestLegend() {
	entries, title, err := s.service.Legend(s.ctx, "census-tracts", "poverty_rate")
	s.Require().NoError(err)
	s.Equal("Poverty Rate", title)
	s.Len(entries, 4)

	entries, title, err = s.service.Legend(s.ctx, "tif-layer", "")
	s.Require().NoError(err)
	s.Equal("TIF Districts", title)
	s.True(entries[0].IsHeader())

	_, _, err = s.service.Legend(s.ctx, "missing", "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, _, err = s.service.Legend(s.ctx, "parcel", "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), `did you mean "parcels"`)
}

func (s *ServiceSuite) TestLayersInCatalogOrder() {
	layers := s.service.Layers()
	s.Require().NotEmpty(layers)
	s.Equal("parcels", layers[0].ID)
	s.Equal("census-tracts", layers[len(layers)-1].ID)
}

func (s *ServiceSuite) TestTooltip() {
	id := s.mount()
	s.renderer.EXPECT().SetStyle(gomock.Any(), "census-tracts", gomock.Any()).Return(nil)
	_, err := s.service.SelectField(s.ctx, id, "jobs_5_mile")
	s.Require().NoError(err)

	tooltip, err := s.service.Tooltip(s.ctx, id, "census-tracts")
	s.Require().NoError(err)
	last := tooltip.Fields[len(tooltip.Fields)-1]
	s.Equal(models.TooltipField{Field: "jobs_5_mile", Label: "Jobs within 5 miles"}, last)

	_, err = s.service.Tooltip(s.ctx, id, "tif-layer")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Idle expiry
// =============================================================================

func (s *ServiceSuite) TestSweepIdle() {
	stale := s.mount()

	later := requestcontext.WithTime(context.Background(), s.now.Add(20*time.Minute))
	fresh, err := s.service.Mount(later)
	s.Require().NoError(err)

	removed, err := s.service.SweepIdle(later, 10*time.Minute)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.service.State(later, stale)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.service.State(later, fresh.SessionID)
	s.NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ActiveSessions))
}

func (s *ServiceSuite) TestRunJanitorStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.service.RunJanitor(ctx, time.Millisecond, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("janitor did not stop")
	}
}
