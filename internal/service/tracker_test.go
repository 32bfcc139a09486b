package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"caredoc-expiry/internal/config"
	"caredoc-expiry/internal/engine"
	"caredoc-expiry/internal/models"
	"caredoc-expiry/internal/report"
	"caredoc-expiry/internal/rules"
	"caredoc-expiry/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSource 返回固定行快照的测试数据源
type stubSource struct {
	rows []models.Row
	err  error
}

func (s *stubSource) FetchRows(ctx context.Context) ([]models.Row, error) {
	return s.rows, s.err
}

// MockNotifier 是 Notifier 的 mock 实现
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, subject string, summary *report.Summary) error {
	args := m.Called(ctx, subject, summary)
	return args.Error(0)
}

func (m *MockNotifier) Name() string { return "mock" }

func newTestService(t *testing.T, src *stubSource, n *MockNotifier) *TrackerService {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Notify.Recipient = "care-team@example.com"

	logger := zap.NewNop()
	return &TrackerService{
		config:    cfg,
		logger:    logger,
		location:  time.UTC,
		rules:     rules.Default(),
		source:    src,
		engine:    engine.NewEngine(logger),
		notifiers: nil,
		scheduler: scheduler.NewScheduler(time.UTC, logger),
	}
}

func expiredRow() models.Row {
	return models.Row{
		PatientName: "Alice",
		Contact:     "555-0100",
		Values:      map[string]string{"pa": "2020-01-01"},
	}
}

func TestRunOnce_SendsReportWhenFindings(t *testing.T) {
	src := &stubSource{rows: []models.Row{expiredRow()}}
	n := &MockNotifier{}
	svc := newTestService(t, src, n)
	svc.notifiers = append(svc.notifiers, n)

	n.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.RunOnce(context.Background()))
	n.AssertExpectations(t)

	sentSummary := n.Calls[0].Arguments.Get(2).(*report.Summary)
	assert.Equal(t, 1, sentSummary.TotalExpired)
	assert.Equal(t, 0, sentSummary.TotalExpiringSoon)
}

func TestRunOnce_EmptyReportSuppressesNotification(t *testing.T) {
	// A patient with only sentinel values yields an empty report.
	src := &stubSource{rows: []models.Row{{
		PatientName: "Bob",
		Values:      map[string]string{"pa": "discharged"},
	}}}
	n := &MockNotifier{}
	svc := newTestService(t, src, n)
	svc.notifiers = append(svc.notifiers, n)

	require.NoError(t, svc.RunOnce(context.Background()))

	// Zero findings is a business rule, not an optimization: nothing
	// may be sent.
	n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnce_DeliveryFailureSurfacedNotRetried(t *testing.T) {
	src := &stubSource{rows: []models.Row{expiredRow()}}
	n := &MockNotifier{}
	svc := newTestService(t, src, n)
	svc.notifiers = append(svc.notifiers, n)

	deliveryErr := &models.DeliveryError{Provider: "mock", Recipient: "x", Err: fmt.Errorf("boom")}
	n.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(deliveryErr).Once()

	err := svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*models.DeliveryError))

	// Exactly one attempt.
	n.AssertNumberOfCalls(t, "Send", 1)
}

func TestRunOnce_SourceFailure(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("sheet unavailable")}
	n := &MockNotifier{}
	svc := newTestService(t, src, n)
	svc.notifiers = append(svc.notifiers, n)

	err := svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch rows")
	n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnce_SubjectCarriesTotals(t *testing.T) {
	src := &stubSource{rows: []models.Row{expiredRow()}}
	n := &MockNotifier{}
	svc := newTestService(t, src, n)
	svc.notifiers = append(svc.notifiers, n)

	n.On("Send", mock.Anything,
		"Patient Document Expirations: 1 expired, 0 expiring soon",
		mock.Anything).Return(nil).Once()

	require.NoError(t, svc.RunOnce(context.Background()))
	n.AssertExpectations(t)
}

func TestNewTrackerService_RejectsInvalidConfig(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Notify.Recipient = "" // required without console mode

	_, err = NewTrackerService(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
