package notifier

import (
	"context"

	"caredoc-expiry/internal/report"
)

// Notifier 报告投递接口
// Implementations get one attempt per run; delivery failures are surfaced
// and logged but never retried.
type Notifier interface {
	Send(ctx context.Context, subject string, summary *report.Summary) error
	Name() string
}
