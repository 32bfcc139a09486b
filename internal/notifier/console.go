package notifier

import (
	"context"
	"fmt"

	"caredoc-expiry/internal/report"
)

// ConsoleNotifier 打印到标准输出（开发环境用）
type ConsoleNotifier struct{}

// NewConsoleNotifier 创建 console 通知器
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (n *ConsoleNotifier) Name() string { return "console" }

// Send prints the text rendering of the summary.
func (n *ConsoleNotifier) Send(ctx context.Context, subject string, summary *report.Summary) error {
	fmt.Printf("\n[REPORT] %s\n\n%s\n", subject, summary.RenderText())
	return nil
}
