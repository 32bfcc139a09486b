package models

import (
	"fmt"
	"time"
)

// Policy 到期规则（tagged variant：ExactDate 或 RelativeDays）
// The two kinds are mutually exclusive by construction; a rule can never
// carry both an exact date flag and a day offset.
type Policy interface {
	// ExpiryFrom computes the expiration date from the original cell date.
	ExpiryFrom(original time.Time) time.Time
	// String describes the policy for logs.
	String() string

	sealed()
}

// ExactDate 到期日就是单元格里的日期本身
type ExactDate struct{}

func (ExactDate) ExpiryFrom(original time.Time) time.Time { return original }
func (ExactDate) String() string                          { return "exact_date" }
func (ExactDate) sealed()                                 {}

// RelativeDays 到期日 = 原始日期 + Days 天
type RelativeDays struct {
	Days int // calendar days, >= 0
}

func (p RelativeDays) ExpiryFrom(original time.Time) time.Time {
	return original.AddDate(0, 0, p.Days)
}

func (p RelativeDays) String() string { return fmt.Sprintf("relative_days(%d)", p.Days) }
func (p RelativeDays) sealed()        {}

// Rule 一种被跟踪的文档类型及其到期规则
type Rule struct {
	FieldID     string // stable identifier, e.g. "pcpForm"
	DisplayName string // human readable name used in the report
	Policy      Policy
	Column      int // 0-based column index in the source grid
}
