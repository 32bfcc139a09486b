package engine

import (
	"time"

	"caredoc-expiry/internal/models"

	"go.uber.org/zap"
)

// Accepted cell date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	time.RFC3339,
}

// Engine 到期分类引擎
// A single synchronous pass over the row snapshot; no state survives
// between runs.
type Engine struct {
	logger *zap.Logger
}

// NewEngine 创建分类引擎
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Classify scans every (row, rule) pair and bins each present date into
// expired / expiring-soon / ignored. Sentinel and absent cells produce no
// record; unparseable cells are logged and skipped so one bad cell never
// aborts the run. Row encounter order is preserved within each field.
func (e *Engine) Classify(rows []models.Row, rls []models.Rule, today time.Time) *models.Report {
	report := models.NewReport("", today)
	todayMidnight := truncateToMidnight(today)

	for _, row := range rows {
		for _, rule := range rls {
			raw, ok := row.Values[rule.FieldID]
			if !ok || raw == "" || models.IsSentinel(raw) {
				continue
			}

			original, err := ParseCellDate(raw)
			if err != nil {
				e.logger.Warn("Skipping unparseable date cell",
					zap.String("patient", row.PatientName),
					zap.String("field_id", rule.FieldID),
					zap.String("value", raw),
				)
				continue
			}

			expiry := rule.Policy.ExpiryFrom(original)
			days := daysRemaining(expiry, todayMidnight)

			rec := models.DocumentRecord{
				PatientName:   row.PatientName,
				Contact:       row.Contact, // defaults to "" upstream, never absent
				FieldID:       rule.FieldID,
				OriginalDate:  original,
				ExpiryDate:    expiry,
				DaysRemaining: days,
			}
			if rec.Category() == models.CategoryIgnored {
				continue
			}
			report.Add(rec)
		}
	}

	return report
}

// ParseCellDate parses a raw cell value against the accepted layouts.
func ParseCellDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &models.InvalidDateError{Value: raw}
}

// daysRemaining counts whole calendar days from today until expiry. Both
// sides are truncated to midnight first so a document expiring today yields
// exactly 0.
func daysRemaining(expiry, todayMidnight time.Time) int {
	expiryMidnight := truncateToMidnight(expiry)
	return int(expiryMidnight.Sub(todayMidnight).Hours() / 24)
}

// truncateToMidnight normalizes to UTC midnight of the calendar day so the
// later subtraction is always an exact multiple of 24h, independent of the
// source location or DST.
func truncateToMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
