package engine

import (
	"testing"
	"time"

	"caredoc-expiry/internal/models"
	"caredoc-expiry/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	return NewEngine(zap.NewNop())
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// today for most tests: 2025-06-01
var testToday = date(2025, time.June, 1)

func exactRule(fieldID string) models.Rule {
	return models.Rule{FieldID: fieldID, DisplayName: fieldID, Policy: models.ExactDate{}}
}

func relativeRule(fieldID string, days int) models.Rule {
	return models.Rule{FieldID: fieldID, DisplayName: fieldID, Policy: models.RelativeDays{Days: days}}
}

func singleRow(fieldID, value string) []models.Row {
	return []models.Row{{
		PatientName: "Alice",
		Contact:     "555-0100",
		Values:      map[string]string{fieldID: value},
	}}
}

func TestClassify_DaysRemainingBoundaries(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{exactRule("pa")}

	tests := []struct {
		name     string
		value    string
		expected models.Category
		days     int
	}{
		{"expiry 30 days out is expiring soon", "2025-07-01", models.CategoryExpiringSoon, 30},
		{"expiry 31 days out is ignored", "2025-07-02", models.CategoryIgnored, 31},
		{"expiry yesterday is expired", "2025-05-31", models.CategoryExpired, -1},
		{"expiry today is expiring soon", "2025-06-01", models.CategoryExpiringSoon, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := e.Classify(singleRow("pa", tt.value), rls, testToday)

			if tt.expected == models.CategoryIgnored {
				assert.Equal(t, 0, rep.TotalReported())
				assert.NotContains(t, rep.Fields, "pa")
				return
			}

			require.Equal(t, 1, rep.TotalReported())
			fr := rep.Fields["pa"]
			require.NotNil(t, fr)

			var rec models.DocumentRecord
			if tt.expected == models.CategoryExpired {
				require.Len(t, fr.Expired, 1)
				rec = fr.Expired[0]
			} else {
				require.Len(t, fr.ExpiringSoon, 1)
				rec = fr.ExpiringSoon[0]
			}
			assert.Equal(t, tt.days, rec.DaysRemaining)
			assert.Equal(t, tt.expected, rec.Category())
		})
	}
}

func TestClassify_SentinelAndAbsentCellsProduceNoRecord(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{exactRule("pa"), relativeRule("physical", 365)}

	rows := []models.Row{
		{PatientName: "Alice", Values: map[string]string{"pa": "missing"}},
		{PatientName: "Bob", Values: map[string]string{"pa": "discharged"}},
		{PatientName: "Carol", Values: map[string]string{}}, // everything absent
	}

	rep := e.Classify(rows, rls, testToday)
	assert.Equal(t, 0, rep.TotalReported())
	assert.Empty(t, rep.Fields)
}

func TestClassify_SentinelMatchIsCaseSensitive(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{exactRule("pa")}

	// "Missing" is not a sentinel; it fails date parsing and is skipped
	// as an unparseable cell instead, still producing no record.
	rep := e.Classify(singleRow("pa", "Missing"), rls, testToday)
	assert.Equal(t, 0, rep.TotalReported())
}

func TestClassify_UnparseableCellSkippedRunContinues(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{exactRule("pa")}

	rows := []models.Row{
		{PatientName: "Alice", Values: map[string]string{"pa": "not-a-date"}},
		{PatientName: "Bob", Values: map[string]string{"pa": "2025-05-01"}},
	}

	rep := e.Classify(rows, rls, testToday)
	require.Equal(t, 1, rep.TotalReported())
	require.Len(t, rep.Fields["pa"].Expired, 1)
	assert.Equal(t, "Bob", rep.Fields["pa"].Expired[0].PatientName)
}

func TestClassify_ExactDatePolicyUsesValueItself(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{exactRule("pa")}

	rep := e.Classify(singleRow("pa", "2025-06-10"), rls, testToday)
	require.Equal(t, 1, rep.TotalReported())
	rec := rep.Fields["pa"].ExpiringSoon[0]
	assert.Equal(t, rec.OriginalDate, rec.ExpiryDate)
	assert.Equal(t, 9, rec.DaysRemaining)
}

func TestClassify_RelativeDaysAcrossYearBoundary(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{relativeRule("physical", 365)}

	// 2024-12-20 + 365 days lands on 2025-12-20 (2025 is not a leap year).
	rep := e.Classify(singleRow("physical", "2024-12-20"), rls, date(2025, time.December, 1))
	require.Equal(t, 1, rep.TotalReported())
	rec := rep.Fields["physical"].ExpiringSoon[0]
	assert.Equal(t, date(2025, time.December, 20), rec.ExpiryDate)
	assert.Equal(t, 19, rec.DaysRemaining)
}

func TestClassify_MissingContactDefaultsToEmptyString(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{exactRule("pa")}

	rows := []models.Row{{
		PatientName: "Alice",
		Values:      map[string]string{"pa": "2025-05-01"},
	}}

	rep := e.Classify(rows, rls, testToday)
	require.Equal(t, 1, rep.TotalReported())
	assert.Equal(t, "", rep.Fields["pa"].Expired[0].Contact)
}

func TestClassify_RowEncounterOrderPreserved(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{exactRule("pa")}

	rows := []models.Row{
		{PatientName: "Zoe", Values: map[string]string{"pa": "2025-05-01"}},
		{PatientName: "Adam", Values: map[string]string{"pa": "2025-05-02"}},
		{PatientName: "Mia", Values: map[string]string{"pa": "2025-05-03"}},
	}

	rep := e.Classify(rows, rls, testToday)
	fr := rep.Fields["pa"]
	require.Len(t, fr.Expired, 3)
	assert.Equal(t, "Zoe", fr.Expired[0].PatientName)
	assert.Equal(t, "Adam", fr.Expired[1].PatientName)
	assert.Equal(t, "Mia", fr.Expired[2].PatientName)
}

func TestClassify_TimeOfDayDiscarded(t *testing.T) {
	e := newTestEngine()
	rls := []models.Rule{exactRule("pa")}

	// Late-in-the-day "today" must still see a same-day expiry as 0 days.
	lateToday := time.Date(2025, time.June, 1, 23, 30, 0, 0, time.UTC)
	rep := e.Classify(singleRow("pa", "2025-06-01"), rls, lateToday)
	require.Equal(t, 1, rep.TotalReported())
	assert.Equal(t, 0, rep.Fields["pa"].ExpiringSoon[0].DaysRemaining)
}

func TestClassify_EndToEndScenario(t *testing.T) {
	e := newTestEngine()
	rls := rules.Default()

	rows := []models.Row{{
		PatientName: "Alice",
		Contact:     "555-0100",
		Values: map[string]string{
			"pcpForm": "2023-01-01",
			"isp":     "2025-01-01",
		},
	}}

	rep := e.Classify(rows, rls, testToday)

	// pcpForm: 2023-01-01 + 365 = 2024-01-01, long expired.
	// isp: 2025-01-01 + 182 = 2025-07-02, 31 days out, ignored.
	assert.Equal(t, 1, rep.TotalExpired)
	assert.Equal(t, 0, rep.TotalExpiringSoon)

	require.Contains(t, rep.Fields, "pcpForm")
	require.Len(t, rep.Fields["pcpForm"].Expired, 1)
	assert.Equal(t, "Alice", rep.Fields["pcpForm"].Expired[0].PatientName)
	assert.Equal(t, date(2024, time.January, 1), rep.Fields["pcpForm"].Expired[0].ExpiryDate)

	assert.NotContains(t, rep.Fields, "isp")
}

func TestClassify_EmptyReportState(t *testing.T) {
	e := newTestEngine()
	rep := e.Classify(nil, rules.Default(), testToday)
	assert.True(t, rep.Empty())
	assert.Equal(t, 0, rep.TotalReported())
}

func TestParseCellDate_AcceptedLayouts(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Time
	}{
		{"2025-06-01", date(2025, time.June, 1)},
		{"06/01/2025", date(2025, time.June, 1)},
		{"6/1/2025", date(2025, time.June, 1)},
		{"2025/06/01", date(2025, time.June, 1)},
	}
	for _, tt := range tests {
		got, err := ParseCellDate(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.expected, got, tt.raw)
	}
}

func TestParseCellDate_InvalidValue(t *testing.T) {
	_, err := ParseCellDate("next tuesday")
	require.Error(t, err)
	var invalidErr *models.InvalidDateError
	assert.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "next tuesday", invalidErr.Value)
}
