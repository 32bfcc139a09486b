package models

import (
	"time"
)

// Category 文档分类结果
type Category string

const (
	CategoryExpired      Category = "expired"       // 已过期
	CategoryExpiringSoon Category = "expiring_soon" // 30天内到期
	CategoryIgnored      Category = "ignored"       // 不上报
)

// ExpiringSoonWindowDays is the inclusive number of calendar days ahead
// within which a document counts as expiring soon.
const ExpiringSoonWindowDays = 30

// Sentinel cell values that mark a document as intentionally absent.
// Matching is case-sensitive and exact.
var SentinelValues = map[string]struct{}{
	"missing":    {},
	"discharged": {},
}

// IsSentinel reports whether a raw cell value is a sentinel placeholder.
func IsSentinel(value string) bool {
	_, ok := SentinelValues[value]
	return ok
}

// Row 一位患者的原始记录（只读）
type Row struct {
	PatientName string            `json:"patient_name"`
	Contact     string            `json:"contact"`
	Values      map[string]string `json:"values"` // field_id -> raw cell value
}

// DocumentRecord 单个 (患者, 文档类型) 的到期计算结果
type DocumentRecord struct {
	PatientName   string    `json:"patient_name"`
	Contact       string    `json:"contact"`
	FieldID       string    `json:"field_id"`
	OriginalDate  time.Time `json:"original_date"`
	ExpiryDate    time.Time `json:"expiry_date"`
	DaysRemaining int       `json:"days_remaining"`
}

// Category bins the record by its days remaining.
func (r *DocumentRecord) Category() Category {
	switch {
	case r.DaysRemaining < 0:
		return CategoryExpired
	case r.DaysRemaining <= ExpiringSoonWindowDays:
		return CategoryExpiringSoon
	default:
		return CategoryIgnored
	}
}

// FieldRecords 某个文档类型下需要上报的记录（按行遇到顺序）
type FieldRecords struct {
	Expired      []DocumentRecord `json:"expired"`
	ExpiringSoon []DocumentRecord `json:"expiring_soon"`
}

// Report 一次扫描的完整快照，每次运行重新构建，不保留历史
type Report struct {
	RunID             string                   `json:"run_id"`
	GeneratedAt       time.Time                `json:"generated_at"`
	TotalExpired      int                      `json:"total_expired"`
	TotalExpiringSoon int                      `json:"total_expiring_soon"`
	Fields            map[string]*FieldRecords `json:"fields"` // field_id -> records
}

// NewReport creates an empty report snapshot.
func NewReport(runID string, generatedAt time.Time) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Fields:      make(map[string]*FieldRecords),
	}
}

// Add appends a record to its field/category bucket and bumps the matching
// counter. Ignored records must not be passed here.
func (r *Report) Add(rec DocumentRecord) {
	fr, ok := r.Fields[rec.FieldID]
	if !ok {
		fr = &FieldRecords{}
		r.Fields[rec.FieldID] = fr
	}
	switch rec.Category() {
	case CategoryExpired:
		fr.Expired = append(fr.Expired, rec)
		r.TotalExpired++
	case CategoryExpiringSoon:
		fr.ExpiringSoon = append(fr.ExpiringSoon, rec)
		r.TotalExpiringSoon++
	}
}

// TotalReported 上报文档总数（已过期 + 即将到期）
func (r *Report) TotalReported() int {
	return r.TotalExpired + r.TotalExpiringSoon
}

// Empty reports whether the run found nothing. An empty report suppresses
// notification; it is the normal "nothing to report" terminal state, not an
// error.
func (r *Report) Empty() bool {
	return r.TotalReported() == 0
}
