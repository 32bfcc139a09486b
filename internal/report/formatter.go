package report

import (
	"fmt"
	"time"

	"caredoc-expiry/internal/models"
)

// DateFormat 报告中日期的固定格式（与收件人约定，勿改）
const DateFormat = "01/02/2006"

// Line 报告中的一行：一位患者的一份文档
type Line struct {
	PatientName string `json:"patient_name"`
	Contact     string `json:"contact,omitempty"`
	Status      string `json:"status"`
}

// Section 一种文档类型的汇总段落
type Section struct {
	FieldID      string `json:"field_id"`
	DisplayName  string `json:"display_name"`
	Expired      []Line `json:"expired,omitempty"`
	ExpiringSoon []Line `json:"expiring_soon,omitempty"`
}

// Summary 渲染前的结构化报告
type Summary struct {
	Title             string    `json:"title"`
	GeneratedAt       time.Time `json:"generated_at"`
	TotalReported     int       `json:"total_reported"`
	TotalExpired      int       `json:"total_expired"`
	TotalExpiringSoon int       `json:"total_expiring_soon"`
	Sections          []Section `json:"sections"`
}

// Build turns a classified report into the grouped summary. Sections follow
// rule declaration order; fields with nothing to report are omitted
// entirely. Within a section expired records come before expiring-soon,
// each list keeping row encounter order.
func Build(rep *models.Report, rls []models.Rule, today time.Time) *Summary {
	s := &Summary{
		Title:             fmt.Sprintf("Patient Document Expiration Report - %s", today.Format(DateFormat)),
		GeneratedAt:       today,
		TotalReported:     rep.TotalReported(),
		TotalExpired:      rep.TotalExpired,
		TotalExpiringSoon: rep.TotalExpiringSoon,
	}

	for _, rule := range rls {
		fr, ok := rep.Fields[rule.FieldID]
		if !ok || (len(fr.Expired) == 0 && len(fr.ExpiringSoon) == 0) {
			continue
		}
		sec := Section{
			FieldID:     rule.FieldID,
			DisplayName: rule.DisplayName,
		}
		for _, rec := range fr.Expired {
			sec.Expired = append(sec.Expired, toLine(rec))
		}
		for _, rec := range fr.ExpiringSoon {
			sec.ExpiringSoon = append(sec.ExpiringSoon, toLine(rec))
		}
		s.Sections = append(s.Sections, sec)
	}

	return s
}

func toLine(rec models.DocumentRecord) Line {
	return Line{
		PatientName: rec.PatientName,
		Contact:     rec.Contact,
		Status:      StatusText(rec),
	}
}

// StatusText 单条记录的状态文案
// Recipients depend on this exact phrasing; keep it stable.
func StatusText(rec models.DocumentRecord) string {
	if rec.DaysRemaining < 0 {
		return fmt.Sprintf("Expired on %s", rec.ExpiryDate.Format(DateFormat))
	}
	return fmt.Sprintf("Expires on %s (%d days)", rec.ExpiryDate.Format(DateFormat), rec.DaysRemaining)
}

// Subject 邮件主题
func (s *Summary) Subject(prefix string) string {
	return fmt.Sprintf("%s: %d expired, %d expiring soon", prefix, s.TotalExpired, s.TotalExpiringSoon)
}
