package rules

import (
	"caredoc-expiry/internal/models"
)

// Grid layout: col 0 patient name, col 1 contact, cols 2-10 tracked
// document dates. Columns past 10 are ignored.
const (
	ColumnPatientName = 0
	ColumnContact     = 1
)

// Default 返回默认规则表
// Declaration order here is the report section order; do not re-sort.
func Default() []models.Rule {
	return []models.Rule{
		{FieldID: "physical", DisplayName: "Annual Physical", Policy: models.RelativeDays{Days: 365}, Column: 2},
		{FieldID: "pcpForm", DisplayName: "PCP Form", Policy: models.RelativeDays{Days: 365}, Column: 3},
		{FieldID: "tbTest", DisplayName: "TB Test", Policy: models.RelativeDays{Days: 365}, Column: 4},
		{FieldID: "isp", DisplayName: "ISP", Policy: models.RelativeDays{Days: 182}, Column: 5},
		{FieldID: "mds", DisplayName: "MDS Assessment", Policy: models.RelativeDays{Days: 92}, Column: 6},
		{FieldID: "dental", DisplayName: "Dental Exam", Policy: models.RelativeDays{Days: 365}, Column: 7},
		{FieldID: "vision", DisplayName: "Vision Exam", Policy: models.RelativeDays{Days: 730}, Column: 8},
		{FieldID: "pa", DisplayName: "Prior Authorization", Policy: models.ExactDate{}, Column: 9},
		{FieldID: "medicaid", DisplayName: "Medicaid Recert", Policy: models.ExactDate{}, Column: 10},
	}
}

// ByFieldID 按 field_id 查找规则，找不到返回 nil
func ByFieldID(rs []models.Rule, fieldID string) *models.Rule {
	for i := range rs {
		if rs[i].FieldID == fieldID {
			return &rs[i]
		}
	}
	return nil
}
