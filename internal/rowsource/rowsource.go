package rowsource

import (
	"context"
	"strings"

	"caredoc-expiry/internal/models"
	"caredoc-expiry/internal/rules"
)

// Source 行数据源
// Each fetch returns a fresh snapshot; the engine never mutates it. If the
// underlying sheet is edited concurrently, correctness is only guaranteed
// as of the snapshot read.
type Source interface {
	FetchRows(ctx context.Context) ([]models.Row, error)
}

// RowsFromGrid maps a raw grid (header row at index 0, fixed column
// positions) onto patient rows. Rows without a patient name are skipped;
// short rows are tolerated; a missing contact cell becomes "".
func RowsFromGrid(grid [][]string, rls []models.Rule) []models.Row {
	if len(grid) <= 1 {
		return nil
	}

	var rows []models.Row
	for _, cells := range grid[1:] {
		name := cellAt(cells, rules.ColumnPatientName)
		if name == "" {
			continue
		}

		row := models.Row{
			PatientName: name,
			Contact:     cellAt(cells, rules.ColumnContact),
			Values:      make(map[string]string, len(rls)),
		}
		for _, rule := range rls {
			if v := cellAt(cells, rule.Column); v != "" {
				row.Values[rule.FieldID] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}
