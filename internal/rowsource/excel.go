package rowsource

import (
	"context"
	"fmt"

	"caredoc-expiry/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelSource 从本地 .xlsx 快照读取患者记录
// The facility exports the tracking spreadsheet to a file; we read the
// first sheet, header row included.
type ExcelSource struct {
	path   string
	rules  []models.Rule
	logger *zap.Logger
}

// NewExcelSource 创建 Excel 数据源
func NewExcelSource(path string, rls []models.Rule, logger *zap.Logger) *ExcelSource {
	return &ExcelSource{path: path, rules: rls, logger: logger}
}

// FetchRows reads the workbook and maps the first sheet onto patient rows.
func (s *ExcelSource) FetchRows(ctx context.Context) ([]models.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("Failed to close workbook", zap.Error(cerr))
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", s.path)
	}

	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	rows := RowsFromGrid(grid, s.rules)
	s.logger.Debug("Fetched rows from workbook",
		zap.String("path", s.path),
		zap.String("sheet", sheets[0]),
		zap.Int("row_count", len(rows)),
	)
	return rows, nil
}
