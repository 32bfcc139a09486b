package rowsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"caredoc-expiry/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SheetHTTPSource 通过 HTTP 拉取在线表格的 CSV 导出
// Works against any published-to-web CSV export URL of the tracking sheet.
type SheetHTTPSource struct {
	httpClient *resty.Client
	url        string
	rules      []models.Rule
	logger     *zap.Logger
}

// NewSheetHTTPSource 创建 CSV-over-HTTP 数据源
func NewSheetHTTPSource(url string, rls []models.Rule, logger *zap.Logger) *SheetHTTPSource {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "text/csv")

	return &SheetHTTPSource{
		httpClient: client,
		url:        url,
		rules:      rls,
		logger:     logger,
	}
}

// FetchRows downloads the CSV export and maps it onto patient rows.
func (s *SheetHTTPSource) FetchRows(ctx context.Context) ([]models.Row, error) {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("sheet fetch returned status %d", resp.StatusCode())
	}

	reader := csv.NewReader(strings.NewReader(resp.String()))
	reader.FieldsPerRecord = -1 // sheets export ragged rows
	grid, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheet csv: %w", err)
	}

	rows := RowsFromGrid(grid, s.rules)
	s.logger.Debug("Fetched rows from sheet",
		zap.String("url", s.url),
		zap.Int("row_count", len(rows)),
	)
	return rows, nil
}
