package repository

import (
	"context"
	"database/sql"
	"fmt"

	"caredoc-expiry/internal/models"

	"go.uber.org/zap"
)

// Tracked field columns in the patient_documents table, in rule declaration
// order. Values are stored as text so sentinel placeholders ("missing",
// "discharged") survive round trips.
var documentColumns = []struct {
	column  string
	fieldID string
}{
	{"physical", "physical"},
	{"pcp_form", "pcpForm"},
	{"tb_test", "tbTest"},
	{"isp", "isp"},
	{"mds", "mds"},
	{"dental", "dental"},
	{"vision", "vision"},
	{"pa", "pa"},
	{"medicaid", "medicaid"},
}

// PostgresDocumentSource 从 patient_documents 表读取患者记录
type PostgresDocumentSource struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresDocumentSource 创建 Postgres 数据源
func NewPostgresDocumentSource(db *sql.DB, logger *zap.Logger) *PostgresDocumentSource {
	return &PostgresDocumentSource{db: db, logger: logger}
}

// FetchRows returns one row per patient, ordered by insertion so the report
// keeps encounter order.
func (s *PostgresDocumentSource) FetchRows(ctx context.Context) ([]models.Row, error) {
	query := `
		SELECT patient_name, contact,
		       physical, pcp_form, tb_test, isp, mds,
		       dental, vision, pa, medicaid
		FROM patient_documents
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query patient documents: %w", err)
	}
	defer rows.Close()

	var result []models.Row
	for rows.Next() {
		var name string
		var contact sql.NullString
		cells := make([]sql.NullString, len(documentColumns))

		dest := make([]interface{}, 0, len(documentColumns)+2)
		dest = append(dest, &name, &contact)
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan patient document row: %w", err)
		}

		row := models.Row{
			PatientName: name,
			Contact:     contact.String, // NULL contact becomes ""
			Values:      make(map[string]string, len(documentColumns)),
		}
		for i, col := range documentColumns {
			if cells[i].Valid && cells[i].String != "" {
				row.Values[col.fieldID] = cells[i].String
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patient documents: %w", err)
	}

	s.logger.Debug("Fetched patient documents",
		zap.Int("row_count", len(result)),
	)
	return result, nil
}
