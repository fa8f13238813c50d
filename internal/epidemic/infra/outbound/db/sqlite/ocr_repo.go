package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/davicafu/epidash/internal/epidemic/domain"
)

// InitSQLite crea la tabla de resultados de OCR si no existe.
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ocr_results (
			id         TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}
	return nil
}

// OCRRepoSQLite implementa domain.OCRStore sobre SQLite, para despliegues
// locales sin MongoDB.
type OCRRepoSQLite struct {
	db *sql.DB
}

var _ domain.OCRStore = (*OCRRepoSQLite)(nil)

func NewOCRRepoSQLite(db *sql.DB) *OCRRepoSQLite {
	return &OCRRepoSQLite{db: db}
}

func (r *OCRRepoSQLite) Save(ctx context.Context, doc *domain.OCRDocument) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ocr_results (id, data, created_at) VALUES (?, ?, ?)`,
		doc.ID.String(), doc.Data, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ocr document: %w", err)
	}
	return nil
}
