package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"legalpub/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_legal_documents",
		SQL: `CREATE TABLE IF NOT EXISTS legal_documents (
  id                TEXT        PRIMARY KEY,
  slug              TEXT        NOT NULL UNIQUE,
  title             TEXT        NOT NULL,
  document_type     TEXT        NOT NULL CHECK (document_type IN ('notice','motion','order','filing','other')),
  status            TEXT        NOT NULL DEFAULT 'draft' CHECK (status IN ('draft','published')),
  publication_date  DATE        NOT NULL,
  filing_date       DATE,
  court_header      TEXT,
  case_information  TEXT,
  document_subtitle TEXT,
  content           JSONB       NOT NULL,
  signature_block   TEXT,
  excerpt           TEXT        CHECK (char_length(excerpt) <= 300),
  case_number       TEXT,
  tags              JSONB       NOT NULL DEFAULT '[]'::jsonb,
  pdf_file_key      TEXT,
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_legal_documents_status_publication_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_legal_documents_status_pubdate ON legal_documents (status, publication_date DESC);`,
	},
	{
		Name: "create_index_legal_documents_document_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_legal_documents_document_type ON legal_documents (document_type);`,
	},
}

// EnsureMigrated checks if the legal_documents table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logger.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public.legal_documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"msg", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
