package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlConsultations = `
CREATE TABLE IF NOT EXISTS consultations (
    id          UUID             PRIMARY KEY,
    text        TEXT             NOT NULL,
    specialty   TEXT             NOT NULL,
    confidence  DOUBLE PRECISION NOT NULL,
    level       SMALLINT         NOT NULL,
    pathway     TEXT             NOT NULL,
    created_at  TIMESTAMPTZ      NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_consultations_created_at
    ON consultations (created_at DESC);

CREATE INDEX IF NOT EXISTS idx_consultations_specialty
    ON consultations (specialty);
`

// Migrate creates the consultations table and its indexes if they do not
// exist. It is idempotent and safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlConsultations); err != nil {
		return fmt.Errorf("history schema: create consultations: %w", err)
	}
	return nil
}
