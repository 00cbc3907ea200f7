package postgres

import (
	"strings"
	"testing"
)

func TestSchemaDefinesConsultations(t *testing.T) {
	t.Parallel()

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS consultations",
		"id          UUID             PRIMARY KEY",
		"created_at  TIMESTAMPTZ",
		"idx_consultations_created_at",
		"idx_consultations_specialty",
	} {
		if !strings.Contains(ddlConsultations, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}
