package config

import (
	"strings"
	"testing"
)

// NULL route_id rows bypass a plain composite unique index, so the routeless
// acknowledgment/declaration cases and the live-username constraint each need
// a partial unique index. These statements are what InitDB executes.
func TestPartialIndexesEnforceNullableUniqueness(t *testing.T) {
	find := func(table string) string {
		t.Helper()
		for _, stmt := range partialIndexes {
			if strings.Contains(stmt, " ON "+table+" ") {
				return stmt
			}
		}
		t.Fatalf("no index statement for table %s", table)
		return ""
	}

	cases := []struct {
		table   string
		columns string
		where   string
	}{
		{"document_acknowledgments", "(document_id, driver_id)", "route_id IS NULL"},
		{"safety_declarations", "(driver_id, declaration_type)", "route_id IS NULL"},
		{"users", "(username)", "is_deleted = false"},
	}
	for _, c := range cases {
		stmt := find(c.table)
		if !strings.Contains(stmt, "CREATE UNIQUE INDEX") {
			t.Errorf("%s: index is not unique: %s", c.table, stmt)
		}
		if !strings.Contains(stmt, c.columns) {
			t.Errorf("%s: expected columns %s in %s", c.table, c.columns, stmt)
		}
		if !strings.Contains(stmt, "WHERE "+c.where) {
			t.Errorf("%s: expected partial predicate %q in %s", c.table, c.where, stmt)
		}
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("%s: index creation must be idempotent: %s", c.table, stmt)
		}
	}
}
