package postgres

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestParseTime(t *testing.T) {
	ts, err := parseTime("2024-05-01T12:00:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !ts.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", ts)
	}

	if _, err := parseTime("yesterday"); err == nil {
		t.Fatalf("expected error for bad timestamp")
	}

	if ts, err := parseTime(""); err != nil || ts.IsZero() {
		t.Fatalf("empty timestamp should default to now, got %v %v", ts, err)
	}
}

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"pool_snapshots", "liquidity_plans"} {
		if !strings.Contains(Schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("schema missing %s", table)
		}
	}
}
