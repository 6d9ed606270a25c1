package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIngestionMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_webhook_ingestion_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no ingestion migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CONSTRAINT processed_webhooks_event_id_key UNIQUE (event_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_stores_domain_active",
		"CONSTRAINT idx_sku_aliases_lookup UNIQUE (client_id, alias_type, alias_value)",
		"CONSTRAINT idx_locations_client_code UNIQUE (client_id, code)",
		"ON inventory_ledger_entries (client_id, source_event_id, txn_type)",
		"DROP TABLE IF EXISTS processed_webhooks",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
