package enums

import "fmt"

// LedgerSourceType identifies what produced a ledger entry.
type LedgerSourceType string

const (
	LedgerSourceWebhookOrder     LedgerSourceType = "webhook_order"
	LedgerSourceWebhookRefund    LedgerSourceType = "webhook_refund"
	LedgerSourceWebhookInventory LedgerSourceType = "webhook_inventory"
	LedgerSourceManual           LedgerSourceType = "manual"
	LedgerSourceCatalogSync      LedgerSourceType = "catalog_sync"
)

var validLedgerSourceTypes = []LedgerSourceType{
	LedgerSourceWebhookOrder,
	LedgerSourceWebhookRefund,
	LedgerSourceWebhookInventory,
	LedgerSourceManual,
	LedgerSourceCatalogSync,
}

// IsValid reports whether the value matches the canonical source type enum.
func (t LedgerSourceType) IsValid() bool {
	for _, candidate := range validLedgerSourceTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerSourceType converts raw input into LedgerSourceType.
func ParseLedgerSourceType(value string) (LedgerSourceType, error) {
	for _, candidate := range validLedgerSourceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger source type %q", value)
}
