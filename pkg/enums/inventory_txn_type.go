package enums

import "fmt"

// InventoryTxnType maps to the inventory_txn_type enum in Postgres.
type InventoryTxnType string

const (
	InventoryTxnTypeReceipt       InventoryTxnType = "receipt"
	InventoryTxnTypeSale          InventoryTxnType = "sale"
	InventoryTxnTypeAdjustmentIn  InventoryTxnType = "adjustment_in"
	InventoryTxnTypeAdjustmentOut InventoryTxnType = "adjustment_out"
	InventoryTxnTypeReturn        InventoryTxnType = "return"
	InventoryTxnTypeTransfer      InventoryTxnType = "transfer"
	InventoryTxnTypeDamaged       InventoryTxnType = "damaged"
	InventoryTxnTypeQuarantined   InventoryTxnType = "quarantined"
	InventoryTxnTypeMissing       InventoryTxnType = "missing"
)

var validInventoryTxnTypes = []InventoryTxnType{
	InventoryTxnTypeReceipt,
	InventoryTxnTypeSale,
	InventoryTxnTypeAdjustmentIn,
	InventoryTxnTypeAdjustmentOut,
	InventoryTxnTypeReturn,
	InventoryTxnTypeTransfer,
	InventoryTxnTypeDamaged,
	InventoryTxnTypeQuarantined,
	InventoryTxnTypeMissing,
}

// IsValid reports whether the value matches the canonical transaction type enum.
func (t InventoryTxnType) IsValid() bool {
	for _, candidate := range validInventoryTxnTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInventoryTxnType converts raw input into InventoryTxnType.
func ParseInventoryTxnType(value string) (InventoryTxnType, error) {
	for _, candidate := range validInventoryTxnTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory txn type %q", value)
}
