package enums

// SkuAliasType scopes external identifier namespaces in sku_aliases.
type SkuAliasType string

const (
	SkuAliasTypeShopifyVariantID       SkuAliasType = "shopify_variant_id"
	SkuAliasTypeShopifyInventoryItemID SkuAliasType = "shopify_inventory_item_id"
)

var validSkuAliasTypes = []SkuAliasType{
	SkuAliasTypeShopifyVariantID,
	SkuAliasTypeShopifyInventoryItemID,
}

// IsValid reports whether the value matches a known alias namespace.
func (t SkuAliasType) IsValid() bool {
	for _, candidate := range validSkuAliasTypes {
		if candidate == t {
			return true
		}
	}
	return false
}
