package enums

// SkuMatchStrategy records which fallback step resolved an external variant.
type SkuMatchStrategy string

const (
	SkuMatchStrategyAlias         SkuMatchStrategy = "alias"
	SkuMatchStrategyExternalSku   SkuMatchStrategy = "external_sku"
	SkuMatchStrategyLegacyPattern SkuMatchStrategy = "legacy_pattern"
)

var validSkuMatchStrategies = []SkuMatchStrategy{
	SkuMatchStrategyAlias,
	SkuMatchStrategyExternalSku,
	SkuMatchStrategyLegacyPattern,
}

// IsValid reports whether the value matches a known resolution strategy.
func (s SkuMatchStrategy) IsValid() bool {
	for _, candidate := range validSkuMatchStrategies {
		if candidate == s {
			return true
		}
	}
	return false
}
