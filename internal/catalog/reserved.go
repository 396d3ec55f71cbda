package catalog

// EngineRulePrefix marks rule ids reserved for diagnostics the engine
// itself emits. Catalog rules may not use it.
const EngineRulePrefix = "engine/"

// Reserved engine rule ids.
const (
	RuleExtractionFailed    = EngineRulePrefix + "extraction-failed"
	RuleTimeout             = EngineRulePrefix + "rule-timeout"
	RuleInternalConsistency = EngineRulePrefix + "internal-consistency"
)
