package model

// LogicChain is a named, ordered grouping of segments representing one
// argumentative thread. Chains are constructed once from the structuring
// result and immutable thereafter.
type LogicChain struct {
	ChainID     string   `json:"chain_id"`              // Unique chain identifier
	ChainType   string   `json:"chain_type"`            // e.g. MAIN_ARGUMENT, EXAMPLE, COUNTER_ARGUMENT
	Segments    []string `json:"segments"`              // Ordered segment ids
	Description string   `json:"description,omitempty"` // Chain description
	Importance  float64  `json:"importance"`            // 0-1, default 0.5
}
