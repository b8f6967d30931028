package domain

// RawContract carries contract metadata attached to a transfer record.
type RawContract struct {
	Address *string `json:"address"`
	Decimal *string `json:"decimal"`
}

// RawTransfer represents one on-chain transfer record as supplied by the
// transfer data source. Immutable, sourced externally; the core never
// fetches or caches these.
type RawTransfer struct {
	BlockNum    string      `json:"blockNum"`
	Hash        string      `json:"hash"`
	From        string      `json:"from"`
	To          *string     `json:"to"` // nullable (contract creation etc.)
	Value       float64     `json:"value"`
	Asset       string      `json:"asset"`
	Category    string      `json:"category"`
	RawContract RawContract `json:"rawContract"`
	Timestamp   *string     `json:"timestamp,omitempty"` // ISO-8601, may be absent
}
