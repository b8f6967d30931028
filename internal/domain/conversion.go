package domain

import "time"

// ConversionEvent is a RawTransfer reinterpreted as an outbound conversion:
// a stablecoin transfer out of the tracked wallet, read as a deliberate
// cash-out decision. Derived, never mutated after creation. Lists of these
// are always kept sorted ascending by timestamp.
type ConversionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Amount    float64   `json:"amount"` // asset-denominated
	Token     string    `json:"token"`
	ToAddress string    `json:"toAddress"`
	TxHash    string    `json:"txHash"`
}
