// Package transfers fetches raw transfer history for a wallet from an
// Alchemy-style JSON-RPC transfer API. The analysis core never calls this
// package; it consumes the fetched records as an opaque sequence.
package transfers

import "encoding/json"

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// rpcError represents a JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// assetTransfersParams is the request body for alchemy_getAssetTransfers.
type assetTransfersParams struct {
	FromBlock    string   `json:"fromBlock,omitempty"`
	ToBlock      string   `json:"toBlock,omitempty"`
	FromAddress  string   `json:"fromAddress,omitempty"`
	Category     []string `json:"category"`
	WithMetadata bool     `json:"withMetadata"`
	MaxCount     string   `json:"maxCount,omitempty"` // hex
	PageKey      string   `json:"pageKey,omitempty"`
}

// assetTransfersResult is the response payload for alchemy_getAssetTransfers.
type assetTransfersResult struct {
	Transfers []assetTransfer `json:"transfers"`
	PageKey   string          `json:"pageKey,omitempty"`
}

// assetTransfer is one wire-format transfer entry.
type assetTransfer struct {
	BlockNum    string  `json:"blockNum"`
	Hash        string  `json:"hash"`
	From        string  `json:"from"`
	To          *string `json:"to"`
	Value       float64 `json:"value"`
	Asset       string  `json:"asset"`
	Category    string  `json:"category"`
	RawContract struct {
		Address *string `json:"address"`
		Decimal *string `json:"decimal"`
	} `json:"rawContract"`
	Metadata struct {
		BlockTimestamp string `json:"blockTimestamp"`
	} `json:"metadata"`
}
