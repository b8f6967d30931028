package domain

import "time"

// AnalysisOutcome aggregates every stage result for one pipeline run.
// Created fresh per request, held in memory only; persistence is the
// caller's concern.
type AnalysisOutcome struct {
	Wallet         string               `json:"wallet"`
	Currency       string               `json:"currency"`
	Balance        float64              `json:"balance"`
	TransferCount  int                  `json:"transferCount"`
	Pattern        PatternResult        `json:"pattern"`
	Simulation     SimulationResult     `json:"simulation"`
	Cost           CostResult           `json:"cost"`
	Score          ScoreResult          `json:"score"`
	Recommendation RecommendationResult `json:"recommendation"`
	GeneratedAt    time.Time            `json:"generatedAt"`
}

// AnalysisRecord is a persisted analysis. Corresponds to the analyses table
// in PostgreSQL.
type AnalysisRecord struct {
	ID        string          `json:"id"` // PRIMARY KEY, random hex
	Wallet    string          `json:"wallet"`
	Outcome   AnalysisOutcome `json:"outcome"`
	CreatedAt time.Time       `json:"createdAt"`
}
