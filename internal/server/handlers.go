package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/pipeline"
	"conversion-insight/internal/storage"
	"conversion-insight/internal/transfers"
)

const defaultWalletHistoryLimit = 20

// analyzeRequest is the POST /api/v1/analyze body. Transfers may be
// supplied inline; otherwise they are fetched from the configured source.
type analyzeRequest struct {
	Wallet    string               `json:"wallet"`
	Balance   float64              `json:"balance"`
	Currency  string               `json:"currency"`
	Transfers []domain.RawTransfer `json:"transfers,omitempty"`
	FromBlock string               `json:"fromBlock,omitempty"`
	ToBlock   string               `json:"toBlock,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Wallet == "" {
		writeError(w, http.StatusBadRequest, "wallet is required")
		return
	}
	if req.Balance < 0 {
		writeError(w, http.StatusBadRequest, "balance must not be negative")
		return
	}

	ctx := r.Context()

	rawTransfers := req.Transfers
	if rawTransfers == nil {
		if s.fetcher == nil {
			writeError(w, http.StatusBadRequest, "transfers are required: no transfer source configured")
			return
		}
		var err error
		rawTransfers, err = s.fetcher.FetchOutbound(ctx, req.Wallet, transfers.FetchParams{
			FromBlock: req.FromBlock,
			ToBlock:   req.ToBlock,
		})
		if err != nil {
			s.log.Error().Err(err).Str("wallet", req.Wallet).Msg("transfer fetch failed")
			writeError(w, http.StatusBadGateway, "failed to fetch transfer history")
			return
		}
	}

	outcome := s.analyzer.Analyze(ctx, pipeline.Request{
		Wallet:    req.Wallet,
		Transfers: rawTransfers,
		Balance:   req.Balance,
		Currency:  req.Currency,
	})

	record := &domain.AnalysisRecord{
		ID:        storage.NewRecordID(),
		Wallet:    req.Wallet,
		Outcome:   *outcome,
		CreatedAt: outcome.GeneratedAt,
	}

	if s.analyses != nil {
		if err := s.analyses.Insert(ctx, record); err != nil {
			s.log.Error().Err(err).Str("wallet", req.Wallet).Msg("persist analysis failed")
			writeError(w, http.StatusInternalServerError, "failed to persist analysis")
			return
		}
		if s.metrics != nil {
			s.metrics.AnalysesPersisted.Inc()
		}
	}

	if s.archive != nil && len(rawTransfers) > 0 {
		// Archive failures do not fail the request; the analysis result
		// is already computed and persisted.
		if err := s.archive.InsertBulk(ctx, req.Wallet, rawTransfers); err != nil {
			s.log.Warn().Err(err).Str("wallet", req.Wallet).Msg("transfer archive failed")
		}
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleAnalysesByWallet(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")

	limit := defaultWalletHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := s.analyses.GetByWallet(r.Context(), wallet, limit)
	if err != nil {
		s.log.Error().Err(err).Str("wallet", wallet).Msg("list analyses failed")
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}

	if records == nil {
		records = []*domain.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")

	record, err := s.analyses.GetLatestByWallet(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no analyses for wallet")
			return
		}
		s.log.Error().Err(err).Str("wallet", wallet).Msg("get latest analysis failed")
		writeError(w, http.StatusInternalServerError, "failed to get latest analysis")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
