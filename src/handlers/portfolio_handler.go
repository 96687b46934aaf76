package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/services"
	"github.com/username/ledgerfolio/src/utils"
)

type PortfolioHandler struct {
	ingestService  services.IngestService
	historyService services.HistoryService
}

func NewPortfolioHandler(ingest services.IngestService, history services.HistoryService) *PortfolioHandler {
	return &PortfolioHandler{
		ingestService:  ingest,
		historyService: history,
	}
}

// HandleGetSummary serves the portfolio summary with ETag support so the
// frontend can poll cheaply.
func (h *PortfolioHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	summary, err := h.ingestService.GetSummary(userID)
	if err != nil {
		logger.L.Error("Error retrieving summary", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving summary for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	if etag, err := utils.GenerateETag(summary); err == nil && etag != "" {
		quotedETag := fmt.Sprintf("%q", etag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else {
		logger.L.Warn("Proceeding without ETag check", "userID", userID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logger.L.Error("Error encoding summary response", "userID", userID, "error", err)
	}
}

func (h *PortfolioHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	holdings, err := h.ingestService.GetHoldings(userID)
	if err != nil {
		logger.L.Error("Error retrieving holdings", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving holdings for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(holdings); err != nil {
		logger.L.Error("Error encoding holdings response", "userID", userID, "error", err)
	}
}

func (h *PortfolioHandler) HandleGetCashReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	report, err := h.ingestService.GetCashReport(userID)
	if err != nil {
		logger.L.Error("Error retrieving cash report", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving cash report for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.L.Error("Error encoding cash report response", "userID", userID, "error", err)
	}
}

// HandleGetPriceHistory serves cached daily OHLCV bars:
// GET /api/prices/history?symbol=AAPL&from=2024-01-01&to=2024-12-31
func (h *PortfolioHandler) HandleGetPriceHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	symbol := r.URL.Query().Get("symbol")
	fromDate := r.URL.Query().Get("from")
	toDate := r.URL.Query().Get("to")
	if symbol == "" || fromDate == "" || toDate == "" {
		utils.SendJSONError(w, "symbol, from and to query parameters are required", http.StatusBadRequest)
		return
	}

	bars, err := h.historyService.GetDailyBars(r.Context(), symbol, fromDate, toDate)
	if err != nil {
		logger.L.Warn("Error retrieving price history", "symbol", symbol, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving price history for %s: %v", symbol, err), http.StatusBadRequest)
		return
	}
	if bars == nil {
		bars = []models.PriceBar{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(bars); err != nil {
		logger.L.Error("Error encoding price history response", "symbol", symbol, "error", err)
	}
}
