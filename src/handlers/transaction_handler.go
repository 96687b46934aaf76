package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/services"
	"github.com/username/ledgerfolio/src/utils"
)

type TransactionHandler struct {
	ingestService services.IngestService
}

func NewTransactionHandler(service services.IngestService) *TransactionHandler {
	return &TransactionHandler{ingestService: service}
}

// HandleGetTransactions lists the user's classified transactions, optionally
// filtered: GET /api/transactions?category=dividendo
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	category := r.URL.Query().Get("category")
	txs, err := h.ingestService.GetTransactions(userID, category)
	if err != nil {
		logger.L.Error("Error retrieving transactions", "userID", userID, "category", category, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving transactions for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.ClassifiedTransaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(txs); err != nil {
		logger.L.Error("Error encoding transactions response", "userID", userID, "error", err)
	}
}

// HandleDeleteAllTransactions wipes the user's stored transactions and the
// holdings derived from them.
func (h *TransactionHandler) HandleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.ingestService.DeleteAllTransactions(userID); err != nil {
		logger.L.Error("Error deleting transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error deleting transactions for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "All transactions deleted"})
}
