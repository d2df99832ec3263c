package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mohitkumar/flowpilot/logger"
	"github.com/mohitkumar/flowpilot/model"
	"go.uber.org/zap"
)

// HandleCreateAccount saves the account and opportunistically launches its
// assigned workflow without waiting for the next reconciliation pass.
func (s *Server) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var account model.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid account payload")
		return
	}
	defer r.Body.Close()
	if account.Id == "" {
		account.Id = uuid.New().String()
	}
	account.CreatedAt = time.Now()
	if err := s.accounts.Save(account); err != nil {
		logger.Error("error creating account", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error creating account")
		return
	}
	s.lifecycle.StartWorkflowForAccount(account.Id)
	respondWithJSON(w, http.StatusOK, map[string]string{"id": account.Id})
}

func (s *Server) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := vars["id"]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "missing account id")
		return
	}
	s.lifecycle.StopWorkflowForAccount(id)
	if err := s.accounts.Delete(id); err != nil {
		logger.Error("error deleting account", zap.String("id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error deleting account")
		return
	}
	respondOK(w, "deleted")
}
