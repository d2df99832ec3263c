package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/flowpilot/logger"
	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/service"
	"go.uber.org/zap"
)

type runWorkflowRequest struct {
	WorkflowId    string `json:"workflowId"`
	OwnerId       string `json:"ownerId"`
	AccountId     string `json:"accountId,omitempty"`
	NotifyChannel string `json:"notifyChannel,omitempty"`
}

// HandleRunWorkflow triggers a manual execution and returns its identity
// immediately with status running; callers observe the final status by
// re-querying the execution.
func (s *Server) HandleRunWorkflow(w http.ResponseWriter, r *http.Request) {
	var runReq runWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&runReq); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid run payload")
		return
	}
	defer r.Body.Close()
	result, err := s.executorService.Launch(service.LaunchRequest{
		WorkflowId:    runReq.WorkflowId,
		OwnerId:       runReq.OwnerId,
		AccountId:     runReq.AccountId,
		NotifyChannel: runReq.NotifyChannel,
		Trigger:       model.TRIGGER_MANUAL,
	})
	if err != nil {
		logger.Error("error running workflow", zap.String("workflow", runReq.WorkflowId), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"executionId": result.ExecutionId,
		"status":      string(model.EXECUTION_RUNNING),
	})
}

func (s *Server) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := vars["id"]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "missing execution id")
		return
	}
	execution, err := s.executions.Get(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "execution does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, execution)
}
