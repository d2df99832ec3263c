package rest

import (
	"net/http"
)

// HandleListNodes exposes the read only catalog of registered node
// descriptors for external step selection UIs.
func (s *Server) HandleListNodes(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.registry.Descriptors())
}
