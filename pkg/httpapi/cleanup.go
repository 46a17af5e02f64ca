package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *Server) handleListCleanupRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.Store.ListCleanupRules(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleCreateCleanupRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RuleType           catalogmodel.CleanupRuleType `json:"rule_type"`
		Value              float64                      `json:"value"`
		ProtectCollections bool                          `json:"protect_collections"`
		IsActive           bool                          `json:"is_active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RuleType != catalogmodel.CleanupRuleMaxAgeDays && req.RuleType != catalogmodel.CleanupRuleMaxStorageGB {
		writeValidationError(w, "rule_type must be max_age_days or max_storage_gb")
		return
	}
	if req.Value <= 0 {
		writeValidationError(w, "value must be > 0")
		return
	}
	rule := &catalogmodel.CleanupRule{
		RuleType: req.RuleType, Value: req.Value, ProtectCollections: req.ProtectCollections,
		IsActive: req.IsActive, CreatedAt: time.Now(),
	}
	if err := s.Store.CreateCleanupRule(r.Context(), rule); err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleDeleteCleanupRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Store.DeleteCleanupRule(r.Context(), id); err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "cleanup rule not found")
			return
		}
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCleanupPreview(w http.ResponseWriter, r *http.Request) {
	result, err := s.Retention.Preview(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCleanupRun(w http.ResponseWriter, r *http.Request) {
	job, err := s.Runner.Dispatch(r.Context(), catalogmodel.JobTypeCleanup, nil)
	if err != nil {
		writeInternal(w, err)
		return
	}
	s.respondDispatched(w, job)
}
