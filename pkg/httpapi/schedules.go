package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.Store.ListFetchSchedules(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		PresetID        string `json:"preset_id"`
		IntervalMinutes int    `json:"interval_minutes"`
		IsActive        bool   `json:"is_active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeValidationError(w, "name is required")
		return
	}
	if req.IntervalMinutes <= 0 {
		writeValidationError(w, "interval_minutes must be > 0")
		return
	}
	if _, err := s.Store.GetFetchPreset(r.Context(), req.PresetID); err != nil {
		if err == catalog.ErrNotFound {
			writeValidationError(w, "preset_id does not reference an existing fetch preset")
			return
		}
		writeInternal(w, err)
		return
	}

	sched := &catalogmodel.FetchSchedule{
		Name: req.Name, PresetID: req.PresetID, IntervalMinutes: req.IntervalMinutes,
		IsActive: req.IsActive, CreatedAt: time.Now(),
	}
	if sched.IsActive {
		next := time.Now().Add(time.Duration(sched.IntervalMinutes) * time.Minute)
		sched.NextRunAt = &next
	}
	if err := s.Store.CreateFetchSchedule(r.Context(), sched); err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sched)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Store.DeleteFetchSchedule(r.Context(), id); err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "schedule not found")
			return
		}
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToggleSchedule flips is_active, computing a fresh next_run_at
// when activating and clearing it when deactivating, preserving the §3
// invariant that IsActive implies NextRunAt != nil.
func (s *Server) handleToggleSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sched, err := s.Store.GetFetchSchedule(r.Context(), id)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "schedule not found")
			return
		}
		writeInternal(w, err)
		return
	}

	active := !sched.IsActive
	var next *time.Time
	if active {
		t := time.Now().Add(time.Duration(sched.IntervalMinutes) * time.Minute)
		next = &t
	}
	if err := s.Store.SetFetchScheduleActive(r.Context(), id, active, next); err != nil {
		writeInternal(w, err)
		return
	}
	sched.IsActive = active
	sched.NextRunAt = next
	writeJSON(w, http.StatusOK, sched)
}
