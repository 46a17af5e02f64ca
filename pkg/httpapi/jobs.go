package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/composite"
	"github.com/goesarchive/goescat/pkg/jobrun"
)

// dispatchResponse is the shared "pending job created" shape every
// dispatch-style endpoint returns (§6: "insert Job, enqueue, return
// pending").
type dispatchResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (s *Server) respondDispatched(w http.ResponseWriter, job *catalogmodel.Job) {
	writeJSON(w, http.StatusAccepted, dispatchResponse{JobID: job.ID, Status: string(job.Status)})
}

// goesFetchRequest is the body of POST /api/goes/fetch (§6).
type goesFetchRequest struct {
	Satellite catalogmodel.Satellite `json:"satellite"`
	Sector    catalogmodel.Sector    `json:"sector"`
	Band      catalogmodel.Band     `json:"band"`
	Start     time.Time             `json:"start"`
	End       time.Time             `json:"end"`
}

func (s *Server) handleGoesFetch(w http.ResponseWriter, r *http.Request) {
	var req goesFetchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if detail := validateFetchWindow(req.Satellite, req.Sector, req.Band, req.Start, req.End); detail != "" {
		writeValidationError(w, detail)
		return
	}
	job, err := s.Runner.Dispatch(r.Context(), catalogmodel.JobTypeGoesFetch, map[string]interface{}{
		"satellite": string(req.Satellite),
		"sector":    string(req.Sector),
		"band":      string(req.Band),
		"start":     req.Start,
		"end":       req.End,
	})
	if err != nil {
		writeInternal(w, err)
		return
	}
	s.respondDispatched(w, job)
}

// goesBackfillRequest is the body of POST /api/goes/backfill (§4.3
// backfill variant).
type goesBackfillRequest struct {
	Satellite               catalogmodel.Satellite `json:"satellite"`
	Sector                  catalogmodel.Sector    `json:"sector"`
	Band                    catalogmodel.Band      `json:"band"`
	ExpectedIntervalMinutes float64                `json:"expected_interval_minutes"`
}

func (s *Server) handleGoesBackfill(w http.ResponseWriter, r *http.Request) {
	var req goesBackfillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !catalogmodel.SatelliteSet[req.Satellite] {
		writeValidationError(w, "unknown satellite")
		return
	}
	if !catalogmodel.SectorSet[req.Sector] {
		writeValidationError(w, "unknown sector")
		return
	}
	if !catalogmodel.ValidBand(req.Band) {
		writeValidationError(w, "invalid band")
		return
	}
	if req.ExpectedIntervalMinutes <= 0 {
		writeValidationError(w, "expected_interval_minutes must be > 0")
		return
	}
	job, err := s.Runner.Dispatch(r.Context(), catalogmodel.JobTypeGoesBackfill, map[string]interface{}{
		"satellite":                 string(req.Satellite),
		"sector":                    string(req.Sector),
		"band":                      string(req.Band),
		"expected_interval_minutes": req.ExpectedIntervalMinutes,
	})
	if err != nil {
		writeInternal(w, err)
		return
	}
	s.respondDispatched(w, job)
}

// goesCompositeRequest is the shared body of POST /api/goes/fetch-composite
// and POST /api/goes/composites (§4.7).
type goesCompositeRequest struct {
	Recipe      string                 `json:"recipe"`
	Satellite   catalogmodel.Satellite `json:"satellite"`
	Sector      catalogmodel.Sector    `json:"sector"`
	CaptureTime time.Time              `json:"capture_time"`
}

func (s *Server) dispatchComposite(w http.ResponseWriter, r *http.Request) {
	var req goesCompositeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, ok := composite.Bands(req.Recipe); !ok {
		writeValidationError(w, "unknown recipe: "+req.Recipe)
		return
	}
	if !catalogmodel.SatelliteSet[req.Satellite] {
		writeValidationError(w, "unknown satellite")
		return
	}
	if !catalogmodel.SectorSet[req.Sector] {
		writeValidationError(w, "unknown sector")
		return
	}
	job, err := s.Runner.Dispatch(r.Context(), catalogmodel.JobTypeCompositeGenerate, map[string]interface{}{
		"recipe":       req.Recipe,
		"satellite":    string(req.Satellite),
		"sector":       string(req.Sector),
		"capture_time": req.CaptureTime,
	})
	if err != nil {
		writeInternal(w, err)
		return
	}
	s.respondDispatched(w, job)
}

func (s *Server) handleGoesFetchComposite(w http.ResponseWriter, r *http.Request) { s.dispatchComposite(w, r) }
func (s *Server) handleGoesComposites(w http.ResponseWriter, r *http.Request)      { s.dispatchComposite(w, r) }

// goesAnimationRequest is the body shared by every /api/goes/animations*
// endpoint, distinguished by Source (§4.7).
type goesAnimationRequest struct {
	Source       string                   `json:"source"`
	FrameIDs     []string                 `json:"frame_ids,omitempty"`
	Satellite    *catalogmodel.Satellite  `json:"satellite,omitempty"`
	Sector       *catalogmodel.Sector     `json:"sector,omitempty"`
	Band         *catalogmodel.Band       `json:"band,omitempty"`
	StartDate    *time.Time               `json:"start_date,omitempty"`
	EndDate      *time.Time               `json:"end_date,omitempty"`
	RecentHours  int                      `json:"recent_hours,omitempty"`
	CollectionID string                   `json:"collection_id,omitempty"`
	CropPresetID string                   `json:"crop_preset_id,omitempty"`
	Scale        float64                  `json:"scale"`
	LoopStyle    string                   `json:"loop_style"`
	FPS          int                      `json:"fps"`
	Format       string                   `json:"format"`
	Quality      string                   `json:"quality"`
}

func (s *Server) dispatchAnimation(w http.ResponseWriter, r *http.Request, source string) {
	var req goesAnimationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if source == "" {
		source = req.Source
	}
	if source == "" {
		source = "explicit"
	}
	if req.Scale == 0 {
		req.Scale = 1.0
	}
	if req.Scale < 0.25 || req.Scale > 2.0 {
		writeValidationError(w, "scale must be between 0.25 and 2.0")
		return
	}
	if req.FPS == 0 {
		req.FPS = 10
	}
	if req.Format == "" {
		req.Format = "mp4"
	}
	if req.LoopStyle == "" {
		req.LoopStyle = "forward"
	}

	params := map[string]interface{}{
		"source":         source,
		"frame_ids":      req.FrameIDs,
		"recent_hours":   req.RecentHours,
		"collection_id":  req.CollectionID,
		"crop_preset_id": req.CropPresetID,
		"scale":          req.Scale,
		"loop_style":     req.LoopStyle,
		"fps":            req.FPS,
		"format":         req.Format,
		"quality":        req.Quality,
	}
	if req.Satellite != nil {
		params["satellite"] = string(*req.Satellite)
	}
	if req.Sector != nil {
		params["sector"] = string(*req.Sector)
	}
	if req.Band != nil {
		params["band"] = string(*req.Band)
	}
	if req.StartDate != nil {
		params["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		params["end_date"] = *req.EndDate
	}

	job, err := s.Runner.Dispatch(r.Context(), catalogmodel.JobTypeAnimation, params)
	if err != nil {
		writeInternal(w, err)
		return
	}
	s.respondDispatched(w, job)
}

func (s *Server) handleGoesAnimations(w http.ResponseWriter, r *http.Request) {
	s.dispatchAnimation(w, r, "")
}
func (s *Server) handleGoesAnimationsFromRange(w http.ResponseWriter, r *http.Request) {
	s.dispatchAnimation(w, r, "query")
}
func (s *Server) handleGoesAnimationsRecent(w http.ResponseWriter, r *http.Request) {
	s.dispatchAnimation(w, r, "recent_hours")
}
func (s *Server) handleGoesAnimationsBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Requests []goesAnimationRequest `json:"requests"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	jobIDs := make([]string, 0, len(req.Requests))
	for _, item := range req.Requests {
		source := item.Source
		if source == "" {
			source = "explicit"
		}
		job, err := s.Runner.Dispatch(r.Context(), catalogmodel.JobTypeAnimation, map[string]interface{}{
			"source":    source,
			"frame_ids": item.FrameIDs,
			"format":    item.Format,
		})
		if err != nil {
			writeInternal(w, err)
			return
		}
		jobIDs = append(jobIDs, job.ID)
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"job_ids": jobIDs})
}

// handleGoesFrameProcess dispatches an image_process job (§3 job types,
// §6 "POST /api/goes/frames/process").
func (s *Server) handleGoesFrameProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FrameID string                 `json:"frame_id"`
		Params  map[string]interface{} `json:"params"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FrameID == "" {
		writeValidationError(w, "frame_id is required")
		return
	}
	if _, err := s.Store.GetFrame(r.Context(), req.FrameID); err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "frame not found")
			return
		}
		writeInternal(w, err)
		return
	}
	params := req.Params
	if params == nil {
		params = map[string]interface{}{}
	}
	params["frame_id"] = req.FrameID
	job, err := s.Runner.Dispatch(r.Context(), catalogmodel.JobTypeImageProcess, params)
	if err != nil {
		writeInternal(w, err)
		return
	}
	s.respondDispatched(w, job)
}

// --- Job management ---

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobType := catalogmodel.JobType(r.URL.Query().Get("type"))
	status := catalogmodel.JobStatus(r.URL.Query().Get("status"))
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 50)

	jobs, total, err := s.Store.ListJobs(r.Context(), jobType, status, page, limit)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": jobs, "total": total, "page": page, "limit": limit,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, err := s.Store.GetJob(r.Context(), id)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "job not found")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handlePatchJob allows updating a job's mutable fields directly; used by
// operators to annotate status_message or adjust params on a pending job.
func (s *Server) handlePatchJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, err := s.Store.GetJob(r.Context(), id)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "job not found")
			return
		}
		writeInternal(w, err)
		return
	}

	var patch struct {
		StatusMessage *string                 `json:"status_message"`
		Params        map[string]interface{}  `json:"params"`
	}
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.StatusMessage != nil {
		job.StatusMessage = *patch.StatusMessage
	}
	if patch.Params != nil {
		job.Params = patch.Params
	}
	job.UpdatedAt = time.Now()
	if err := s.Store.UpdateJob(r.Context(), job); err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleteFiles := r.URL.Query().Get("delete_files") == "true"
	if err := s.Runner.DeleteJob(r.Context(), id, deleteFiles, s.Config.StoragePath); err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "job not found")
			return
		}
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkDeleteJobs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs         []string `json:"ids"`
		DeleteFiles bool     `json:"delete_files"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeValidationError(w, "ids must contain at least one job id")
		return
	}
	deleted := 0
	for _, id := range req.IDs {
		if err := s.Runner.DeleteJob(r.Context(), id, req.DeleteFiles, s.Config.StoragePath); err == nil {
			deleted++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.Runner.Cancel(r.Context(), id)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	case catalog.ErrNotFound:
		writeNotFound(w, "job not found")
	case jobrun.ErrTerminal:
		writeError(w, http.StatusBadRequest, "already_terminal", "job already reached a terminal status")
	default:
		writeInternal(w, err)
	}
}

func (s *Server) handleJobLogs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logs, err := s.Store.ListJobLogs(r.Context(), id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleJobDownload serves the job's validated output path directly with
// http.ServeFile (a directory gets the standard file-server listing); it
// does not build a zip archive.
func (s *Server) handleJobDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, err := s.Store.GetJob(r.Context(), id)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "job not found")
			return
		}
		writeInternal(w, err)
		return
	}
	if job.OutputPath == "" {
		writeNotFound(w, "job has no output")
		return
	}
	if !underStorageRoot(s.Config.StoragePath, job.OutputPath) {
		writeForbidden(w, "output path escapes storage root")
		return
	}
	http.ServeFile(w, r, job.OutputPath)
}

func (s *Server) handleCleanupStaleJobs(w http.ResponseWriter, r *http.Request) {
	reaped, err := s.Runner.ReapStale(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reaped": reaped})
}
