package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/log"
)

func parseFrameFilter(r *http.Request) catalogmodel.FrameFilter {
	q := r.URL.Query()
	var filter catalogmodel.FrameFilter
	if v := q.Get("satellite"); v != "" {
		sat := catalogmodel.Satellite(v)
		filter.Satellite = &sat
	}
	if v := q.Get("sector"); v != "" {
		sec := catalogmodel.Sector(v)
		filter.Sector = &sec
	}
	if v := q.Get("band"); v != "" {
		b := catalogmodel.Band(v)
		filter.Band = &b
	}
	if v := q.Get("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := q.Get("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}
	filter.CollectionID = q.Get("collection_id")
	filter.Tag = q.Get("tag")
	return filter
}

func parseFramePage(r *http.Request) catalogmodel.FramePage {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", 50)
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}
	sortKey := catalogmodel.SortKey(r.URL.Query().Get("sort"))
	if !catalogmodel.ValidSortKey(sortKey) {
		sortKey = catalogmodel.SortCaptureTime
	}
	sortDir := catalogmodel.SortDir(r.URL.Query().Get("dir"))
	if sortDir != catalogmodel.SortAsc && sortDir != catalogmodel.SortDesc {
		sortDir = catalogmodel.SortDesc
	}
	return catalogmodel.FramePage{Page: page, Limit: limit, SortKey: sortKey, SortDir: sortDir}
}

func (s *Server) handleListFrames(w http.ResponseWriter, r *http.Request) {
	result, err := s.Store.ListFrames(r.Context(), parseFrameFilter(r), parseFramePage(r))
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"frames": result.Frames, "total_count": result.TotalCount,
	})
}

func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["frame_id"]
	frame, err := s.Store.GetFrame(r.Context(), id)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "frame not found")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// deleteFrameFiles removes the frame's on-disk file and thumbnail
// best-effort, mirroring pkg/retention.Engine.Run's file-then-row order.
func (s *Server) deleteFrameFiles(r *http.Request, frame *catalogmodel.GoesFrame) {
	logger := log.WithComponent("httpapi")
	if frame.FilePath != "" {
		if err := os.Remove(frame.FilePath); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("frame_id", frame.ID).Msg("failed to remove frame file")
		}
	}
	if frame.ThumbnailPath != "" {
		if err := os.Remove(frame.ThumbnailPath); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("frame_id", frame.ID).Msg("failed to remove thumbnail")
		}
	}
}

func (s *Server) handleDeleteFrame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["frame_id"]
	frame, err := s.Store.GetFrame(r.Context(), id)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "frame not found")
			return
		}
		writeInternal(w, err)
		return
	}
	s.deleteFrameFiles(r, frame)
	if err := s.Store.DeleteFrame(r.Context(), id); err != nil {
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkDeleteFrames(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeValidationError(w, "ids must contain at least one frame id")
		return
	}
	deleted := 0
	for _, id := range req.IDs {
		frame, err := s.Store.GetFrame(r.Context(), id)
		if err != nil {
			continue
		}
		s.deleteFrameFiles(r, frame)
		if err := s.Store.DeleteFrame(r.Context(), id); err == nil {
			deleted++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (s *Server) handleFrameStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Store.FrameStats(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLatestFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	satellite := catalogmodel.Satellite(q.Get("satellite"))
	sector := catalogmodel.Sector(q.Get("sector"))
	band := catalogmodel.Band(q.Get("band"))
	frame, err := s.Store.NearestFrame(r.Context(), satellite, sector, band, time.Now())
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "no matching frame")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// handleExportFrames returns the matching frame list with on-disk paths
// validated to resolve under the storage root (§6 file-download routes
// are a thin out-of-scope collaborator; this is the validation wrapper
// that collaborator sits behind).
func (s *Server) handleExportFrames(w http.ResponseWriter, r *http.Request) {
	result, err := s.Store.ListFrames(r.Context(), parseFrameFilter(r), parseFramePage(r))
	if err != nil {
		writeInternal(w, err)
		return
	}
	type exportEntry struct {
		FrameID  string `json:"frame_id"`
		FilePath string `json:"file_path,omitempty"`
	}
	entries := make([]exportEntry, 0, len(result.Frames))
	for _, f := range result.Frames {
		entry := exportEntry{FrameID: f.ID}
		if underStorageRoot(s.Config.StoragePath, f.FilePath) {
			entry.FilePath = f.FilePath
		}
		entries = append(entries, entry)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"frames": entries})
}
