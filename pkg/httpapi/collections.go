package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.Store.ListCollections(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeValidationError(w, "name is required")
		return
	}
	col, err := s.Store.GetOrCreateCollectionByName(r.Context(), req.Name)
	if err != nil {
		if err == catalog.ErrConflict {
			writeConflict(w, "collection already exists")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Store.DeleteCollection(r.Context(), id); err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "collection not found")
			return
		}
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddFramesToCollection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		FrameIDs []string `json:"frame_ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.FrameIDs) == 0 {
		writeValidationError(w, "frame_ids must contain at least one frame id")
		return
	}
	if err := s.Store.AddFramesToCollection(r.Context(), id, req.FrameIDs); err != nil {
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFrameFromCollection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.Store.RemoveFrameFromCollection(r.Context(), vars["id"], vars["frame_id"]); err != nil {
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.Store.ListTags(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var tag catalogmodel.Tag
	if !decodeJSON(w, r, &tag) {
		return
	}
	if tag.Name == "" {
		writeValidationError(w, "name is required")
		return
	}
	if err := s.Store.CreateTag(r.Context(), &tag); err != nil {
		if err == catalog.ErrConflict {
			writeConflict(w, "tag name already in use")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Store.DeleteTag(r.Context(), id); err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "tag not found")
			return
		}
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTagFrame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.Store.TagFrame(r.Context(), vars["frame_id"], vars["tag_id"]); err != nil {
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUntagFrame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.Store.UntagFrame(r.Context(), vars["frame_id"], vars["tag_id"]); err != nil {
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
