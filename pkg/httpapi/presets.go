package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *Server) handleListCropPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.Store.ListCropPresets(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleCreateCropPreset(w http.ResponseWriter, r *http.Request) {
	var p catalogmodel.CropPreset
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.Name == "" {
		writeValidationError(w, "name is required")
		return
	}
	if err := s.Store.CreateCropPreset(r.Context(), &p); err != nil {
		if err == catalog.ErrConflict {
			writeConflict(w, "crop preset name already in use")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListFetchPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.Store.ListFetchPresets(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleCreateFetchPreset(w http.ResponseWriter, r *http.Request) {
	var p catalogmodel.FetchPreset
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.Name == "" {
		writeValidationError(w, "name is required")
		return
	}
	if !catalogmodel.SatelliteSet[p.Satellite] {
		writeValidationError(w, "unknown satellite")
		return
	}
	if !catalogmodel.SectorSet[p.Sector] {
		writeValidationError(w, "unknown sector")
		return
	}
	if !catalogmodel.ValidBand(p.Band) {
		writeValidationError(w, "invalid band")
		return
	}
	if err := s.Store.CreateFetchPreset(r.Context(), &p); err != nil {
		if err == catalog.ErrConflict {
			writeConflict(w, "fetch preset name already in use")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListAnimationPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.Store.ListAnimationPresets(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleCreateAnimationPreset(w http.ResponseWriter, r *http.Request) {
	var p catalogmodel.AnimationPreset
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.Name == "" {
		writeValidationError(w, "name is required")
		return
	}
	if err := s.Store.CreateAnimationPreset(r.Context(), &p); err != nil {
		if err == catalog.ErrConflict {
			writeConflict(w, "animation preset name already in use")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := catalogmodel.PresetKind(vars["kind"])
	switch kind {
	case catalogmodel.PresetKindCrop, catalogmodel.PresetKindFetch, catalogmodel.PresetKindAnimation:
	default:
		writeValidationError(w, "unknown preset kind")
		return
	}
	if err := s.Store.DeletePreset(r.Context(), kind, vars["id"]); err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "preset not found")
			return
		}
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
