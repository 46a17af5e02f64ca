package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread_only") == "true"
	notifications, err := s.Store.ListNotifications(r.Context(), unreadOnly)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Store.MarkNotificationRead(r.Context(), id); err != nil {
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.Store.GetSettings(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings catalogmodel.Settings
	if !decodeJSON(w, r, &settings) {
		return
	}
	settings.MaxFramesPerFetch = catalogmodel.ClampMaxFramesPerFetch(settings.MaxFramesPerFetch)
	if err := s.Store.UpdateSettings(r.Context(), settings); err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
