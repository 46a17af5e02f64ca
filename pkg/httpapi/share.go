package httpapi

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// defaultShareLinkTTL is applied when a request omits expires_in_hours.
const defaultShareLinkTTL = 24 * time.Hour

// newShareToken mints a cryptographically-random URL-safe token (§3).
func newShareToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *Server) handleCreateShareLink(w http.ResponseWriter, r *http.Request) {
	frameID := mux.Vars(r)["id"]
	if _, err := s.Store.GetFrame(r.Context(), frameID); err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "frame not found")
			return
		}
		writeInternal(w, err)
		return
	}

	var req struct {
		ExpiresInHours float64 `json:"expires_in_hours"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeValidationError(w, "malformed JSON body: "+err.Error())
		return
	}

	ttl := defaultShareLinkTTL
	if req.ExpiresInHours > 0 {
		ttl = time.Duration(req.ExpiresInHours * float64(time.Hour))
	}

	token, err := newShareToken()
	if err != nil {
		writeInternal(w, err)
		return
	}
	link := &catalogmodel.ShareLink{
		Token: token, FrameID: frameID, ExpiresAt: time.Now().Add(ttl), CreatedAt: time.Now(),
	}
	if err := s.Store.CreateShareLink(r.Context(), link); err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// handleGetSharedFrame is reachable without X-API-Key (§6 auth-exempt
// paths include "/api/shared/*").
func (s *Server) handleGetSharedFrame(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	link, err := s.Store.GetShareLink(r.Context(), token)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "share link not found")
			return
		}
		writeInternal(w, err)
		return
	}
	if link.Expired(time.Now()) {
		writeError(w, http.StatusGone, "expired", "share link has expired")
		return
	}
	frame, err := s.Store.GetFrame(r.Context(), link.FrameID)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeNotFound(w, "shared frame no longer exists")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}
