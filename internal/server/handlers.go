package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"relocator/internal/core/domain"
	"relocator/internal/infra/storage"
)

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.cfg.Sites.List(r.Context())
	if err != nil {
		s.log.Error("failed to list sites", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Site{"sites": sites})
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	site := r.PathValue("site")

	rooms, err := s.cfg.Rooms.ListBySite(r.Context(), site)
	if errors.Is(err, storage.ErrSiteNotFound) {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	if err != nil {
		s.log.Error("failed to list rooms", "site", site, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]*domain.Room{"rooms": rooms})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	site := r.PathValue("site")

	var req struct {
		SKU         string `json:"sku"`
		Destination string `json:"destination"`
		RequestID   string `json:"request_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SKU == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "sku and destination are required")
		return
	}
	// The sentinel room exists as a real room but only ever receives items
	// out-of-band, never through a move.
	if req.Destination == domain.SentinelRoom {
		writeError(w, http.StatusConflict, "sentinel room is not a valid destination")
		return
	}

	err := s.cfg.Items.Move(r.Context(), site, req.SKU, req.Destination)
	switch {
	case errors.Is(err, storage.ErrSiteNotFound):
		writeError(w, http.StatusNotFound, "site not found")
	case errors.Is(err, storage.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, storage.ErrRoomNotFound):
		writeError(w, http.StatusConflict, "destination room not found")
	case err != nil:
		s.log.Error("move failed",
			"site", site, "sku", req.SKU, "dest", req.Destination,
			"request_id", req.RequestID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		s.log.Info("item moved",
			"site", site, "sku", req.SKU, "dest", req.Destination,
			"request_id", req.RequestID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
