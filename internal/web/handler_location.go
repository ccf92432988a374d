package web

import (
	"net/http"

	"github.com/montsmed/shelfinv/internal/domain"
)

// handleListLocations lists every shelf slot with its item count, in
// canonical layer-major order, or shelf-major when ?view=shelf is set.
func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	keys := domain.AllKeys()
	if r.URL.Query().Get("view") == "shelf" {
		keys = domain.AllKeysByShelf()
	}

	out := make([]locationJSON, 0, len(keys))
	for _, k := range keys {
		out = append(out, locationJSON{
			Key:   k.String(),
			Shelf: k.Shelf,
			Layer: k.Layer,
			Label: domain.LayerLabel(k.Layer),
			Count: s.inv.CountAt(k),
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

// handleSelectLocation makes the slot in the path the active partition. A
// dirty previous partition is reconciled by the session before the switch.
func (s *Server) handleSelectLocation(w http.ResponseWriter, r *http.Request) {
	key, ok := domain.ParseKey(r.PathValue("key"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid shelf location")
		return
	}

	rows, err := s.session.Select(key)
	if err != nil {
		s.logger.Error("select location failed", "location", key.String(), "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to select location")
		return
	}

	s.respondJSON(w, http.StatusOK, sessionJSON{
		Active:  key.String(),
		Label:   domain.LayerLabel(key.Layer),
		Dirty:   false,
		Pushing: s.session.Pushing(),
		Rows:    toRowsJSON(rows),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state := sessionJSON{
		Dirty:   s.session.Dirty(),
		Pushing: s.session.Pushing(),
		Rows:    toRowsJSON(s.session.WorkingRows()),
	}
	if key, ok := s.session.Active(); ok {
		state.Active = key.String()
		state.Label = domain.LayerLabel(key.Layer)
	}
	s.respondJSON(w, http.StatusOK, state)
}
