package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/montsmed/shelfinv/internal/domain"
	"github.com/montsmed/shelfinv/internal/gateway"
	"github.com/montsmed/shelfinv/internal/session"
)

// handleEditRows replaces the working copy with the grid's current rows.
func (s *Server) handleEditRows(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rows []rowJSON `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.session.EditWorkingRows(fromRowsJSON(body.Rows)); err != nil {
		s.sessionError(w, err, "failed to update rows")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"dirty": s.session.Dirty()})
}

func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	row, err := s.session.AddBlankRow()
	if err != nil {
		s.sessionError(w, err, "failed to add row")
		return
	}
	s.respondJSON(w, http.StatusCreated, toRowJSON(row))
}

func (s *Server) handleDeleteRows(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	selected := make(map[string]bool, len(body.IDs))
	for _, id := range body.IDs {
		selected[id] = true
	}

	n, err := s.session.DeleteSelected(func(r domain.Row) bool { return selected[r.ID] })
	if errors.Is(err, session.ErrNothingSelected) {
		s.respondNotice(w, "no rows selected")
		return
	}
	if err != nil {
		s.sessionError(w, err, "failed to delete rows")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	err := s.session.Commit()
	if errors.Is(err, session.ErrNoChanges) {
		s.respondNotice(w, "no changes to save")
		return
	}
	if err != nil {
		s.sessionError(w, err, "failed to save changes")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Discard(); err != nil {
		s.sessionError(w, err, "failed to discard changes")
		return
	}
	s.respondJSON(w, http.StatusOK, sessionJSON{
		Dirty: false,
		Rows:  toRowsJSON(s.session.WorkingRows()),
	})
}

// handleClearLocation deletes every row in the active partition. It is the
// only row-destroying endpoint that demands an explicit confirmation, because
// it is the only one that can wipe a partition in a single call.
func (s *Server) handleClearLocation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !body.Confirm {
		s.respondError(w, http.StatusBadRequest, "clearing a location requires confirm=true")
		return
	}

	n, err := s.session.ClearPartition()
	if err != nil {
		s.sessionError(w, err, "failed to clear location")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"cleared": n})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	if !s.remoteEnabled {
		s.respondError(w, http.StatusServiceUnavailable, "remote persistence is not configured; use export instead")
		return
	}

	// The body is optional; a missing or invalid one means default message.
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Message == "" {
		body.Message = "Update inventory"
	}

	err := s.session.Push(r.Context(), body.Message)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "pushed"})
	case errors.Is(err, session.ErrPushInFlight):
		s.respondError(w, http.StatusConflict, "a push is already in flight")
	default:
		var commitErr *gateway.CommitError
		if errors.As(err, &commitErr) {
			s.logger.Error("push failed", "attempts", commitErr.Attempts, "error", commitErr.Last)
			s.respondError(w, http.StatusBadGateway, commitErr.Error())
			return
		}
		s.sessionError(w, err, "failed to push")
	}
}

// sessionError maps session errors to responses: a missing active partition
// is a client mistake, anything else is logged as a server fault.
func (s *Server) sessionError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, session.ErrNoPartition) {
		s.respondError(w, http.StatusConflict, session.ErrNoPartition.Error())
		return
	}
	s.logger.Error(msg, "error", err)
	s.respondError(w, http.StatusInternalServerError, msg)
}
