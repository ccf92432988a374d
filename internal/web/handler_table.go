package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/montsmed/shelfinv/internal/domain"
	"github.com/montsmed/shelfinv/internal/gateway"
	"github.com/montsmed/shelfinv/internal/session"
)

const maxImportBytes = 20 << 20 // 20 MiB upload cap

// handleImport ingests an uploaded spreadsheet. mode=replace (default) swaps
// the whole table; mode=append adds to it. A file with missing columns is
// rejected with the exact missing names and the table is left untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "replace"
	}
	if mode != "replace" && mode != "append" {
		s.respondError(w, http.StatusBadRequest, "mode must be replace or append")
		return
	}

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Error("failed to close upload", "error", err)
		}
	}()

	rows, err := gateway.ImportTable(file)
	if err != nil {
		var missing *domain.MissingColumnsError
		if errors.As(err, &missing) {
			s.respondJSON(w, http.StatusBadRequest, map[string]any{
				"error":          "missing required columns",
				"missingColumns": missing.Missing,
			})
			return
		}
		s.logger.Error("import failed", "file", header.Filename, "error", err)
		s.respondError(w, http.StatusBadRequest, "could not read spreadsheet")
		return
	}

	if mode == "append" {
		s.session.ImportAppend(rows)
	} else {
		s.session.ImportReplace(rows)
	}
	s.logger.Info("import complete", "file", header.Filename, "mode", mode, "rows", len(rows))
	s.respondJSON(w, http.StatusOK, map[string]any{"imported": len(rows), "total": s.inv.Len()})
}

// handleExport streams the current table as an xlsx download. With no rows
// loaded this doubles as the blank-template download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	// Fold in any on-screen edits so the file matches what the user sees.
	if key, ok := s.session.Active(); ok && s.session.Dirty() {
		if err := s.session.Commit(); err != nil && !errors.Is(err, session.ErrNoChanges) {
			s.logger.Error("failed to save before export", "location", key.String(), "error", err)
			s.respondError(w, http.StatusInternalServerError, "failed to save before export")
			return
		}
	}

	blob, err := gateway.ExportSnapshot(s.inv.Rows())
	if err != nil {
		s.logger.Error("export failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to export")
		return
	}

	name := fmt.Sprintf("inventory_data_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(blob); err != nil {
		s.logger.Error("failed to write export", "error", err)
	}
}

// handleSearch runs a read-only, case-insensitive search across the whole
// table, regardless of the active partition.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	rows, filtered := gateway.Search(s.inv.Rows(), query)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"filtered": filtered,
		"rows":     toRowsJSON(rows),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.inv.Stats()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"total":      st.Total,
		"withImages": st.WithImages,
		"functional": st.Functional,
		"byShelf":    st.ByShelf,
		"byLocation": st.ByLocation,
	})
}
