package web

import (
	"net/http"

	"github.com/JonMunkholm/garazh/internal/core"
	"github.com/JonMunkholm/garazh/internal/logging"
)

// handleExport downloads a backup of everything.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Export()
	w.Header().Set("Content-Disposition", attachment(core.BackupFileName(s.service.Today())))
	writeJSON(w, http.StatusOK, snap)
}

// handleImport replaces all data with an uploaded backup.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := requireConfirm(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	var snap core.Snapshot
	if err := decodeJSON(w, r, maxImportSize, &snap); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.Import(r.Context(), snap); err != nil {
		s.respondError(w, r, err)
		return
	}
	st := s.service.State()
	logging.FromContext(r.Context()).Info("backup imported",
		"customers", len(st.Customers),
		"orders", len(st.Active),
		"daily_log", len(st.Archived),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "imported",
		"customers": len(st.Customers),
		"vehicles":  len(st.Vehicles),
		"orders":    len(st.Active),
		"dailyLog":  len(st.Archived),
	})
}

// handleReset restores the seed data. The body must carry both confirmations.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var c core.ResetConfirmation
	if err := decodeJSON(w, r, maxBodySize, &c); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.Reset(r.Context(), c); err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("data reset to seed")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
