package web

import (
	"net/http"

	"github.com/JonMunkholm/garazh/internal/core"
	"github.com/JonMunkholm/garazh/internal/logging"
)

type orderResponse struct {
	Order    core.Order `json:"order"`
	Archived bool       `json:"archived"`
}

// handleListOrders lists the active set.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ActiveOrders())
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, archived, err := s.service.Order(idParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Order: o, Archived: archived})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var d core.OrderDraft
	if err := decodeJSON(w, r, maxBodySize, &d); err != nil {
		s.respondError(w, r, err)
		return
	}
	o, err := s.service.CreateOrder(r.Context(), d)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "order_id", o.ID).Info("order created", "status", o.Status)
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var patch core.OrderPatch
	if err := decodeJSON(w, r, maxBodySize, &patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondOrder(w, r)(s.service.UpdateOrder(r.Context(), idParam(r), patch))
}

func (s *Server) handleCompleteOrder(w http.ResponseWriter, r *http.Request) {
	s.respondOrder(w, r)(s.service.MarkComplete(r.Context(), idParam(r)))
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	s.respondOrder(w, r)(s.service.TogglePaid(r.Context(), idParam(r)))
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := requireConfirm(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.DeleteOrder(r.Context(), idParam(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondOrder writes an updated order together with the set it ended up in,
// since an update can move it to the daily log.
func (s *Server) respondOrder(w http.ResponseWriter, r *http.Request) func(core.Order, error) {
	return func(o core.Order, err error) {
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		_, archived, err := s.service.Order(o.ID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, orderResponse{Order: o, Archived: archived})
	}
}

// handleDailyLog lists the archive grouped by day.
func (s *Server) handleDailyLog(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.DailyLog(rng))
}
