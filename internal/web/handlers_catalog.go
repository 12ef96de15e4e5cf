package web

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/garazh/internal/core"
)

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Customers())
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.Customer(idParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c core.Customer
	if err := decodeJSON(w, r, maxBodySize, &c); err != nil {
		s.respondError(w, r, err)
		return
	}
	stored, err := s.service.CreateCustomer(r.Context(), c)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var patch core.CustomerPatch
	if err := decodeJSON(w, r, maxBodySize, &patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	stored, err := s.service.UpdateCustomer(r.Context(), idParam(r), patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := requireConfirm(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.DeleteCustomer(r.Context(), idParam(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.service.CustomerHistory(idParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// handleListVehicles lists all vehicles, or those of ?customerId=.
func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("customerId"); id != "" {
		writeJSON(w, http.StatusOK, s.service.VehiclesFor(core.ID(id)))
		return
	}
	writeJSON(w, http.StatusOK, s.service.Vehicles())
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.service.Vehicle(idParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var v core.Vehicle
	if err := decodeJSON(w, r, maxBodySize, &v); err != nil {
		s.respondError(w, r, err)
		return
	}
	stored, err := s.service.CreateVehicle(r.Context(), v)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var patch core.VehiclePatch
	if err := decodeJSON(w, r, maxBodySize, &patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	stored, err := s.service.UpdateVehicle(r.Context(), idParam(r), patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := requireConfirm(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.DeleteVehicle(r.Context(), idParam(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListServiceTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ServiceTypes())
}

func (s *Server) handleAddServiceType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := decodeJSON(w, r, maxBodySize, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	types, err := s.service.AddServiceType(r.Context(), req.Label)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types)
}

func (s *Server) handleRemoveServiceType(w http.ResponseWriter, r *http.Request) {
	if err := requireConfirm(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	label := chi.URLParam(r, "label")
	if unescaped, err := url.PathUnescape(label); err == nil {
		label = unescaped
	}
	types, err := s.service.RemoveServiceType(r.Context(), label)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}
