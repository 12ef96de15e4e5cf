package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/garazh/internal/core"
)

// Request body limits.
const (
	maxBodySize   = 1 << 20
	maxImportSize = 32 << 20
)

// decodeJSON reads a JSON body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest(errors.New("empty body"))
		}
		return badRequest(err)
	}
	return nil
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// idParam returns a path id.
func idParam(r *http.Request) core.ID {
	return core.ID(chi.URLParam(r, "id"))
}

// requireConfirm refuses destructive requests that lack ?confirm=true.
func requireConfirm(r *http.Request) error {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); ok {
		return nil
	}
	return &core.ValidationError{Field: "confirm", Message: "confirmation required", Err: core.ErrConfirmationRequired}
}

// parseRange reads preset, from and to. Explicit bounds override the preset.
func (s *Server) parseRange(q url.Values) (core.DateRange, error) {
	rng, err := s.service.ResolvePreset(q.Get("preset"))
	if err != nil {
		return core.DateRange{}, err
	}
	for _, b := range []struct {
		param string
		dst   *core.Date
	}{
		{"from", &rng.From},
		{"to", &rng.To},
	} {
		raw := q.Get(b.param)
		if raw == "" {
			continue
		}
		d, err := core.ParseDate(raw)
		if err != nil {
			return core.DateRange{}, &core.ValidationError{Field: b.param, Message: err.Error(), Err: err}
		}
		*b.dst = d
	}
	return rng, nil
}

// parseInvoiceFilter reads the invoice list query.
func (s *Server) parseInvoiceFilter(q url.Values) (core.InvoiceFilter, error) {
	rng, err := s.parseRange(q)
	if err != nil {
		return core.InvoiceFilter{}, err
	}
	payment, err := core.ParsePaymentFilter(q.Get("paid"))
	if err != nil {
		return core.InvoiceFilter{}, err
	}
	return core.InvoiceFilter{Range: rng, Payment: payment, Query: q.Get("q")}, nil
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
