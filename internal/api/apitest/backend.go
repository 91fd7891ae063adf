// Package apitest provides an in-memory stand-in for the GasControl REST
// backend, for tests that exercise the client end to end.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

// Backend serves /api/gasometros/ and /api/leituras/ from memory. Apartments
// hold at most one gasometer, as the real backend enforces.
type Backend struct {
	Server *httptest.Server

	mu         sync.Mutex
	gasometers map[int]models.Gasometer
	readings   map[int]models.Reading
	nextID     int
	failures   map[string]int
	requests   []string
}

// NewBackend starts a backend. Close it with Close.
func NewBackend() *Backend {
	b := &Backend{
		gasometers: make(map[int]models.Gasometer),
		readings:   make(map[int]models.Reading),
		failures:   make(map[string]int),
		nextID:     1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /gasometros/", b.listGasometers)
	mux.HandleFunc("POST /gasometros/", b.createGasometer)
	mux.HandleFunc("PUT /gasometros/{id}/", b.updateGasometer)
	mux.HandleFunc("DELETE /gasometros/{id}/", b.deleteGasometer)
	mux.HandleFunc("GET /leituras/", b.listReadings)
	mux.HandleFunc("POST /leituras/", b.createReading)
	mux.HandleFunc("PUT /leituras/{id}/", b.updateReading)
	mux.HandleFunc("DELETE /leituras/{id}/", b.deleteReading)

	b.Server = httptest.NewServer(http.StripPrefix("/api", b.record(mux)))
	return b
}

// URL is the API base URL.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

func (b *Backend) Close() {
	b.Server.Close()
}

// FailWith makes requests whose "METHOD /path" matches key answer status
// with an empty body, until cleared with status 0.
func (b *Backend) FailWith(key string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = status
}

// Requests returns the "METHOD /path" of every request served so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *Backend) AddGasometer(code string, apartment int) models.Gasometer {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := models.Gasometer{ID: b.id(), Code: code, Apartment: models.ApartmentRef{ID: apartment}}
	b.gasometers[g.ID] = g
	return g
}

func (b *Backend) AddReading(gasometer int, date, consumption string, p models.Periodicity) models.Reading {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := models.Reading{ID: b.id(), Gasometer: gasometer, Date: date, Consumption: models.Consumption(consumption), Periodicity: p}
	b.readings[r.ID] = r
	return r
}

func (b *Backend) id() int {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		b.mu.Lock()
		b.requests = append(b.requests, key)
		status, fail := b.failures[key]
		b.mu.Unlock()

		if fail {
			w.WriteHeader(status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) listGasometers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, sortedValues(b.gasometers, func(g models.Gasometer) int { return g.ID }))
}

func (b *Backend) createGasometer(w http.ResponseWriter, r *http.Request) {
	var p models.GasometerPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "JSON parse error."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if fields := b.validateGasometer(p, 0); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	g := models.Gasometer{ID: b.id(), Code: p.Code, Apartment: models.ApartmentRef{ID: p.Apartment}}
	b.gasometers[g.ID] = g
	writeJSON(w, http.StatusCreated, g)
}

func (b *Backend) updateGasometer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p models.GasometerPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "JSON parse error."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.gasometers[id]; !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	if fields := b.validateGasometer(p, id); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	g := models.Gasometer{ID: id, Code: p.Code, Apartment: models.ApartmentRef{ID: p.Apartment}}
	b.gasometers[id] = g
	writeJSON(w, http.StatusOK, g)
}

func (b *Backend) validateGasometer(p models.GasometerPayload, self int) map[string]any {
	for _, g := range b.gasometers {
		if g.ID != self && g.Apartment.ID == p.Apartment {
			return map[string]any{"apartamento": []string{"Este apartamento já possui um gasômetro."}}
		}
	}
	return nil
}

func (b *Backend) deleteGasometer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.gasometers[id]; !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	delete(b.gasometers, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listReadings(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, sortedValues(b.readings, func(r models.Reading) int { return r.ID }))
}

func (b *Backend) createReading(w http.ResponseWriter, r *http.Request) {
	var p models.ReadingPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "JSON parse error."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.gasometers[p.Gasometer]; !exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"gasometro": []string{"Invalid pk - object does not exist."}})
		return
	}
	reading := readingFromPayload(b.id(), p)
	b.readings[reading.ID] = reading
	writeJSON(w, http.StatusCreated, reading)
}

func (b *Backend) updateReading(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p models.ReadingPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "JSON parse error."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.readings[id]; !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	reading := readingFromPayload(id, p)
	b.readings[id] = reading
	writeJSON(w, http.StatusOK, reading)
}

func (b *Backend) deleteReading(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.readings[id]; !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	delete(b.readings, id)
	w.WriteHeader(http.StatusNoContent)
}

func readingFromPayload(id int, p models.ReadingPayload) models.Reading {
	return models.Reading{
		ID:          id,
		Gasometer:   p.Gasometer,
		Date:        p.Date,
		Consumption: models.Consumption(strconv.FormatFloat(p.Consumption, 'f', 2, 64)),
		Periodicity: p.Periodicity,
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

func sortedValues[T any](m map[int]T, key func(T) int) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
