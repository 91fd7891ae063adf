package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := NewClient(srv.URL+"/api/", logger, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("", nil)
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8000/api/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", c.BaseURL())
}

func TestListReadings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/leituras/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":1,"gasometro":3,"data_leitura":"2024-01-01","consumo_m3":"2.50","periodicidade":"MENSAL"},
			{"id":2,"gasometro":4,"data_leitura":"2024-01-02","consumo_m3":1.5,"periodicidade":"SEMANAL"}
		]`)
	})

	readings, err := client.Readings().List(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 2.5, readings[0].Consumption.Float64())
	assert.Equal(t, models.Weekly, readings[1].Periodicity)
}

func TestListNotFoundIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	readings, err := client.Readings().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, readings)
	assert.Empty(t, readings)
}

func TestListServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	_, err := client.Gasometers().List(context.Background())
	require.Error(t, err)
	fe, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.Nil(t, fe.Fields)
	assert.Equal(t, "request failed with status 500", err.Error())
}

func TestCreateGasometer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/gasometros/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]any{"codigo": "G-1", "apartamento": float64(101)}, payload)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":9,"codigo":"G-1","apartamento":101,"apartamento_info":"Apto 101"}`)
	})

	created, err := client.Gasometers().Create(context.Background(), models.GasometerPayload{Code: "G-1", Apartment: 101})
	require.NoError(t, err)
	assert.Equal(t, 9, created.ID)
	assert.Equal(t, "Apto 101", created.ApartmentLabel())
}

func TestCreateValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"apartamento":["Invalid pk \"999\" - object does not exist."]}`)
	})

	_, err := client.Gasometers().Create(context.Background(), models.GasometerPayload{Code: "G-1", Apartment: 999})
	require.Error(t, err)

	fe, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, fe.StatusCode)

	msg, ok := fe.FieldMessage("apartamento")
	require.True(t, ok)
	assert.Equal(t, `Invalid pk "999" - object does not exist.`, msg)

	_, ok = fe.FieldMessage("codigo")
	assert.False(t, ok, "absent field must not panic")
	assert.Contains(t, err.Error(), "apartamento: Invalid pk")
}

func TestUpdateAndDeletePaths(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			_, _ = io.WriteString(w, `{"id":7,"gasometro":1,"data_leitura":"2024-02-01","consumo_m3":"4.00","periodicidade":"BIMESTRAL"}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	updated, err := client.Readings().Update(context.Background(), 7, models.ReadingPayload{
		Gasometer:   1,
		Date:        "2024-02-01",
		Consumption: 4,
		Periodicity: models.Bimonthly,
	})
	require.NoError(t, err)
	assert.Equal(t, models.Bimonthly, updated.Periodicity)

	require.NoError(t, client.Readings().Delete(context.Background(), 7))
	assert.Equal(t, []string{"PUT /api/leituras/7/", "DELETE /api/leituras/7/"}, seen)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client, err := NewClient(url, logger)
	require.NoError(t, err)

	_, err = client.Readings().List(context.Background())
	assert.ErrorIs(t, err, ErrRequest)
}

func TestTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, WithTimeout(20*time.Millisecond))

	_, err := client.Gasometers().List(context.Background())
	assert.ErrorIs(t, err, ErrRequest)
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	require.NoError(t, err)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}, WithMetrics(metrics), WithRateLimit(100, 5))

	for i := 0; i < 3; i++ {
		_, err := client.Gasometers().List(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.requests.WithLabelValues("gasometers", "GET", "200")))

	_, err = NewMetrics(registry)
	assert.Error(t, err, "duplicate registration")
}

func TestRateLimit(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	require.NoError(t, err)

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `[]`)
	}, WithMetrics(metrics), WithRateLimit(0.5, 1), WithTimeout(100*time.Millisecond))

	_, err = client.Readings().List(context.Background())
	require.NoError(t, err)

	_, err = client.Readings().List(context.Background())
	assert.ErrorIs(t, err, ErrRequest)
	assert.Equal(t, int32(1), hits.Load(), "throttled request never reaches the backend")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("readings", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("readings", "GET", "error")))
}

func TestRateLimitDisabled(t *testing.T) {
	client, err := NewClient("http://localhost:8000/api", nil, WithRateLimit(100, 0), WithRateLimit(0, 1))
	require.NoError(t, err)
	assert.Nil(t, client.limiter)

	client, err = NewClient("http://localhost:8000/api", nil, WithRateLimit(2, 0))
	require.NoError(t, err)
	require.NotNil(t, client.limiter)
	assert.Equal(t, 1, client.limiter.Burst())
}
