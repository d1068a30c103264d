package daemon_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/govlink/govlink/internal/daemon"
)

func TestServeMux_HandleFunc(t *testing.T) {
	mux := daemon.NewServeMux("/govlink/v1")

	called := false
	handler := func(w http.ResponseWriter, _ *http.Request) {
		called = true

		w.WriteHeader(http.StatusOK)
	}

	assert.NotPanics(t, func() {
		mux.HandleFunc("GET /govlink/v1/accounts", handler)
	})

	assert.Panics(t, func() {
		mux.HandleFunc("POST /unregistered", handler)
	})

	assert.Panics(t, func() {
		mux.HandleFunc("GET /govlink/v10/accounts", handler)
	})

	req := httptest.NewRequest(http.MethodGet, "/govlink/v1/accounts", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServeMux_NotFound(t *testing.T) {
	mux := daemon.NewServeMux("/govlink/v1")
	mux.HandleFunc("GET /govlink/v1/accounts", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/somewhere/else", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTeapot, w.Code)
}
