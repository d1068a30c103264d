package daemon

import (
	"net/http"
	"strings"
)

// ServeMux only accepts patterns under its API namespace so a route can
// never be served outside the versioned prefix.
type ServeMux struct {
	httpServeMux http.ServeMux
	BaseURL      string
}

func NewServeMux(baseURL string) *ServeMux {
	return &ServeMux{
		httpServeMux: http.ServeMux{},
		BaseURL:      baseURL,
	}
}

func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.httpServeMux.ServeHTTP(w, r)
}

func (m *ServeMux) HandleFunc(
	pattern string,
	handler func(http.ResponseWriter, *http.Request),
) {
	path := pattern
	if _, p, ok := strings.Cut(pattern, " "); ok {
		path = p
	}

	if path != m.BaseURL && !strings.HasPrefix(path, m.BaseURL+"/") {
		panic("pattern outside API namespace " + m.BaseURL + ": " + pattern)
	}

	m.httpServeMux.HandleFunc(pattern, handler)
}

// NotFound answers every request no registered pattern matches.
func (m *ServeMux) NotFound(handler http.HandlerFunc) {
	m.httpServeMux.HandleFunc("/", handler)
}
