package server

import "net/http"

// Mux serves mounted [Handler] routes behind a middleware chain.
//
// OAuth redirects are plain browser navigations, so anything other than GET or
// HEAD is refused before it reaches a handler.
type Mux struct {
	mux   *http.ServeMux
	chain []Middleware
}

// NewMux creates a [Mux]. The first middleware is the outermost.
func NewMux(middleware ...Middleware) *Mux {
	return &Mux{mux: http.NewServeMux(), chain: middleware}
}

// Mount registers every route of h.
func (m *Mux) Mount(h Handler) {
	var wrapped http.Handler = h
	for i := len(m.chain) - 1; i >= 0; i-- {
		wrapped = m.chain[i](wrapped)
	}
	for _, route := range h.Routes() {
		m.mux.Handle(route, wrapped)
	}
}

func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m.mux.ServeHTTP(w, r)
}
