// internal/httpserver/server.go
//
// HTTP wiring for the multiplayer word-guessing backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, panic recovery, request IDs).
//   - Diagnostics: "/", "/health", "/debug/words".
//   - Room inspection: GET /rooms, GET /rooms/{id}.
//   - Administration: POST /admin/reset (global reset, destructive).
//   - Real-time gateway: GET /ws (see ws.go).
//
// Notes:
//   - The request timeout middleware covers REST routes only; the
//     WebSocket route is long-lived and registered outside it.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"wordclash/internal/registry"
	"wordclash/internal/session"
	"wordclash/internal/words"
)

// Server bundles the router and the room registry.
type Server struct {
	r      *chi.Mux
	reg    *registry.Registry
	origin string
}

// New constructs a Server, installs middleware, and registers routes.
func New(reg *registry.Registry, clientOrigin string) *Server {
	s := &Server{r: chi.NewRouter(), reg: reg, origin: clientOrigin}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"wordclash","endpoints":["/health","/rooms","GET /ws","POST /admin/reset"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, req *http.Request) {
			t, a := words.Stats()
			_ = json.NewEncoder(w).Encode(map[string]int{"targets": t, "allowed": a})
		})

		r.Get("/rooms", s.handleListRooms)
		r.Get("/rooms/{id}", s.handleRoomView)
		r.Post("/admin/reset", s.handleGlobalReset)
	})

	// Real-time gateway (long-lived, no timeout middleware)
	s.r.Get("/ws", s.handleWS)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+req.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured client origin ("*" by default).
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- rooms -------------------------------------

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	reply := make(chan []string, 1)
	s.reg.Inbox() <- registry.ListRooms{Reply: reply}
	ids := <-reply
	if ids == nil {
		ids = []string{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"rooms": ids})
}

func (s *Server) handleRoomView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reply := make(chan *session.Session, 1)
	s.reg.Inbox() <- registry.GetRoom{ID: id, Reply: reply}
	sess := <-reply
	if sess == nil {
		http.Error(w, `{"error":"room_not_found"}`, http.StatusNotFound)
		return
	}
	viewReply := make(chan session.View, 1)
	sess.Inbox() <- session.GetView{Reply: viewReply}
	view := <-viewReply
	_ = json.NewEncoder(w).Encode(view.State)
}

// handleGlobalReset discards every room and clears durable storage.
func (s *Server) handleGlobalReset(w http.ResponseWriter, r *http.Request) {
	reply := make(chan error, 1)
	s.reg.Inbox() <- registry.GlobalReset{Reply: reply}
	if err := <-reply; err != nil {
		http.Error(w, `{"error":"reset_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
