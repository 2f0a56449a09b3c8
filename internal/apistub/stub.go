// Package apistub serves a fake gallery API for offline runs and tests.
package apistub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Path is the route the stub answers on.
const Path = "/api.php"

// Page identifies one gallery page as the API sees it (page is one-based).
type Page struct {
	Gid    int64
	PToken string
	Page   int
}

// ParseEntry reads a "gid/ptoken/page=token" seed, page one-based.
func ParseEntry(raw string) (Page, string, error) {
	key, token, ok := strings.Cut(raw, "=")
	if !ok || token == "" {
		return Page{}, "", fmt.Errorf("apistub: entry %q: want gid/ptoken/page=token", raw)
	}
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[1] == "" {
		return Page{}, "", fmt.Errorf("apistub: entry %q: want gid/ptoken/page=token", raw)
	}
	gid, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Page{}, "", fmt.Errorf("apistub: entry %q: gid: %w", raw, err)
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil {
		return Page{}, "", fmt.Errorf("apistub: entry %q: page: %w", raw, err)
	}
	return Page{Gid: gid, PToken: parts[1], Page: page}, token, nil
}

// Server is an in-memory gallery API. Register tokens with Add.
type Server struct {
	mu     sync.Mutex
	tokens map[Page]string
	status int
	calls  int
}

// New returns an empty stub.
func New() *Server {
	return &Server{tokens: make(map[Page]string)}
}

// Add makes the stub answer gtoken for p with token.
func (s *Server) Add(p Page, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[p] = token
}

// FailWith makes every request answer with the given HTTP status.
// Zero restores normal behaviour.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Calls returns how many API requests were served.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Router returns the HTTP handler for the stub.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(Path, s.handleAPI).Methods(http.MethodPost)
	return r
}

type apiRequest struct {
	Method   string            `json:"method"`
	PageList []json.RawMessage `json:"pagelist"`
}

type tokenEntry struct {
	Gid   int64  `json:"gid"`
	Token string `json:"token"`
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls++
	status := s.status
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	var req apiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]string{"error": "malformed request"})
		return
	}

	switch req.Method {
	case "gtoken":
		s.handleGToken(w, req)
	default:
		writeJSON(w, map[string]string{"error": fmt.Sprintf("unknown method %q", req.Method)})
	}
}

func (s *Server) handleGToken(w http.ResponseWriter, req apiRequest) {
	var list []tokenEntry
	for _, raw := range req.PageList {
		var triple [3]json.RawMessage
		if err := json.Unmarshal(raw, &triple); err != nil {
			writeJSON(w, map[string]string{"error": "malformed pagelist"})
			return
		}
		var p Page
		if json.Unmarshal(triple[0], &p.Gid) != nil ||
			json.Unmarshal(triple[1], &p.PToken) != nil ||
			json.Unmarshal(triple[2], &p.Page) != nil {
			writeJSON(w, map[string]string{"error": "malformed pagelist"})
			return
		}

		s.mu.Lock()
		token, ok := s.tokens[p]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, map[string]string{"error": "Key mismatch"})
			return
		}
		list = append(list, tokenEntry{Gid: p.Gid, Token: token})
	}
	writeJSON(w, map[string]any{"tokenlist": list})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
