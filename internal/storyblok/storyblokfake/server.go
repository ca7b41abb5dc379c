// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storyblokfake provides an in-memory fake of the Storyblok management
// API for tests.
//
// It serves the spaces and components endpoints over httptest, records every
// call, and can inject failure responses through stubs that match a method and
// path fragment.
package storyblokfake

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/buger/jsonparser"
	json "github.com/goccy/go-json"

	"github.com/bartekus/devflow/internal/schema"
)

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
	Body   []byte
}

// Stub replaces the response of matching requests.
type Stub struct {
	// Method matches the HTTP method; empty matches any.
	Method string
	// PathContains matches a fragment of the request path; empty matches any.
	PathContains string
	Status       int
	Body         string
	// Times limits how often the stub fires; 0 means always.
	Times int
}

type space struct {
	id         int64
	name       string
	components []*schema.Object
}

// Server is a fake management API.
type Server struct {
	mu     sync.Mutex
	srv    *httptest.Server
	token  string
	nextID int64
	spaces []*space
	stubs  []*Stub
	calls  []Call
}

// NewServer starts a fake that accepts only token. An empty token accepts anything.
func NewServer(token string) *Server {
	s := &Server{token: token, nextID: 1000}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL is the API root to pass to storyblok.NewClient.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// AddSpace registers a space and returns its id.
func (s *Server) AddSpace(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addSpace(name).id
}

// AddComponent seeds a component from JSON and returns its remote id.
func (s *Server) AddComponent(spaceID int64, src string) (int64, error) {
	obj, err := schema.ParseObject([]byte(src))
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := s.space(strconv.FormatInt(spaceID, 10))
	if sp == nil {
		return 0, fmt.Errorf("unknown space %d", spaceID)
	}
	stored := s.insert(sp, obj)
	v, _ := stored.Get("id")
	return int64(v.(float64)), nil
}

// Components returns a copy of the components stored in a space.
func (s *Server) Components(spaceID int64) []*schema.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := s.space(strconv.FormatInt(spaceID, 10))
	if sp == nil {
		return nil
	}
	out := make([]*schema.Object, 0, len(sp.components))
	for _, c := range sp.components {
		out = append(out, c.Clone())
	}
	return out
}

// Stub injects a failure response.
func (s *Server) Stub(st Stub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, &st)
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts received requests with method.
func (s *Server) CallCount(method string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Body: body})

	if s.token != "" && r.Header.Get("Authorization") != s.token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	if st := s.matchStub(r); st != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(st.Status)
		_, _ = io.WriteString(w, st.Body)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "spaces":
		s.handleSpaces(w, r, body)
	case len(parts) == 3 && parts[0] == "spaces" && parts[2] == "components":
		s.handleComponents(w, r, parts[1], body)
	case len(parts) == 4 && parts[0] == "spaces" && parts[2] == "components":
		s.handleComponent(w, r, parts[1], parts[3], body)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

func (s *Server) matchStub(r *http.Request) *Stub {
	for i, st := range s.stubs {
		if st.Method != "" && st.Method != r.Method {
			continue
		}
		if st.PathContains != "" && !strings.Contains(r.URL.Path, st.PathContains) {
			continue
		}
		if st.Times > 0 {
			st.Times--
			if st.Times == 0 {
				s.stubs = append(s.stubs[:i], s.stubs[i+1:]...)
			}
		}
		return st
	}
	return nil
}

func (s *Server) handleSpaces(w http.ResponseWriter, r *http.Request, body []byte) {
	switch r.Method {
	case http.MethodGet:
		list := make([]map[string]any, 0, len(s.spaces))
		for _, sp := range s.spaces {
			list = append(list, map[string]any{"id": sp.id, "name": sp.name})
		}
		writeJSON(w, http.StatusOK, map[string]any{"spaces": list})
	case http.MethodPost:
		name, err := jsonparser.GetString(body, "space", "name")
		if err != nil || name == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"name": []string{"can't be blank"}})
			return
		}
		sp := s.addSpace(name)
		writeJSON(w, http.StatusCreated, map[string]any{"space": map[string]any{"id": sp.id, "name": sp.name}})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request, spaceID string, body []byte) {
	sp := s.space(spaceID)
	if sp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Space not found"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		list := make([]*schema.Object, 0, len(sp.components))
		list = append(list, sp.components...)
		writeJSON(w, http.StatusOK, map[string]any{"components": list})
	case http.MethodPost:
		obj, ok := componentPayload(w, body)
		if !ok {
			return
		}
		name, _ := obj.String("name")
		if sp.byName(name) != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"name": []string{"has already been taken"}})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"component": s.insert(sp, obj)})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request, spaceID, rawID string, body []byte) {
	sp := s.space(spaceID)
	id, err := strconv.ParseInt(rawID, 10, 64)
	if sp == nil || err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	for i, existing := range sp.components {
		v, _ := existing.Get("id")
		if v != float64(id) {
			continue
		}
		obj, ok := componentPayload(w, body)
		if !ok {
			return
		}
		updated := schema.NewObject()
		updated.Set("id", float64(id))
		for _, k := range obj.Keys() {
			if k == "id" {
				continue
			}
			v, _ := obj.Get(k)
			updated.Set(k, v)
		}
		sp.components[i] = updated
		writeJSON(w, http.StatusOK, map[string]any{"component": updated})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Component not found"})
}

func componentPayload(w http.ResponseWriter, body []byte) (*schema.Object, bool) {
	raw, dt, _, err := jsonparser.Get(body, "component")
	if err != nil || dt != jsonparser.Object {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"component": []string{"is missing"}})
		return nil, false
	}
	obj, err := schema.ParseObject(raw)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"component": []string{err.Error()}})
		return nil, false
	}
	if name, _ := obj.String("name"); name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"name": []string{"can't be blank"}})
		return nil, false
	}
	return obj, true
}

func (s *Server) addSpace(name string) *space {
	s.nextID++
	sp := &space{id: s.nextID, name: name}
	s.spaces = append(s.spaces, sp)
	return sp
}

func (s *Server) space(id string) *space {
	for _, sp := range s.spaces {
		if strconv.FormatInt(sp.id, 10) == id {
			return sp
		}
	}
	return nil
}

func (s *Server) insert(sp *space, obj *schema.Object) *schema.Object {
	s.nextID++
	stored := schema.NewObject()
	stored.Set("id", float64(s.nextID))
	for _, k := range obj.Keys() {
		if k == "id" {
			continue
		}
		v, _ := obj.Get(k)
		stored.Set(k, v)
	}
	sp.components = append(sp.components, stored)
	return stored
}

func (sp *space) byName(name string) *schema.Object {
	for _, c := range sp.components {
		if n, _ := c.String("name"); n == name {
			return c
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
