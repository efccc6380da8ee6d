// Package notionfake serves an in-memory subset of the Notion API over
// httptest for repository and router tests.
package notionfake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

// TestAPIKey is the credential the fake expects.
const TestAPIKey = "secret_test"

type failure struct {
	status  int
	code    notionclient.ErrorCode
	message string
}

// Server is an in-memory Notion API.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	databases   map[string]string // normalized id -> id as registered
	pages       map[string]*notionclient.Page
	order       []string
	writes      int
	maxPageSize int
	failures    []failure
}

// New starts a fake serving the given databases. It is closed on test cleanup.
func New(t testing.TB, databaseIDs ...string) *Server {
	t.Helper()
	s := &Server{
		databases:   make(map[string]string),
		pages:       make(map[string]*notionclient.Page),
		maxPageSize: 100,
	}
	for _, id := range databaseIDs {
		s.databases[notionclient.NormalizeID(id)] = id
	}

	r := chi.NewRouter()
	r.Use(s.authenticate, s.injectFailure)
	r.Post("/v1/databases/{id}/query", s.handleQuery)
	r.Get("/v1/databases/{id}", s.handleRetrieveDatabase)
	r.Get("/v1/pages/{id}", s.handleRetrievePage)
	r.Post("/v1/pages", s.handleCreatePage)
	r.Patch("/v1/pages/{id}", s.handleUpdatePage)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns a Notion client pointed at the fake.
func (s *Server) Client() *notionclient.Client {
	return notionclient.NewClient(s.URL, TestAPIKey)
}

// AddPage seeds a page into a database and returns its id.
func (s *Server) AddPage(databaseID string, props map[string]notionclient.Property) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	page := &notionclient.Page{
		Object:         "page",
		ID:             uuid.NewString(),
		CreatedTime:    now,
		LastEditedTime: now,
		Parent:         notionclient.Parent{Type: "database_id", DatabaseID: databaseID},
		Properties:     normalizeProperties(props),
	}
	key := notionclient.NormalizeID(page.ID)
	s.pages[key] = page
	s.order = append(s.order, key)
	return page.ID
}

// Page returns a copy of a stored page.
func (s *Server) Page(id string) (notionclient.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[notionclient.NormalizeID(id)]
	if !ok {
		return notionclient.Page{}, false
	}
	return *page, true
}

// Writes counts create and update calls received.
func (s *Server) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// SetMaxPageSize caps query page sizes to exercise pagination.
func (s *Server) SetMaxPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxPageSize = n
}

// FailNext makes the next request fail with the given Notion error.
func (s *Server) FailNext(status int, code notionclient.ErrorCode, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, code: code, message: message})
}

// CategoryProperties builds the property set of a category page.
func CategoryProperties(name, code string) map[string]notionclient.Property {
	props := map[string]notionclient.Property{
		"Name": notionclient.TitleValue(name),
	}
	if code != "" {
		props["Category ID"] = notionclient.RichTextValue(code)
	} else {
		props["Category ID"] = notionclient.Property{Type: notionclient.PropertyTypeRichText}
	}
	return props
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+TestAPIKey {
			writeError(w, http.StatusUnauthorized, notionclient.CodeUnauthorized, "API token is invalid.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if f != nil {
			writeError(w, f.status, f.code, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	dbKey := notionclient.NormalizeID(chi.URLParam(r, "id"))

	var req notionclient.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, notionclient.CodeInvalidJSON, "Error parsing JSON body.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.databases[dbKey]; !ok {
		writeError(w, http.StatusNotFound, notionclient.CodeObjectNotFound, "Could not find database.")
		return
	}

	var matches []notionclient.Page
	for _, key := range s.order {
		page := s.pages[key]
		if page.Archived || notionclient.NormalizeID(page.Parent.DatabaseID) != dbKey {
			continue
		}
		matches = append(matches, *page)
	}

	size := req.PageSize
	if size <= 0 || size > s.maxPageSize {
		size = s.maxPageSize
	}
	start := 0
	if req.StartCursor != "" {
		n, err := strconv.Atoi(req.StartCursor)
		if err != nil || n < 0 || n > len(matches) {
			writeError(w, http.StatusBadRequest, notionclient.CodeValidation, "start_cursor is invalid.")
			return
		}
		start = n
	}
	end := start + size
	if end > len(matches) {
		end = len(matches)
	}

	resp := notionclient.QueryResponse{Object: "list", Results: matches[start:end]}
	if resp.Results == nil {
		resp.Results = []notionclient.Page{}
	}
	if end < len(matches) {
		next := strconv.Itoa(end)
		resp.HasMore = true
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetrieveDatabase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	registered, ok := s.databases[notionclient.NormalizeID(id)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, notionclient.CodeObjectNotFound, "Could not find database with ID: "+id)
		return
	}
	writeJSON(w, http.StatusOK, notionclient.Database{Object: "database", ID: registered})
}

func (s *Server) handleRetrievePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !notionclient.IsValidID(id) {
		writeError(w, http.StatusBadRequest, notionclient.CodeValidation, "path failed validation: path.page_id should be a valid uuid")
		return
	}
	page, ok := s.Page(id)
	if !ok {
		writeError(w, http.StatusNotFound, notionclient.CodeObjectNotFound, "Could not find page with ID: "+id)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req notionclient.CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, notionclient.CodeInvalidJSON, "Error parsing JSON body.")
		return
	}

	s.mu.Lock()
	s.writes++
	_, ok := s.databases[notionclient.NormalizeID(req.Parent.DatabaseID)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, notionclient.CodeObjectNotFound, "Could not find database with ID: "+req.Parent.DatabaseID)
		return
	}

	id := s.AddPage(req.Parent.DatabaseID, req.Properties)
	page, _ := s.Page(id)
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req notionclient.UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, notionclient.CodeInvalidJSON, "Error parsing JSON body.")
		return
	}

	s.mu.Lock()
	s.writes++
	page, ok := s.pages[notionclient.NormalizeID(id)]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, notionclient.CodeObjectNotFound, "Could not find page with ID: "+id)
		return
	}
	for name, prop := range normalizeProperties(req.Properties) {
		page.Properties[name] = prop
	}
	if req.Archived != nil {
		page.Archived = *req.Archived
	}
	page.LastEditedTime = time.Now().UTC()
	snapshot := *page
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}

// normalizeProperties fills in the type and plain_text members Notion adds to
// stored values.
func normalizeProperties(props map[string]notionclient.Property) map[string]notionclient.Property {
	out := make(map[string]notionclient.Property, len(props))
	for name, prop := range props {
		switch {
		case len(prop.Title) > 0:
			prop.Type = notionclient.PropertyTypeTitle
			prop.Title = withPlainText(prop.Title)
		case len(prop.RichText) > 0:
			prop.Type = notionclient.PropertyTypeRichText
			prop.RichText = withPlainText(prop.RichText)
		}
		out[name] = prop
	}
	return out
}

func withPlainText(runs []notionclient.RichText) []notionclient.RichText {
	out := make([]notionclient.RichText, len(runs))
	for i, run := range runs {
		if run.Text != nil && run.PlainText == "" {
			run.PlainText = run.Text.Content
		}
		out[i] = run
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code notionclient.ErrorCode, message string) {
	writeJSON(w, status, map[string]interface{}{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	})
}
