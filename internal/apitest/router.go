package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alecgard/roster/internal/api"
	"github.com/go-chi/chi/v5"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Error   []errDetail `json:"error"`
}

type errDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type contextKey int

const callerKey contextKey = iota

// Router builds the fixture's HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAuth)

		pr.Get("/api/auth/me", s.handleMe)
		pr.Get("/api/employees", s.handleList)
		pr.Get("/api/employees/lookup", s.handleLookup)
		pr.Get("/api/employees/{id}", s.handleGet)
		pr.Post("/api/employees", s.handleCreate)
		pr.Put("/api/employees/{id}", s.handleUpdate)
		pr.Delete("/api/employees/{id}", s.handleDelete)
	})

	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeFailure(w, http.StatusUnauthorized, "unauthorized", "missing or malformed authorization header")
			return
		}

		caller, ok := s.authenticate(token)
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFromContext(ctx context.Context) api.Employee {
	caller, _ := ctx.Value(callerKey).(api.Employee)
	return caller
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	token, emp, ok := s.login(req.Email, req.Password)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	writeSuccess(w, http.StatusOK, "authenticated", api.LoginResponse{
		AccessToken:      token,
		TokenType:        "Bearer",
		ExpiresInMinutes: 60,
		Employee:         emp,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	writeSuccess(w, http.StatusOK, "", api.Profile{
		ID:    caller.ID,
		Email: caller.Email,
		Role:  caller.Role,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)
	search := strings.ToLower(r.URL.Query().Get("search"))

	all := s.sorted()
	matched := all[:0:0]
	for _, e := range all {
		if search == "" || matchesSearch(e, search) {
			matched = append(matched, e)
		}
	}

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start < 0 || start >= total {
		matched = matched[:0]
	} else {
		end := start + pageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}

	writeSuccess(w, http.StatusOK, "", api.PagedEmployees{
		Items:      matched,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

func matchesSearch(e api.Employee, search string) bool {
	for _, field := range []string{e.FirstName, e.LastName, e.Email, e.DocNumber} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	limit := queryInt(r, "limit", 20)

	entries := []api.LookupEntry{}
	for _, e := range s.sorted() {
		if len(entries) >= limit {
			break
		}
		if search != "" && !strings.Contains(strings.ToLower(e.FullName()), search) {
			continue
		}
		entries = append(entries, api.LookupEntry{ID: e.ID, FullName: e.FullName()})
	}

	writeSuccess(w, http.StatusOK, "", entries)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.Employee(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, http.StatusNotFound, "not_found", "employee not found")
		return
	}
	writeSuccess(w, http.StatusOK, "", e)
}

// writePayload is the body shape shared by create and update. Writes carry
// the birth date as dateOfBirth; reads report it as birthDate.
type writePayload struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	DocNumber   string   `json:"docNumber"`
	DateOfBirth string   `json:"dateOfBirth"`
	Role        api.Role `json:"role"`
	ManagerID   *string  `json:"managerId"`
	Phones      []string `json:"phones"`
	Password    string   `json:"password"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req writePayload
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "validation", "password is required")
		return
	}
	if s.emailTaken(req.Email, "") {
		writeFailure(w, http.StatusConflict, "conflict", "email already in use")
		return
	}

	e := api.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		DocNumber: req.DocNumber,
		BirthDate: req.DateOfBirth,
		Role:      req.Role,
		ManagerID: req.ManagerID,
		Phones:    req.Phones,
	}
	id := s.Seed(e, req.Password)
	created, _ := s.Employee(id)

	writeSuccess(w, http.StatusCreated, "employee created", created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req writePayload
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	s.mu.Lock()
	existing, ok := s.employees[id]
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "not_found", "employee not found")
		return
	}
	if s.emailTaken(req.Email, id) {
		writeFailure(w, http.StatusConflict, "conflict", "email already in use")
		return
	}

	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.Email = req.Email
	existing.DocNumber = req.DocNumber
	existing.BirthDate = req.DateOfBirth
	existing.Role = req.Role
	existing.ManagerID = req.ManagerID
	existing.Phones = req.Phones

	s.mu.Lock()
	s.employees[id] = existing
	s.mu.Unlock()

	writeSuccess(w, http.StatusOK, "employee updated", nil)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if caller.Role == api.RoleEmployee {
		writeFailure(w, http.StatusForbidden, "forbidden", "insufficient role to delete employees")
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.employees[id]
	if ok {
		delete(s.employees, id)
	}
	s.mu.Unlock()

	if !ok {
		writeFailure(w, http.StatusNotFound, "not_found", "employee not found")
		return
	}
	writeSuccess(w, http.StatusOK, "employee deleted", nil)
}

func (s *Server) emailTaken(email, exceptID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.employees {
		if e.ID != exceptID && strings.EqualFold(e.Email, email) {
			return true
		}
	}
	return false
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func readJSON(r *http.Request, v interface{}) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, envelope{Success: true, Message: message, Data: data, Error: []errDetail{}})
}

func writeFailure(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, envelope{
		Success: false,
		Message: message,
		Data:    nil,
		Error:   []errDetail{{Code: code, Message: message}},
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Println("apitest: encoding response:", err)
	}
}
