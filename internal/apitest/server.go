// Package apitest provides an in-memory employee API fixture implementing
// the contract the client consumes: bearer-authenticated JSON endpoints
// wrapped in the uniform {success, message, data, error} envelope. It backs
// the package tests; it is not a production server.
package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alecgard/roster/internal/api"
	"golang.org/x/crypto/bcrypt"
)

// Credentials of the seeded director account.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "Admin@123"
)

// Server holds the in-memory employee set and session tokens.
type Server struct {
	mu        sync.Mutex
	employees map[string]api.Employee
	passwords map[string]string // email -> bcrypt hash
	tokens    map[string]string // token -> employee id
	nextID    int
}

// NewServer creates a Server seeded with one director account
// (AdminEmail / AdminPassword).
func NewServer() *Server {
	s := &Server{
		employees: make(map[string]api.Employee),
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
	}
	s.Seed(api.Employee{
		FirstName: "Ada",
		LastName:  "Admin",
		Email:     AdminEmail,
		DocNumber: "00000000001",
		BirthDate: "1980-01-01",
		Role:      api.RoleDirector,
		Phones:    []string{"+1 555 0100", "+1 555 0101"},
	}, AdminPassword)
	return s
}

// Seed inserts an employee, assigning an id if empty, and registers its
// password. It returns the id.
func (s *Server) Seed(e api.Employee, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		s.nextID++
		e.ID = fmt.Sprintf("e-%d", s.nextID)
	}
	if e.Phones == nil {
		e.Phones = []string{}
	}
	s.employees[e.ID] = e

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.passwords[strings.ToLower(e.Email)] = string(hash)
	return e.ID
}

// IssueToken creates a session token for the given employee id, bypassing
// login. Useful for tests that start authenticated.
func (s *Server) IssueToken(employeeID string) string {
	token := newToken()
	s.mu.Lock()
	s.tokens[token] = employeeID
	s.mu.Unlock()
	return token
}

// RevokeToken invalidates a session token, simulating expiry.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// Employee returns a stored employee by id.
func (s *Server) Employee(id string) (api.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	return e, ok
}

// Count returns the number of stored employees.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.employees)
}

// authenticate resolves a bearer token to the calling employee.
func (s *Server) authenticate(token string) (api.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return api.Employee{}, false
	}
	e, ok := s.employees[id]
	return e, ok
}

// login verifies email/password and issues a token.
func (s *Server) login(email, password string) (string, api.Employee, bool) {
	s.mu.Lock()
	hash, ok := s.passwords[strings.ToLower(email)]
	var found api.Employee
	if ok {
		ok = false
		for _, e := range s.employees {
			if strings.EqualFold(e.Email, email) {
				found, ok = e, true
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", api.Employee{}, false
	}

	token := newToken()
	s.mu.Lock()
	s.tokens[token] = found.ID
	s.mu.Unlock()
	return token, found, true
}

// sorted returns all employees ordered by first name, last name, then id.
func (s *Server) sorted() []api.Employee {
	s.mu.Lock()
	out := make([]api.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func newToken() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return "tok_" + hex.EncodeToString(b)
}
