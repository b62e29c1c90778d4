package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alecgard/roster/internal/httpx"
)

// Client provides typed wrappers around the employee management API.
type Client struct {
	http *httpx.Client
}

// NewClient creates a Client on top of the given HTTP adapter.
func NewClient(h *httpx.Client) *Client {
	return &Client{http: h}
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*httpx.Result[LoginResponse], error) {
	body := map[string]string{"email": email, "password": password}
	return httpx.Do[LoginResponse](ctx, c.http, "login", http.MethodPost, "/api/auth/login", nil, body)
}

// Me fetches the profile of the current credential's owner.
func (c *Client) Me(ctx context.Context) (*httpx.Result[Profile], error) {
	return httpx.Do[Profile](ctx, c.http, "me", http.MethodGet, "/api/auth/me", nil, nil)
}

// ListEmployees fetches one page of employees. An empty search is omitted
// from the query entirely.
func (c *Client) ListEmployees(ctx context.Context, page, pageSize int, search string) (*httpx.Result[PagedEmployees], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	if search != "" {
		q.Set("search", search)
	}
	return httpx.Do[PagedEmployees](ctx, c.http, "employees.list", http.MethodGet, "/api/employees", q, nil)
}

// GetEmployee fetches a single employee by id.
func (c *Client) GetEmployee(ctx context.Context, id string) (*httpx.Result[Employee], error) {
	return httpx.Do[Employee](ctx, c.http, "employees.get", http.MethodGet, "/api/employees/"+url.PathEscape(id), nil, nil)
}

// LookupEmployees searches employees by name for autocomplete selection.
func (c *Client) LookupEmployees(ctx context.Context, search string, limit int) (*httpx.Result[[]LookupEntry], error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("limit", strconv.Itoa(limit))
	return httpx.Do[[]LookupEntry](ctx, c.http, "employees.lookup", http.MethodGet, "/api/employees/lookup", q, nil)
}

// CreateEmployee creates a new employee record.
func (c *Client) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*httpx.Result[Employee], error) {
	return httpx.Do[Employee](ctx, c.http, "employees.create", http.MethodPost, "/api/employees", nil, req)
}

// UpdateEmployee replaces an existing employee record.
func (c *Client) UpdateEmployee(ctx context.Context, id string, payload EmployeePayload) (*httpx.Result[struct{}], error) {
	return httpx.Do[struct{}](ctx, c.http, "employees.update", http.MethodPut, "/api/employees/"+url.PathEscape(id), nil, payload)
}

// DeleteEmployee removes an employee record.
func (c *Client) DeleteEmployee(ctx context.Context, id string) (*httpx.Result[struct{}], error) {
	return httpx.Do[struct{}](ctx, c.http, "employees.delete", http.MethodDelete, "/api/employees/"+url.PathEscape(id), nil, nil)
}
