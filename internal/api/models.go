package api

// Role is the authorization level assigned to an employee by the backend.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleLeader   Role = "Leader"
	RoleDirector Role = "Director"
)

// Profile is the authenticated caller's identity as reported by the backend.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Employee is the full employee record as returned by the backend.
// BirthDate is a calendar date in YYYY-MM-DD form.
type Employee struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	DocNumber string   `json:"docNumber"`
	BirthDate string   `json:"birthDate"`
	Role      Role     `json:"role"`
	ManagerID *string  `json:"managerId"`
	Phones    []string `json:"phones"`
}

// FullName returns the employee's display name.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// LoginResponse is the payload returned by a successful login.
type LoginResponse struct {
	AccessToken      string   `json:"accessToken"`
	TokenType        string   `json:"tokenType"`
	ExpiresInMinutes int      `json:"expiresInMinutes"`
	Employee         Employee `json:"employee"`
}

// PagedEmployees is a server-computed slice of the employee collection plus
// page metadata. The client treats it as opaque.
type PagedEmployees struct {
	Items      []Employee `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalItems int        `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
}

// LookupEntry is the lightweight projection used for manager autocomplete.
type LookupEntry struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// EmployeePayload is the write shape shared by create and update. The
// backend reads the birth date under "dateOfBirth" on writes even though it
// reports it as "birthDate" on reads.
type EmployeePayload struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	DocNumber   string   `json:"docNumber"`
	DateOfBirth string   `json:"dateOfBirth"`
	Role        Role     `json:"role"`
	ManagerID   *string  `json:"managerId"`
	Phones      []string `json:"phones"`
}

// CreateEmployeeRequest is an EmployeePayload plus the initial password.
type CreateEmployeeRequest struct {
	EmployeePayload
	Password string `json:"password"`
}
