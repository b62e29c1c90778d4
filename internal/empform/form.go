// Package empform holds the create/edit employee form: its field set,
// client-side validation and submission payload assembly.
package empform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alecgard/roster/internal/api"
	"github.com/alecgard/roster/internal/httpx"
)

// PlaceholderPassword is sent with every create. The backend requires a
// password on new records and is expected to force a reset on first login.
const PlaceholderPassword = "TempPass@123!"

// MinPhones is the minimum number of non-blank phone entries required
// before submission.
const MinPhones = 2

// Validation failures, in the order they are checked. The first failure
// wins; failures never reach the network.
var (
	ErrNameRequired      = errors.New("first and last name are required")
	ErrEmailInvalid      = errors.New("a valid email is required")
	ErrDocNumberRequired = errors.New("doc number is required")
	ErrBirthDateRequired = errors.New("birth date is required")
	ErrUnderage          = errors.New("employee must be at least 18 years old")
	ErrTooFewPhones      = errors.New("at least 2 phone numbers are required")
)

// Mode selects create or edit behavior on submission.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// WriteAPI is the slice of the gateway the form needs.
type WriteAPI interface {
	GetEmployee(ctx context.Context, id string) (*httpx.Result[api.Employee], error)
	CreateEmployee(ctx context.Context, req api.CreateEmployeeRequest) (*httpx.Result[api.Employee], error)
	UpdateEmployee(ctx context.Context, id string, payload api.EmployeePayload) (*httpx.Result[struct{}], error)
}

// Form is the shared field set for both modes. Role is read-only: creates
// always force the base role, edits pass through whatever the loaded
// record carried.
type Form struct {
	Mode Mode
	ID   string

	FirstName string
	LastName  string
	Email     string
	DocNumber string
	BirthDate string // YYYY-MM-DD
	ManagerID *string
	Phones    []string

	role api.Role
}

// NewCreate returns an empty create-mode form with the two required phone
// slots pre-allocated.
func NewCreate() *Form {
	return &Form{
		Mode:   ModeCreate,
		Phones: []string{"", ""},
		role:   api.RoleEmployee,
	}
}

// LoadForEdit fetches the record by id and returns an edit-mode form
// populated from it. A load failure returns the server message as an
// error; the caller must not offer submission in that case.
func LoadForEdit(ctx context.Context, client WriteAPI, id string) (*Form, error) {
	res, err := client.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.Success || res.Data == nil {
		msg := res.Message
		if msg == "" {
			msg = "failed to load employee"
		}
		return nil, errors.New(msg)
	}

	e := res.Data
	phones := e.Phones
	if len(phones) < MinPhones {
		phones = []string{"", ""}
	}
	return &Form{
		Mode:      ModeEdit,
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		DocNumber: e.DocNumber,
		BirthDate: e.BirthDate,
		ManagerID: e.ManagerID,
		Phones:    phones,
		role:      e.Role,
	}, nil
}

// Role returns the read-only role shown on the form: the loaded record's
// role in edit mode, the base role in create mode.
func (f *Form) Role() api.Role {
	return f.role
}

// AddPhone appends an empty phone slot.
func (f *Form) AddPhone() {
	f.Phones = append(f.Phones, "")
}

// RemovePhone drops the phone slot at idx. The first two slots cannot be
// removed.
func (f *Form) RemovePhone(idx int) {
	if len(f.Phones) <= MinPhones || idx < 0 || idx >= len(f.Phones) {
		return
	}
	f.Phones = append(f.Phones[:idx], f.Phones[idx+1:]...)
}

// SetPhone sets the phone slot at idx.
func (f *Form) SetPhone(idx int, value string) {
	if idx >= 0 && idx < len(f.Phones) {
		f.Phones[idx] = value
	}
}

// Validate checks the form against today's date. The first failing rule is
// returned; no aggregation.
func (f *Form) Validate(today time.Time) error {
	if strings.TrimSpace(f.FirstName) == "" || strings.TrimSpace(f.LastName) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(f.Email) == "" || !strings.Contains(f.Email, "@") {
		return ErrEmailInvalid
	}
	if strings.TrimSpace(f.DocNumber) == "" {
		return ErrDocNumberRequired
	}
	if f.BirthDate == "" {
		return ErrBirthDateRequired
	}
	if !IsAdult(f.BirthDate, today) {
		return ErrUnderage
	}
	if len(cleanPhones(f.Phones)) < MinPhones {
		return ErrTooFewPhones
	}
	return nil
}

// IsAdult reports whether someone born on birthDate (YYYY-MM-DD) is at
// least 18 years old on the given day. A malformed date is not adult.
func IsAdult(birthDate string, today time.Time) bool {
	dob, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return false
	}
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age >= 18
}

// Submit validates and sends the form. Create forces the base role and the
// placeholder password; edit passes the loaded role through unchanged. A
// backend rejection comes back as an error carrying the server message
// verbatim.
func (f *Form) Submit(ctx context.Context, client WriteAPI) error {
	if err := f.Validate(time.Now()); err != nil {
		return err
	}

	payload := api.EmployeePayload{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		DocNumber:   f.DocNumber,
		DateOfBirth: f.BirthDate,
		ManagerID:   f.ManagerID,
		Phones:      cleanPhones(f.Phones),
	}

	if f.Mode == ModeCreate {
		payload.Role = api.RoleEmployee
		res, err := client.CreateEmployee(ctx, api.CreateEmployeeRequest{
			EmployeePayload: payload,
			Password:        PlaceholderPassword,
		})
		if err != nil {
			return err
		}
		if !res.Success {
			return serverError(res.Message, "failed to create employee")
		}
		return nil
	}

	payload.Role = f.role
	res, err := client.UpdateEmployee(ctx, f.ID, payload)
	if err != nil {
		return err
	}
	if !res.Success {
		return serverError(res.Message, "failed to update employee")
	}
	return nil
}

func serverError(message, fallback string) error {
	if message == "" {
		return errors.New(fallback)
	}
	return fmt.Errorf("%s", message)
}

// cleanPhones trims all entries and drops the blank ones.
func cleanPhones(phones []string) []string {
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
