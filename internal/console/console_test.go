package console

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecgard/roster/internal/api"
	"github.com/alecgard/roster/internal/apitest"
	"github.com/alecgard/roster/internal/creds"
	"github.com/alecgard/roster/internal/history"
	"github.com/alecgard/roster/internal/httpx"
	"github.com/alecgard/roster/internal/session"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		requested     Page
		authenticated bool
		want          Page
	}{
		{"login stays login", PageLogin, false, PageLogin},
		{"login while authenticated", PageLogin, true, PageLogin},
		{"list guarded", PageList, false, PageLogin},
		{"list allowed", PageList, true, PageList},
		{"form guarded", PageForm, false, PageLogin},
		{"form allowed", PageForm, true, PageForm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.requested, tt.authenticated); got != tt.want {
				t.Errorf("Resolve(%v, %v) = %v, want %v", tt.requested, tt.authenticated, got, tt.want)
			}
		})
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantCmd  string
		wantArg  string
	}{
		{"q", "q", ""},
		{"edit e-3", "edit", "e-3"},
		{"s ann lee", "s", "ann lee"},
		{"SEARCH  Ann ", "search", "Ann"},
	}

	for _, tt := range tests {
		cmd, arg := splitCommand(tt.input)
		if cmd != tt.wantCmd || arg != tt.wantArg {
			t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)", tt.input, cmd, arg, tt.wantCmd, tt.wantArg)
		}
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want int
	}{
		{"1", 3, 0},
		{"3", 3, 2},
		{"0", 3, -1},
		{"4", 3, -1},
		{"x", 3, -1},
	}

	for _, tt := range tests {
		if got := parseIndex(tt.s, tt.n); got != tt.want {
			t.Errorf("parseIndex(%q, %d) = %d, want %d", tt.s, tt.n, got, tt.want)
		}
	}
}

// scripted runs the console with the given input lines against a fresh
// fixture and returns everything it printed.
func scripted(t *testing.T, backend *apitest.Server, lines ...string) string {
	t.Helper()
	return scriptedWith(t, backend, nil, lines...)
}

// scriptedWith additionally wires an audit collector into the console.
func scriptedWith(t *testing.T, backend *apitest.Server, audit *history.Collector, lines ...string) string {
	t.Helper()

	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	store := creds.NewStore(filepath.Join(t.TempDir(), "access_token"), nil)
	client := api.NewClient(httpx.New(srv.URL, 5*time.Second, store))
	mgr := session.NewManager(store, client)

	var out strings.Builder
	c := New(Options{
		Input:          strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Output:         &out,
		Session:        mgr,
		Client:         client,
		PageSize:       10,
		LookupLimit:    5,
		LookupDebounce: 10 * time.Millisecond,
		History:        audit,
	})

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String()
}

// recordingAppender captures flushed audit entries in memory.
type recordingAppender struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (a *recordingAppender) BatchAppend(_ context.Context, entries []history.Entry) error {
	a.mu.Lock()
	a.entries = append(a.entries, entries...)
	a.mu.Unlock()
	return nil
}

func (a *recordingAppender) byAction(action string) []history.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []history.Entry
	for _, e := range a.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func TestConsoleLoginAndList(t *testing.T) {
	backend := apitest.NewServer()
	backend.Seed(api.Employee{
		FirstName: "Ben", LastName: "Barnes", Email: "ben@example.com",
		DocNumber: "222", Role: api.RoleEmployee,
	}, "pw")

	out := scripted(t, backend,
		apitest.AdminEmail, apitest.AdminPassword,
		"q",
	)

	if !strings.Contains(out, "Logged in as: "+apitest.AdminEmail) {
		t.Errorf("missing signed-in banner in output:\n%s", out)
	}
	if !strings.Contains(out, "Ada Admin") || !strings.Contains(out, "Ben Barnes") {
		t.Errorf("missing employees in output:\n%s", out)
	}
	if !strings.Contains(out, "Page 1 / 1") {
		t.Errorf("missing page footer in output:\n%s", out)
	}
}

func TestConsoleRejectedLoginPromptsAgain(t *testing.T) {
	out := scripted(t, apitest.NewServer(),
		apitest.AdminEmail, "wrong",
		"", // blank email quits on the second prompt
	)

	if !strings.Contains(out, "Invalid login.") {
		t.Errorf("missing rejection message in output:\n%s", out)
	}
	if strings.Contains(out, "Logged in as:") {
		t.Errorf("rejected login must not reach the list:\n%s", out)
	}
}

func TestConsoleSearch(t *testing.T) {
	backend := apitest.NewServer()
	backend.Seed(api.Employee{
		FirstName: "Cara", LastName: "Chen", Email: "cara@example.com", Role: api.RoleEmployee,
	}, "pw")

	out := scripted(t, backend,
		apitest.AdminEmail, apitest.AdminPassword,
		"s cara",
		"q",
	)

	if !strings.Contains(out, `search: "cara"`) {
		t.Errorf("missing search header in output:\n%s", out)
	}
	// After the search only the match is listed, with a 1-item total.
	idx := strings.LastIndex(out, "EMPLOYEES")
	tail := out[idx:]
	if !strings.Contains(tail, "Cara Chen") || strings.Contains(tail, "Ada Admin") {
		t.Errorf("search result wrong:\n%s", tail)
	}
	if !strings.Contains(tail, "1 total") {
		t.Errorf("missing filtered total:\n%s", tail)
	}
}

func TestConsoleDeleteWithConfirmation(t *testing.T) {
	backend := apitest.NewServer()
	id := backend.Seed(api.Employee{
		FirstName: "Del", LastName: "Target", Email: "del@example.com", Role: api.RoleEmployee,
	}, "pw")

	out := scripted(t, backend,
		apitest.AdminEmail, apitest.AdminPassword,
		"del "+id, "n", // declined
		"del "+id, "y", // confirmed
		"q",
	)

	if _, ok := backend.Employee(id); ok {
		t.Error("confirmed delete must remove the record")
	}
	if !strings.Contains(out, "Delete employee "+id+"?") {
		t.Errorf("missing confirmation prompt:\n%s", out)
	}
	if backend.Count() != 1 {
		t.Errorf("expected only the admin left, got %d", backend.Count())
	}
}

func TestConsoleDeleteDeclinedKeepsRecord(t *testing.T) {
	backend := apitest.NewServer()
	id := backend.Seed(api.Employee{
		FirstName: "Keep", LastName: "Me", Email: "keep@example.com", Role: api.RoleEmployee,
	}, "pw")

	scripted(t, backend,
		apitest.AdminEmail, apitest.AdminPassword,
		"del "+id, "n",
		"q",
	)

	if _, ok := backend.Employee(id); !ok {
		t.Error("declined delete must keep the record")
	}
}

func TestConsoleLogoutReturnsToLogin(t *testing.T) {
	out := scripted(t, apitest.NewServer(),
		apitest.AdminEmail, apitest.AdminPassword,
		"logout",
		"", // blank email quits the login page
	)

	if !strings.Contains(out, "(session ended)") {
		t.Errorf("missing session-ended notice:\n%s", out)
	}
	// The login prompt must appear twice: once at start, once after logout.
	if got := strings.Count(out, "sign in"); got != 2 {
		t.Errorf("expected 2 login prompts, got %d:\n%s", got, out)
	}
}

func TestConsolePaginationBoundaryMessage(t *testing.T) {
	out := scripted(t, apitest.NewServer(),
		apitest.AdminEmail, apitest.AdminPassword,
		"n",
		"p",
		"q",
	)

	if !strings.Contains(out, "Already on the last page.") {
		t.Errorf("missing last-page message:\n%s", out)
	}
	if !strings.Contains(out, "Already on the first page.") {
		t.Errorf("missing first-page message:\n%s", out)
	}
}

func TestConsoleCreateEmployee(t *testing.T) {
	backend := apitest.NewServer()
	backend.Seed(api.Employee{
		FirstName: "Mia", LastName: "Manager", Email: "mia@example.com", Role: api.RoleLeader,
	}, "pw")

	out := scripted(t, backend,
		apitest.AdminEmail, apitest.AdminPassword,
		"new",
		"Nina",            // first name
		"Novak",           // last name
		"nina@example.com", // email
		"33344455566",     // doc number
		"1995-04-02",      // birth date
		"mia",             // manager search
		"1",               // pick Mia Manager
		"+1 555 0400",     // phone 1
		"+1 555 0401",     // phone 2
		"",                // no additional phone
		"q",
	)

	if backend.Count() != 3 {
		t.Fatalf("expected the new employee stored, have %d records:\n%s", backend.Count(), out)
	}
	// Find the created record by email.
	var created api.Employee
	found := false
	for i := 1; i <= backend.Count(); i++ {
		if e, ok := backend.Employee(fmt.Sprintf("e-%d", i)); ok && e.Email == "nina@example.com" {
			created, found = e, true
			break
		}
	}
	if !found {
		t.Fatalf("created employee not found:\n%s", out)
	}
	if created.Role != api.RoleEmployee {
		t.Errorf("create must force the base role, got %s", created.Role)
	}
	if created.BirthDate != "1995-04-02" {
		t.Errorf("unexpected birth date %q", created.BirthDate)
	}
	if created.ManagerID == nil {
		t.Error("expected the picked manager to be set")
	}
	if !strings.Contains(out, "Selected manager: Mia Manager") {
		t.Errorf("missing manager selection echo:\n%s", out)
	}

	// Leaving the form must return to a freshly loaded list that already
	// shows the new record.
	saved := strings.Index(out, "Saved.")
	if saved < 0 {
		t.Fatalf("missing save confirmation:\n%s", out)
	}
	after := out[saved:]
	if !strings.Contains(after, "Nina Novak") {
		t.Errorf("list after save must include the created employee:\n%s", after)
	}
	if !strings.Contains(after, "3 total") {
		t.Errorf("list after save must reflect the new total:\n%s", after)
	}
}

func TestConsoleDeleteAuditTrail(t *testing.T) {
	backend := apitest.NewServer()
	id := backend.Seed(api.Employee{
		FirstName: "Del", LastName: "Target", Email: "del@example.com", Role: api.RoleEmployee,
	}, "pw")

	app := &recordingAppender{}
	audit := history.NewCollector(app, 1, time.Hour)

	scriptedWith(t, backend, audit,
		apitest.AdminEmail, apitest.AdminPassword,
		"del "+id, "n", // declined
		"del "+id, "y", // confirmed
		"q",
	)

	deletes := app.byAction("delete")
	if len(deletes) != 1 {
		t.Fatalf("expected exactly one delete entry, got %d: %+v", len(deletes), deletes)
	}
	if !deletes[0].Success {
		t.Error("performed delete must be recorded as successful")
	}
	if deletes[0].EmployeeID != id {
		t.Errorf("delete entry has employee %q, want %q", deletes[0].EmployeeID, id)
	}

	logins := app.byAction("login")
	if len(logins) != 1 || !logins[0].Success {
		t.Errorf("expected one successful login entry, got %+v", logins)
	}
}
