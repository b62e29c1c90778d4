// Package console implements the interactive admin pages: login, the
// employee list, and the create/edit form with its manager picker.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alecgard/roster/internal/api"
	"github.com/alecgard/roster/internal/history"
	"github.com/alecgard/roster/internal/metrics"
	"github.com/alecgard/roster/internal/picker"
	"github.com/alecgard/roster/internal/roster"
	"github.com/alecgard/roster/internal/session"
)

// Options configures a Console.
type Options struct {
	Input  io.Reader
	Output io.Writer

	Session *session.Manager
	Client  *api.Client

	PageSize       int
	LookupLimit    int
	LookupDebounce time.Duration

	History *history.Collector // optional
	Metrics *metrics.Metrics   // optional
}

// Console drives the interactive page loop.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	session *session.Manager
	client  *api.Client
	view    *roster.View

	lookupLimit    int
	lookupDebounce time.Duration

	history *history.Collector
	metrics *metrics.Metrics
}

// New creates a Console.
func New(opts Options) *Console {
	return &Console{
		in:             bufio.NewReader(opts.Input),
		out:            opts.Output,
		session:        opts.Session,
		client:         opts.Client,
		view:           roster.NewView(opts.Client, opts.PageSize),
		lookupLimit:    opts.LookupLimit,
		lookupDebounce: opts.LookupDebounce,
		history:        opts.History,
		metrics:        opts.Metrics,
	}
}

// Run bootstraps the session and loops between pages until the user quits
// or input ends. Navigation always passes through the route guard.
func (c *Console) Run(ctx context.Context) error {
	c.session.Bootstrap(ctx)

	unsubscribe := c.session.Subscribe(func(snap session.Snapshot) {
		if !snap.Authenticated {
			fmt.Fprintln(c.out, "(session ended)")
		}
	})
	defer unsubscribe()

	page := PageList
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch Resolve(page, c.session.IsAuthenticated()) {
		case PageLogin:
			ok, quit := c.loginPage(ctx)
			if quit {
				return nil
			}
			if ok {
				page = PageList
			}
		case PageList:
			if quit := c.listPage(ctx); quit {
				return nil
			}
		}
	}
}

// loginPage prompts for credentials. It returns ok=true on a successful
// login and quit=true when input ends or the user asks to leave.
func (c *Console) loginPage(ctx context.Context) (ok, quit bool) {
	fmt.Fprintln(c.out, "Employee Management — sign in (blank email to quit)")

	email, alive := c.readLine("Email: ")
	if !alive || email == "" {
		return false, true
	}
	password, alive := c.readLine("Password: ")
	if !alive {
		return false, true
	}

	success, err := c.session.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return false, false
	}
	if !success {
		if c.metrics != nil {
			c.metrics.IncAuthFailure()
		}
		c.record("login", "", email, false)
		fmt.Fprintln(c.out, "Invalid login.")
		return false, false
	}

	c.record("login", "", email, true)
	return true, false
}

// listPage renders the employee list and dispatches its commands. It
// returns true when the user quits the console.
func (c *Console) listPage(ctx context.Context) bool {
	if err := c.view.Load(ctx); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}

	for {
		c.renderList()

		input, alive := c.readLine("\nemployees> ")
		if !alive {
			return true
		}
		if input == "" {
			continue
		}

		cmd, arg := splitCommand(input)
		switch cmd {
		case "s", "search":
			if err := c.view.Search(ctx, arg); err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
		case "n", "next":
			if !c.view.CanNext() {
				fmt.Fprintln(c.out, "Already on the last page.")
				continue
			}
			if err := c.view.Next(ctx); err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
		case "p", "prev":
			if !c.view.CanPrev() {
				fmt.Fprintln(c.out, "Already on the first page.")
				continue
			}
			if err := c.view.Prev(ctx); err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
		case "r", "reload":
			c.reload(ctx)
		case "new":
			c.formPage(ctx, "")
			// Returning to the list re-fetches it, so a saved record
			// shows up immediately.
			c.reload(ctx)
		case "edit":
			if arg == "" {
				fmt.Fprintln(c.out, "Usage: edit <id>")
				continue
			}
			c.formPage(ctx, arg)
			c.reload(ctx)
		case "del", "delete":
			if arg == "" {
				fmt.Fprintln(c.out, "Usage: del <id>")
				continue
			}
			c.deleteEmployee(ctx, arg)
		case "me", "whoami":
			c.renderCurrentUser()
		case "logout":
			c.session.Logout()
			c.record("logout", "", "", true)
			return false
		case "q", "quit", "exit":
			return true
		case "help", "h":
			c.printHelp()
		default:
			fmt.Fprintf(c.out, "Unknown command: %s  (type help for all commands)\n", cmd)
		}

		if !c.session.IsAuthenticated() {
			// Route guard sends us back to the login page.
			return false
		}
	}
}

func (c *Console) reload(ctx context.Context) {
	if err := c.view.Load(ctx); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
}

func (c *Console) deleteEmployee(ctx context.Context, id string) {
	deleted, err := c.view.Delete(ctx, id, func(id string) bool {
		answer, alive := c.readLine(fmt.Sprintf("Delete employee %s? (y/n): ", id))
		return alive && (answer == "y" || answer == "yes")
	})
	if err != nil {
		// deleted can still be true here when only the follow-up
		// reload failed.
		c.record("delete", id, "", deleted)
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if deleted {
		c.record("delete", id, "", true)
	}
	// A declined confirmation leaves no audit entry.
}

// pickManager runs the autocomplete flow and returns the chosen manager id.
// Blank input keeps current, "-" clears the selection.
func (c *Console) pickManager(current *string) *string {
	pk := picker.New(c.client, c.lookupDebounce, c.lookupLimit)
	defer pk.Close()
	if c.metrics != nil {
		pk.SetMetrics(c.metrics)
	}

	updates := make(chan struct{}, 1)
	pk.SetOnUpdate(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	fmt.Fprintf(c.out, "Manager: %s\n", managerLabel(current))
	for {
		input, alive := c.readLine("Manager search (blank keeps current, '-' clears): ")
		if !alive || input == "" {
			return current
		}
		if input == "-" {
			pk.ClearSelection()
			return nil
		}
		if len(strings.TrimSpace(input)) < picker.MinQueryLen {
			fmt.Fprintf(c.out, "Type at least %d characters.\n", picker.MinQueryLen)
			continue
		}

		pk.SetText(input)
		select {
		case <-updates:
		case <-time.After(c.lookupDebounce + 5*time.Second):
		}

		suggestions := pk.Suggestions()
		if len(suggestions) == 0 {
			fmt.Fprintln(c.out, "No matches.")
			continue
		}

		for i, entry := range suggestions {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, entry.FullName)
		}
		choice, alive := c.readLine("Select number (blank to search again): ")
		if !alive {
			return current
		}
		if choice == "" {
			continue
		}
		idx := parseIndex(choice, len(suggestions))
		if idx < 0 {
			fmt.Fprintln(c.out, "Invalid selection.")
			continue
		}
		pk.Select(idx)
		fmt.Fprintf(c.out, "Selected manager: %s\n", pk.Text())
		return pk.SelectedID()
	}
}

func (c *Console) record(action, employeeID, detail string, success bool) {
	if c.history == nil {
		return
	}
	actor := ""
	if u := c.session.CurrentUser(); u != nil {
		actor = u.Email
	}
	c.history.Record(history.Entry{
		Timestamp:  time.Now().UTC(),
		Action:     action,
		Actor:      actor,
		EmployeeID: employeeID,
		Detail:     detail,
		Success:    success,
	})
}

func (c *Console) readLine(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func splitCommand(input string) (cmd, arg string) {
	parts := strings.SplitN(input, " ", 2)
	cmd = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}

func parseIndex(s string, n int) int {
	idx := 0
	if _, err := fmt.Sscanf(s, "%d", &idx); err != nil {
		return -1
	}
	if idx < 1 || idx > n {
		return -1
	}
	return idx - 1
}

func managerLabel(id *string) string {
	if id == nil {
		return "(none)"
	}
	return *id
}
