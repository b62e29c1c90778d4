package console

import (
	"fmt"
	"strings"
)

func (c *Console) renderList() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Repeat("=", 78))
	header := "  EMPLOYEES"
	if s := c.view.SearchText(); s != "" {
		header += fmt.Sprintf(" — search: %q", s)
	}
	fmt.Fprintln(c.out, header)
	if u := c.session.CurrentUser(); u != nil {
		fmt.Fprintf(c.out, "  Logged in as: %s (%s)\n", u.Email, u.Role)
	}
	fmt.Fprintln(c.out, strings.Repeat("=", 78))

	if msg := c.view.Err(); msg != "" {
		fmt.Fprintf(c.out, "  Error: %s\n", msg)
		fmt.Fprintln(c.out, strings.Repeat("=", 78))
		return
	}

	items := c.view.Items()
	if len(items) == 0 {
		fmt.Fprintln(c.out, "  No employees found.")
	} else {
		fmt.Fprintf(c.out, "  %-8s %-24s %-28s %-12s %s\n", "ID", "NAME", "EMAIL", "DOC", "ROLE")
		fmt.Fprintln(c.out, strings.Repeat("-", 78))
		for _, e := range items {
			fmt.Fprintf(c.out, "  %-8s %-24s %-28s %-12s %s\n",
				e.ID, e.FullName(), e.Email, e.DocNumber, e.Role)
		}
	}

	fmt.Fprintln(c.out, strings.Repeat("=", 78))
	fmt.Fprintf(c.out, "  Page %d / %d — %d total\n", c.view.Page(), c.view.TotalPages(), c.view.TotalItems())
}

func (c *Console) renderCurrentUser() {
	u := c.session.CurrentUser()
	if u == nil {
		fmt.Fprintln(c.out, "Not signed in.")
		return
	}
	fmt.Fprintf(c.out, "id: %s\nemail: %s\nrole: %s\n", u.ID, u.Email, u.Role)
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `Commands:
  s <text>     search (blank text clears the search, resets to page 1)
  n / p        next / previous page
  r            reload the current page
  new          create an employee
  edit <id>    edit an employee
  del <id>     delete an employee (asks for confirmation)
  me           show the signed-in user
  logout       sign out
  q            quit`)
}
