package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alecgard/roster/internal/empform"
)

// formPage runs the create/edit wizard. An empty id means create.
func (c *Console) formPage(ctx context.Context, id string) {
	var form *empform.Form
	action := "create"
	if id == "" {
		form = empform.NewCreate()
		fmt.Fprintln(c.out, "\nNew employee (blank keeps the shown value, 'cancel' aborts)")
	} else {
		action = "update"
		loaded, err := empform.LoadForEdit(ctx, c.client, id)
		if err != nil {
			// Without a loaded record there is nothing to submit.
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		form = loaded
		fmt.Fprintf(c.out, "\nEdit employee %s (blank keeps the shown value, 'cancel' aborts)\n", id)
	}

	for {
		if !c.fillFields(form) {
			fmt.Fprintln(c.out, "Cancelled.")
			return
		}

		if err := form.Validate(time.Now()); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			answer, alive := c.readLine("Edit again? (y/n): ")
			if alive && (answer == "y" || answer == "yes") {
				continue
			}
			fmt.Fprintln(c.out, "Cancelled.")
			return
		}
		break
	}

	if err := form.Submit(ctx, c.client); err != nil {
		c.record(action, form.ID, form.Email, false)
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.record(action, form.ID, form.Email, true)
	fmt.Fprintln(c.out, "Saved.")
}

// fillFields prompts for every form field. It returns false when the user
// cancels or input ends.
func (c *Console) fillFields(form *empform.Form) bool {
	fields := []struct {
		label string
		value *string
	}{
		{"First name", &form.FirstName},
		{"Last name", &form.LastName},
		{"Email", &form.Email},
		{"Doc number", &form.DocNumber},
		{"Birth date (YYYY-MM-DD)", &form.BirthDate},
	}

	for _, f := range fields {
		input, ok := c.promptDefault(f.label, *f.value)
		if !ok {
			return false
		}
		*f.value = input
	}

	fmt.Fprintf(c.out, "Role (read-only): %s\n", form.Role())

	form.ManagerID = c.pickManager(form.ManagerID)

	return c.fillPhones(form)
}

func (c *Console) fillPhones(form *empform.Form) bool {
	fmt.Fprintf(c.out, "Phones (minimum %d):\n", empform.MinPhones)
	for i := range form.Phones {
		input, ok := c.promptDefault(fmt.Sprintf("  Phone %d", i+1), form.Phones[i])
		if !ok {
			return false
		}
		form.SetPhone(i, input)
	}

	for {
		input, alive := c.readLine("  Additional phone (blank to finish): ")
		if !alive {
			return false
		}
		if input == "" {
			return true
		}
		if strings.EqualFold(input, "cancel") {
			return false
		}
		form.AddPhone()
		form.SetPhone(len(form.Phones)-1, input)
	}
}

// promptDefault asks for a value, keeping current on blank input.
func (c *Console) promptDefault(label, current string) (string, bool) {
	prompt := fmt.Sprintf("%s: ", label)
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	input, alive := c.readLine(prompt)
	if !alive || strings.EqualFold(input, "cancel") {
		return "", false
	}
	if input == "" {
		return current, true
	}
	return input, true
}
