package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/alecgard/roster/internal/empform"
	"github.com/alecgard/roster/internal/roster"
	"github.com/spf13/cobra"
)

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "Manage employee records",
}

var (
	listPage   int
	listSearch string

	lookupLimit int

	formFirstName string
	formLastName  string
	formEmail     string
	formDocNumber string
	formBirthDate string
	formManager   string
	formPhones    []string
	clearManager  bool

	deleteYes bool
)

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees, paginated and searchable",
	RunE:  runEmployeesList,
}

var employeesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeesGet,
}

var employeesLookupCmd = &cobra.Command{
	Use:   "lookup <search>",
	Short: "Search employees by name for manager selection",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeesLookup,
}

var employeesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an employee",
	RunE:  runEmployeesCreate,
}

var employeesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an employee; omitted flags keep the stored values",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeesUpdate,
}

var employeesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeesDelete,
}

func init() {
	employeesListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	employeesListCmd.Flags().StringVar(&listSearch, "search", "", "search text (name, email or doc number)")

	employeesLookupCmd.Flags().IntVar(&lookupLimit, "limit", 0, "maximum results (default from config)")

	for _, cmd := range []*cobra.Command{employeesCreateCmd, employeesUpdateCmd} {
		cmd.Flags().StringVar(&formFirstName, "first-name", "", "first name")
		cmd.Flags().StringVar(&formLastName, "last-name", "", "last name")
		cmd.Flags().StringVar(&formEmail, "email", "", "email address")
		cmd.Flags().StringVar(&formDocNumber, "doc-number", "", "document number")
		cmd.Flags().StringVar(&formBirthDate, "birth-date", "", "birth date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&formManager, "manager", "", "manager employee id")
		cmd.Flags().StringArrayVar(&formPhones, "phone", nil, "phone number (repeatable; at least 2 required)")
	}
	employeesUpdateCmd.Flags().BoolVar(&clearManager, "clear-manager", false, "remove the manager reference")

	employeesDeleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")

	employeesCmd.AddCommand(
		employeesListCmd,
		employeesGetCmd,
		employeesLookupCmd,
		employeesCreateCmd,
		employeesUpdateCmd,
		employeesDeleteCmd,
	)
	rootCmd.AddCommand(employeesCmd)
}

func runEmployeesList(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	view := roster.NewView(d.client, d.cfg.List.PageSize)
	if err := view.Search(cmd.Context(), listSearch); err != nil {
		return err
	}
	for view.Page() < listPage && view.CanNext() {
		if err := view.Next(cmd.Context()); err != nil {
			return err
		}
	}
	if msg := view.Err(); msg != "" {
		return fmt.Errorf("%s", msg)
	}

	items := view.Items()
	if len(items) == 0 {
		fmt.Println("No employees found.")
		return nil
	}
	fmt.Printf("%-8s %-24s %-28s %-12s %s\n", "ID", "NAME", "EMAIL", "DOC", "ROLE")
	for _, e := range items {
		fmt.Printf("%-8s %-24s %-28s %-12s %s\n", e.ID, e.FullName(), e.Email, e.DocNumber, e.Role)
	}
	fmt.Printf("Page %d / %d — %d total\n", view.Page(), view.TotalPages(), view.TotalItems())
	return nil
}

func runEmployeesGet(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	res, err := d.client.GetEmployee(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !res.Success || res.Data == nil {
		return fmt.Errorf("%s", res.Message)
	}

	e := res.Data
	fmt.Printf("id:         %s\n", e.ID)
	fmt.Printf("name:       %s\n", e.FullName())
	fmt.Printf("email:      %s\n", e.Email)
	fmt.Printf("doc number: %s\n", e.DocNumber)
	fmt.Printf("birth date: %s\n", e.BirthDate)
	fmt.Printf("role:       %s\n", e.Role)
	if e.ManagerID != nil {
		fmt.Printf("manager:    %s\n", *e.ManagerID)
	}
	fmt.Printf("phones:     %s\n", strings.Join(e.Phones, ", "))
	return nil
}

func runEmployeesLookup(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	limit := lookupLimit
	if limit <= 0 {
		limit = d.cfg.Lookup.Limit
	}
	res, err := d.client.LookupEmployees(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}
	if !res.Success || res.Data == nil {
		return fmt.Errorf("%s", res.Message)
	}
	for _, entry := range *res.Data {
		fmt.Printf("%-8s %s\n", entry.ID, entry.FullName)
	}
	return nil
}

func runEmployeesCreate(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	form := empform.NewCreate()
	form.FirstName = formFirstName
	form.LastName = formLastName
	form.Email = formEmail
	form.DocNumber = formDocNumber
	form.BirthDate = formBirthDate
	if formManager != "" {
		form.ManagerID = &formManager
	}
	if len(formPhones) > 0 {
		form.Phones = formPhones
	}

	if err := form.Submit(cmd.Context(), d.client); err != nil {
		return err
	}
	fmt.Println("Employee created.")
	return nil
}

func runEmployeesUpdate(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	form, err := empform.LoadForEdit(cmd.Context(), d.client, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("first-name") {
		form.FirstName = formFirstName
	}
	if flags.Changed("last-name") {
		form.LastName = formLastName
	}
	if flags.Changed("email") {
		form.Email = formEmail
	}
	if flags.Changed("doc-number") {
		form.DocNumber = formDocNumber
	}
	if flags.Changed("birth-date") {
		form.BirthDate = formBirthDate
	}
	if clearManager {
		form.ManagerID = nil
	} else if flags.Changed("manager") {
		form.ManagerID = &formManager
	}
	if flags.Changed("phone") {
		form.Phones = formPhones
	}

	if err := form.Submit(cmd.Context(), d.client); err != nil {
		return err
	}
	fmt.Println("Employee updated.")
	return nil
}

func runEmployeesDelete(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	view := roster.NewView(d.client, d.cfg.List.PageSize)
	deleted, err := view.Delete(cmd.Context(), args[0], func(id string) bool {
		if deleteYes {
			return true
		}
		fmt.Printf("Delete employee %s? (y/n): ", id)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
	if err != nil {
		return err
	}
	if deleted {
		fmt.Println("Employee deleted.")
	} else {
		fmt.Println("Aborted.")
	}
	return nil
}
