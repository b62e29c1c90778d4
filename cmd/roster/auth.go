package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store the session credential",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session credential",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile behind the stored credential",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "login email (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	email := loginEmail
	if email == "" {
		fmt.Print("Email: ")
		line, _ := reader.ReadString('\n')
		email = strings.TrimSpace(line)
	}
	fmt.Print("Password: ")
	line, _ := reader.ReadString('\n')
	password := strings.TrimSpace(line)

	ok, err := d.session.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid login")
	}

	if u := d.session.CurrentUser(); u != nil {
		fmt.Printf("Signed in as %s (%s)\n", u.Email, u.Role)
	} else {
		fmt.Println("Signed in.")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	d.session.Logout()
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	d.session.Bootstrap(cmd.Context())
	u := d.session.CurrentUser()
	if u == nil {
		return fmt.Errorf("not signed in")
	}
	fmt.Printf("id: %s\nemail: %s\nrole: %s\n", u.ID, u.Email, u.Role)
	return nil
}
