package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Terminal client for the employee management API",
	Long:  "Roster is a terminal client for an employee management API: sign in, browse and search the employee roster, and create, edit or delete records, with a manager autocomplete for reporting lines.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults plus ROSTER_* env)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
