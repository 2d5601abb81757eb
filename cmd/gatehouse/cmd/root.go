package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gatehouse",
	Short: "Gatehouse is a credential and session authentication service",
	Long: `An authentication service validating caller identity per request:
Basic credentials or cookie-bound sessions, with optional expiration and
durable session storage, plus password registration and reset flows.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
