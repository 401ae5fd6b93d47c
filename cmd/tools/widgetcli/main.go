package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional for the tools
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "widgetcli",
		Short:        "Drive a chat widget from the terminal",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newTUICommand(), newWSCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
