package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "montagebot",
	Short: "Work check-ins with location review and reminder windows",
	Long: `montagebot keeps one work entry per calendar day with a morning and an
evening check-in. Check-ins without a reliable location or outside the
reference area are flagged for review. The serve command runs the Telegram
bot and reminds the owner when a window passes without a check-in.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(dayTypeCmd)
	rootCmd.AddCommand(travelCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(settingsCmd)
}
