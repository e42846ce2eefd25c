package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chat-app",
	Short: "Chat application backend",
	Long: `chat-app is the backend for the chat application: a REST API for
auth, direct messages and groups, plus a WebSocket realtime layer for
presence and message fan-out.`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
