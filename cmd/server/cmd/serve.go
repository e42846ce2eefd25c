package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rakshit0111/chat-app/internal/server"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat backend",
	Run: func(cmd *cobra.Command, args []string) {
		s := server.New()
		if addr == "" {
			addr = s.Cfg.Addr
		}
		s.Start(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	rootCmd.AddCommand(serveCmd)
}
