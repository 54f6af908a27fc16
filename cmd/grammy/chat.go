package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabelluardo/grammY/internal/cli"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the demo scenes on the terminal",
	Long: `Starts an interactive conversation loop on stdin and stdout. Send
/start or /order to enter a scene, /help for the command list.

With the default memory store every run begins fresh. Point --store at a
sqlite file or a redis instance and pass --key to resume a conversation
across invocations.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		var opts cli.ChatOptions
		opts.Key, _ = cmd.Flags().GetString("key")
		opts.Scene, _ = cmd.Flags().GetString("scene")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Store, _ = cmd.Flags().GetString("store")

		if err := cli.RunChat(cmd.Context(), &cfg, opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("key", "k", "", "Conversation key to resume (default: a fresh UUID)")
	chatCmd.Flags().String("scene", "", "Scene to enter before the first prompt")
	chatCmd.Flags().Bool("json", false, "JSON-Lines protocol (one update per line in, replies out)")
	chatCmd.Flags().String("store", "", "Store backend: memory, sqlite:PATH or redis:ADDR")

	// A bare `grammy` invocation drops into the chat.
	rootCmd.Run = chatCmd.Run
}
