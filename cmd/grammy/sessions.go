package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabelluardo/grammY/internal/cli"
	"github.com/gabelluardo/grammY/internal/logging"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage persisted conversations",
	Long: `List, inspect, and remove conversation sessions from the configured
store. Only sqlite and redis stores outlive the process; with the memory
backend there is nothing to manage.`,
}

var sessionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all persisted sessions",
	Run: func(cmd *cobra.Command, args []string) {
		storage := getStorage(cmd)
		defer storage.Close()

		keys, err := storage.Store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(keys) == 0 {
			fmt.Println("No sessions found.")
			return
		}
		for _, k := range keys {
			fmt.Println("- " + k)
		}
	},
}

var sessionsInspectCmd = &cobra.Command{
	Use:   "inspect <key>",
	Short: "Print the persisted state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		storage := getStorage(cmd)
		defer storage.Close()

		sess, err := storage.Store.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading session %q: %v\n", args[0], err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <key>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		storage := getStorage(cmd)
		defer storage.Close()

		hasError := false
		for _, key := range args {
			if err := storage.Store.Delete(cmd.Context(), key); err != nil {
				fmt.Printf("Error removing %q: %v\n", key, err)
				hasError = true
			} else {
				fmt.Printf("Removed session %q\n", key)
			}
		}
		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsLsCmd)
	sessionsCmd.AddCommand(sessionsInspectCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)

	sessionsCmd.PersistentFlags().String("store", "", "Store backend: memory, sqlite:PATH or redis:ADDR")
}

// getStorage opens the configured store for a one-shot admin command. The
// persistence middleware applies here too, so inspect shows sessions the
// way the engine sees them, not the encrypted bytes at rest.
func getStorage(cmd *cobra.Command) *cli.Storage {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	storeFlag, _ := cmd.Flags().GetString("store")
	if err := cli.ApplyStoreFlag(&cfg, storeFlag); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	storage, err := cli.BuildStorage(&cfg, logging.NewNop())
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		os.Exit(1)
	}
	return storage
}
