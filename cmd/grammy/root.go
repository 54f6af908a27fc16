package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabelluardo/grammY/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "grammy",
	Short: "grammY is a resumable conversation engine",
	Long: `grammY runs scene-based conversations that survive restarts: the
position inside a conversation is persisted per key and replayed against
the scene tree when the next update arrives.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}

// loadConfig builds the effective configuration from defaults, the file
// named by --config, and the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
