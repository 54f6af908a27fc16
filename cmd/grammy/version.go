package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	grammy "github.com/gabelluardo/grammY"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of grammy",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("grammy version %s\n", strings.TrimSpace(grammy.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
