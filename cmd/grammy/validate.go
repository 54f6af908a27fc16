package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabelluardo/grammY/internal/cli"
	"github.com/gabelluardo/grammY/internal/validator"
	"github.com/gabelluardo/grammY/pkg/scene"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the built-in scene trees for consistency",
	Long:  `Lints every built-in scene and reports empty scenes, empty scopes and unreachable entries.`,
	Run: func(cmd *cobra.Command, args []string) {
		reg := scene.NewRegistry(cli.DemoScenes()...)
		if err := validator.ValidateScenes(reg); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Scenes are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
