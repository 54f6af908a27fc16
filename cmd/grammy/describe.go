package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabelluardo/grammY/internal/cli"
	"github.com/gabelluardo/grammY/internal/presentation/graph"
	"github.com/gabelluardo/grammY/pkg/scene"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe [scene]",
	Short: "Print the structure of the built-in scenes",
	Long: `Prints the entry tree of a scene: steps, waits with their resume
arms, and nested scopes with their positions. Without an argument it
lists the available scenes. With --mermaid the output is a Mermaid
diagram (graph TD) instead of the plain tree.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scenes := cli.DemoScenes()

		if len(args) == 0 {
			fmt.Println("Available scenes:")
			for _, sc := range scenes {
				fmt.Println("- " + sc.ID())
			}
			return
		}

		var target *scene.Scene
		for _, sc := range scenes {
			if sc.ID() == args[0] {
				target = sc
				break
			}
		}
		if target == nil {
			fmt.Printf("Unknown scene %q\n", args[0])
			os.Exit(1)
		}

		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Print(graph.GenerateMermaid(target, nil))
			return
		}
		fmt.Print(scene.Describe(target))
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().Bool("mermaid", false, "Output a Mermaid diagram instead of the plain tree")
}
