package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonheimlicher/dprint-vscode/internal/app"
)

// editor-pid exists for external tooling (e.g. tests simulating a crash by
// killing the reported process). Nothing in the formatting path uses it.
var pidCmd = &cobra.Command{
	Use:   "editor-pid",
	Short: "Print the PID of the first running formatter process, if any",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		application, err := app.New(ctx, folderRoots(cmd))
		if err != nil {
			return err
		}
		defer application.Shutdown()

		if pid, ok := application.Workspace.EditorServicePid(); ok {
			fmt.Println(pid)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pidCmd)
}
