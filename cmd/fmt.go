package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"

	"github.com/simonheimlicher/dprint-vscode/internal/app"
	"github.com/simonheimlicher/dprint-vscode/internal/logging"
	"github.com/simonheimlicher/dprint-vscode/internal/workspace"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format files through their folder's dprint editor service",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		write, _ := cmd.Flags().GetBool("write")
		showDiff, _ := cmd.Flags().GetBool("diff")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		application, err := app.New(ctx, folderRoots(cmd))
		if err != nil {
			return err
		}
		defer application.Shutdown()

		var failed int
		for _, file := range args {
			if err := formatOne(ctx, application.Workspace, file, write, showDiff); err != nil {
				logging.Error("Formatting failed", "file", file, "error", err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to format", failed, len(args))
		}
		return nil
	},
}

func formatOne(ctx context.Context, svc *workspace.Service, file string, write, showDiff bool) error {
	path, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc := workspace.Document{Path: path, Text: string(text)}
	formatted, err := svc.Format(ctx, doc)
	if errors.Is(err, workspace.ErrNoFormatter) {
		// No binding claims this file; leave it untouched.
		logging.Info("No formatter for file", "file", file)
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case showDiff:
		if formatted != doc.Text {
			fmt.Print(udiff.Unified(file, file, doc.Text, formatted))
		}
	case write:
		if formatted != doc.Text {
			return os.WriteFile(path, []byte(formatted), 0o644)
		}
	default:
		fmt.Print(formatted)
	}
	return nil
}

func init() {
	fmtCmd.Flags().BoolP("write", "w", false, "Write result back to the file")
	fmtCmd.Flags().Bool("diff", false, "Print a unified diff instead of the result")
	rootCmd.AddCommand(fmtCmd)
}
