package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonheimlicher/dprint-vscode/internal/config"
	"github.com/simonheimlicher/dprint-vscode/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "dprintd",
	Short: "Workspace-aware host for dprint editor services",
	Long: `dprintd routes document-formatting requests to per-folder dprint
editor-service subprocesses. It discovers dprint configuration across
workspace folders and the user-level config directory, binds one supervised
formatter process per folder (plus a catch-all for files outside every
folder), and keeps those processes alive across crashes and configuration
changes.`,
	Example: `
  # Format files in place, routing each through its folder's formatter
  dprintd fmt -w src/a.json docs/readme.md

  # Show what would change as a unified diff
  dprintd fmt --diff src/a.json

  # Multi-root workspace
  dprintd --root /ws/frontend --root /ws/backend fmt /ws/frontend/app.ts

  # Long-running service reading format requests from stdin
  dprintd serve

  # Print the PID of the first running formatter (test tooling)
  dprintd editor-pid
  `,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flag("version").Changed {
			fmt.Println(version.Version)
			os.Exit(0)
		}

		debug, _ := cmd.Flags().GetBool("debug")
		cwd, _ := cmd.Flags().GetString("cwd")

		if cwd != "" {
			if err := os.Chdir(cwd); err != nil {
				return fmt.Errorf("failed to change directory: %v", err)
			}
		}
		if cwd == "" {
			c, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current working directory: %v", err)
			}
			cwd = c
		}

		_, err := config.Load(cwd, debug)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// folderRoots returns the --root flags, defaulting to the working directory.
func folderRoots(cmd *cobra.Command) []string {
	roots, _ := cmd.Flags().GetStringArray("root")
	if len(roots) == 0 {
		roots = []string{config.WorkingDirectory()}
	}
	return roots
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug logging")
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().StringArrayP("root", "r", nil, "Workspace folder root (repeatable; defaults to cwd)")
	rootCmd.Flags().BoolP("version", "v", false, "Version")
}
