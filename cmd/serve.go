package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonheimlicher/dprint-vscode/internal/app"
	"github.com/simonheimlicher/dprint-vscode/internal/logging"
	"github.com/simonheimlicher/dprint-vscode/internal/workspace"
)

const maxRequestSize = 16 * 1024 * 1024

type serveRequest struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

type serveResponse struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve format requests as JSON lines on stdin/stdout",
	Long: `Reads one JSON object per line from stdin ({"path": ..., "text": ...})
and writes one JSON object per line to stdout ({"text": ...} or
{"error": ...}). The workspace is re-initialized automatically when dprint
configuration files change on disk. Exits on EOF.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		application, err := app.New(ctx, folderRoots(cmd))
		if err != nil {
			return err
		}
		defer application.Shutdown()

		if err := application.StartWatcher(ctx); err != nil {
			return fmt.Errorf("starting config watcher: %w", err)
		}

		encoder := json.NewEncoder(os.Stdout)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), maxRequestSize)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var req serveRequest
			if err := json.Unmarshal(line, &req); err != nil {
				encoder.Encode(serveResponse{Error: fmt.Sprintf("malformed request: %v", err)})
				continue
			}

			formatted, err := application.Workspace.Format(ctx, workspace.Document{
				Path: req.Path,
				Text: req.Text,
			})
			switch {
			case errors.Is(err, workspace.ErrNoFormatter):
				// Leave the document unchanged.
				encoder.Encode(serveResponse{Text: req.Text})
			case err != nil:
				encoder.Encode(serveResponse{Error: err.Error()})
			default:
				encoder.Encode(serveResponse{Text: formatted})
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		logging.Info("Input closed, shutting down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
