package dprint

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/tidwall/gjson"
)

// PluginInfo describes one formatting plugin reported by the dprint CLI.
type PluginInfo struct {
	Name           string
	FileExtensions []string
	FileNames      []string
}

// EditorInfo is the formatter's self-reported editor metadata. The host uses
// it to decide which document types to claim.
type EditorInfo struct {
	SchemaVersion int64
	CliVersion    string
	Plugins       []PluginInfo
}

// QueryEditorInfo runs `<command> editor-info` in dir and parses its JSON
// output. This is a short-lived invocation, separate from the long-lived
// editor service channel.
func QueryEditorInfo(ctx context.Context, command string, args []string, dir string) (EditorInfo, error) {
	cmdArgs := append(append([]string{}, args...), "editor-info")
	cmd := exec.CommandContext(ctx, command, cmdArgs...)
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		return EditorInfo{}, &SpawnError{Command: command, Err: err}
	}
	if !gjson.ValidBytes(out) {
		return EditorInfo{}, fmt.Errorf("editor-info returned invalid JSON")
	}

	parsed := gjson.ParseBytes(out)
	info := EditorInfo{
		SchemaVersion: parsed.Get("schemaVersion").Int(),
		CliVersion:    parsed.Get("cliVersion").String(),
	}
	for _, plugin := range parsed.Get("plugins").Array() {
		p := PluginInfo{Name: plugin.Get("name").String()}
		for _, ext := range plugin.Get("fileExtensions").Array() {
			p.FileExtensions = append(p.FileExtensions, ext.String())
		}
		for _, name := range plugin.Get("fileNames").Array() {
			p.FileNames = append(p.FileNames, name.String())
		}
		info.Plugins = append(info.Plugins, p)
	}
	return info, nil
}
