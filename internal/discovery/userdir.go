package discovery

import "path/filepath"

// UserConfigDir returns the user-level dprint configuration directory for the
// given platform. It is a pure function of its inputs so tests never touch
// real environment state.
//
// Precedence: the DPRINT_CONFIG_DIR override, then the roaming application
// data directory on Windows, then XDG_CONFIG_HOME, then ~/.config.
func UserConfigDir(home, goos string, env map[string]string) string {
	if dir := env["DPRINT_CONFIG_DIR"]; dir != "" {
		return dir
	}

	if goos == "windows" {
		if appData := env["APPDATA"]; appData != "" {
			return filepath.Join(appData, "dprint")
		}
		return filepath.Join(home, "AppData", "Roaming", "dprint")
	}

	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "dprint")
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "dprint")
}
