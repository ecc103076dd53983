package discovery

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ValidateConfig checks that a dprint configuration file exists and parses.
// dprint configs allow comments and trailing commas, so the content is run
// through a JSONC conversion before parsing.
func ValidateConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}

	var content map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &content); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	return nil
}
