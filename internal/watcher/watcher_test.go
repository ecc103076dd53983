package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/ws/a/dprint.json", true},
		{"/ws/a/dprint.jsonc", true},
		{"/ws/a/.dprint.json", true},
		{"/ws/a/.dprint.jsonc", true},
		{"/ws/a/.dprintd.json", true},
		{"/ws/a/main.go", false},
		{"/ws/a/dprint.json.bak", false},
		{"/ws/a/package.json", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, relevant(tt.path), tt.path)
	}
}
