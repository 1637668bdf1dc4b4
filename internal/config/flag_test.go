package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-d", "/tmp/x.db", "-s", "memory", "-l", "debug"},
			expected: &Config{DatabaseDSN: "/tmp/x.db", StoreDriver: "memory", LogLevel: "debug"}},
		{name: "equals form and foreign flags", args: []string{"cmd", "-c", "cfg.json", "-l=error"},
			expected: &Config{LogLevel: "error"}},
		{name: "missing value", args: []string{"cmd", "-l"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
