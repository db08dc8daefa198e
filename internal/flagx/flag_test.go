package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		boolFlags    []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-u", "http://remote"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-config=alt.json", "-u", "http://remote"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "bool flag never consumes the next argument",
			args:         []string{"-batch", "positional", "-t", "36"},
			allowedFlags: []string{"-t"},
			boolFlags:    []string{"-batch"},
			want:         []string{"-batch", "-t", "36"},
		},
		{
			name:         "bool flag with explicit value",
			args:         []string{"-batch=false"},
			boolFlags:    []string{"-batch"},
			want:         []string{"-batch=false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags, tt.boolFlags...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPath(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-u", "http://x", "-c", "cfg.json"}
	assert.Equal(t, "cfg.json", ConfigPath())

	os.Args = []string{"bin", "-config=other.json"}
	assert.Equal(t, "other.json", ConfigPath())

	os.Args = []string{"bin"}
	assert.Equal(t, "", ConfigPath())
}
