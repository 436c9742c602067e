package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name: "explicit flags override",
			args: []string{"--api", "http://flag:1", "--timeout", "10s", "--log-level", "debug", "--db", "/tmp/s.db", "--download-dir", "out"},
			mutate: func(c *Config) {
				c.APIURL = "http://flag:1"
				c.RequestTimeout = 10 * time.Second
				c.LogLevel = "debug"
				c.SessionDB = "/tmp/s.db"
				c.DownloadDir = "out"
			},
		},
		{
			name:   "unset flags keep previous values",
			args:   []string{"-c", "x.json"},
			mutate: func(*Config) {},
		},
		{
			name:    "bad duration",
			args:    []string{"--timeout", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			RegisterFlags(fs)
			err := fs.Parse(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			cfg := &Config{APIURL: "http://json:2", LogLevel: "warn", SessionDB: "a.db", DownloadDir: "dl"}
			want := *cfg
			tt.mutate(&want)

			require.NoError(t, ApplyFlags(fs, cfg))
			assert.Empty(t, cmp.Diff(&want, cfg))
		})
	}
}
