package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
engine: /usr/local/bin/roqet
timeout: 30s
parallelism: 8
require_approval: true
graph_comparator: /usr/bin/graph-isomorphic
work_dir: /tmp/scratch
database: history.db
fail_fast: true
`))
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/roqet", cfg.Engine)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.True(t, cfg.RequireApproval)
	assert.Equal(t, "/usr/bin/graph-isomorphic", cfg.GraphComparator)
	assert.Equal(t, "/tmp/scratch", cfg.WorkDir)
	assert.Equal(t, "history.db", cfg.Database)
	assert.True(t, cfg.FailFast)

	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestParse_DefaultsApply(t *testing.T) {
	cfg, err := Parse([]byte("engine: roqet\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Equal(t, "5m", cfg.Timeout)
	assert.False(t, cfg.RequireApproval)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("engine: roqet\nparalellism: 4\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty engine", "engine: \"\"\n"},
		{"parallelism too low", "engine: roqet\nparallelism: -2\n"},
		{"parallelism too high", "engine: roqet\nparallelism: 10000\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestParse_BadTimeout(t *testing.T) {
	_, err := Parse([]byte("engine: roqet\ntimeout: soon\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad timeout")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: roqet\nparallelism: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Parallelism)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestTimeoutDuration_Empty(t *testing.T) {
	d, err := Config{}.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)
}
