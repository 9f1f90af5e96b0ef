package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/logx"
)

func TestMain(m *testing.M) {
	logx.Disable()
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	t.Setenv("NO_DOTENV", "1")
	p := filepath.Join(t.TempDir(), "coinlens.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

const baseConfig = `
Name: coinlens-api
Host: 127.0.0.1
Port: 8899
Env: test
`

func TestLoadJobRequiresStore(t *testing.T) {
	path := writeConfig(t, baseConfig)

	_, err := loadJob(path, false)
	assert.ErrorIs(t, err, errNoStore)

	job, err := loadJob(path, true)
	require.NoError(t, err)
	assert.NotNil(t, job)
}

func TestLoadJobWithStore(t *testing.T) {
	path := writeConfig(t, baseConfig+`
Store:
  Driver: sqlite3
  DSN: "file::memory:?cache=shared"
  AutoMigrate: true
`)
	job, err := loadJob(path, false)
	require.NoError(t, err)
	assert.NotNil(t, job)
}

func TestRunRefusesWithoutStore(t *testing.T) {
	path := writeConfig(t, baseConfig)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"run", "-f", path})
	assert.ErrorIs(t, cmd.Execute(), errNoStore)
}
