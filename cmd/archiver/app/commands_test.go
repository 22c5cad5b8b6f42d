package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunr3d/archiver-status/internal/config"
	"github.com/sunr3d/archiver-status/internal/services/archival_service"
)

func inmemEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", config.BackendInmem)
	t.Setenv("DISPATCH_BACKEND", config.BackendInmem)
	t.Setenv("CATALOG_BACKEND", config.BackendInmem)
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTriggerCmd(t *testing.T) {
	inmemEnv(t)

	out, err := run(t, "trigger", "--resource", "r1", "--resource", "r2", "--dataset", "d1")

	require.NoError(t, err)
	assert.Contains(t, out, "поставлено задач: 3")
}

func TestTriggerCmd_RequiresTarget(t *testing.T) {
	inmemEnv(t)

	_, err := run(t, "trigger")

	assert.ErrorIs(t, err, ErrTargetRequired)
}

func TestStatusCmd_UnknownDataset(t *testing.T) {
	inmemEnv(t)

	_, err := run(t, "status", "--dataset", "d1")

	assert.ErrorIs(t, err, archival_service.ErrNotFound)
}

func TestStatusCmd_RequiresExactlyOneTarget(t *testing.T) {
	inmemEnv(t)

	_, err := run(t, "status", "--dataset", "d1", "--resource", "r1")

	assert.ErrorIs(t, err, ErrTargetRequired)
}

func TestMigrateCmd_RejectsInmem(t *testing.T) {
	inmemEnv(t)

	_, err := run(t, "migrate")

	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(&config.Config{LogLevel: "debug", LogFormat: "console"})
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = newLogger(&config.Config{LogLevel: "loud"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
