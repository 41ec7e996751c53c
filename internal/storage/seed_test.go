package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifyd/internal/storage"
)

const seedYAML = `transports:
  - host: sandbox.smtp.mailtrap.io
    port: 2525
    from_address: no-reply@example.com
    username: user
    password: secret
    auth_enabled: true
    secure_transport_enabled: true
    is_active: true
  - host: backup.example.com
    port: 25
    from_address: no-reply@example.com
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transports.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestSeedTransports(t *testing.T) {
	store := newTransportStore(t)
	ctx := context.Background()
	path := writeSeed(t, seedYAML)

	n, err := storage.SeedTransports(ctx, store, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	active, err := store.ActiveTransport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sandbox.smtp.mailtrap.io", active.Host)
	assert.Equal(t, 2525, active.Port)
	assert.True(t, active.AuthEnabled)

	t.Run("non-empty store is left alone", func(t *testing.T) {
		n, err := storage.SeedTransports(ctx, store, path)
		require.NoError(t, err)
		assert.Zero(t, n)

		count, err := store.CountTransports(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestSeedTransports_MissingFileOrPath(t *testing.T) {
	store := newTransportStore(t)
	ctx := context.Background()

	n, err := storage.SeedTransports(ctx, store, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = storage.SeedTransports(ctx, store, filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadTransportSeed_RejectsMultipleActive(t *testing.T) {
	path := writeSeed(t, `transports:
  - {host: a.example.com, port: 25, from_address: a@example.com, is_active: true}
  - {host: b.example.com, port: 25, from_address: b@example.com, is_active: true}
`)
	_, err := storage.LoadTransportSeed(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most one")
}

func TestLoadTransportSeed_InvalidYAML(t *testing.T) {
	path := writeSeed(t, "transports: [")
	_, err := storage.LoadTransportSeed(path)
	assert.Error(t, err)
}
