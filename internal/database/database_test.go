package database

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/shopdeskgo/internal/config"
)

func TestIsEmbedded(t *testing.T) {
	assert.True(t, IsEmbedded(config.DatabaseConfig{Host: "localhost"}))
	assert.False(t, IsEmbedded(config.DatabaseConfig{Host: "localhost", Password: "pw"}))
	assert.False(t, IsEmbedded(config.DatabaseConfig{Host: "db.internal"}))
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: "5432", Username: "shop", Password: "pw", Database: "shopdesk"})
	assert.Equal(t, "host=db port=5432 user=shop password=pw dbname=shopdesk sslmode=disable", dsn)
}

func TestReapStalePostmasterRemovesDeadPID(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "postmaster.pid")
	// pid far above any default pid_max
	require.NoError(t, os.WriteFile(pidFile, []byte("99999999\n/data\n"), 0o600))

	reapStalePostmaster(dir)

	_, err := os.Stat(pidFile)
	assert.True(t, os.IsNotExist(err))
}

func TestReapStalePostmasterKeepsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "postmaster.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte("not-a-pid\n"), 0o600))

	reapStalePostmaster(dir)

	_, err := os.Stat(pidFile)
	assert.NoError(t, err)
}

func TestReadPostmasterPIDMissingFile(t *testing.T) {
	_, ok := readPostmasterPID(filepath.Join(t.TempDir(), "postmaster.pid"))
	assert.False(t, ok)
}

func TestWaitForPortRelease(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	assert.True(t, portInUse(port))
	require.NoError(t, l.Close())

	assert.NoError(t, waitForPortRelease(port))
}
