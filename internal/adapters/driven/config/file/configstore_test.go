package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Equal(t, domain.DefaultSettings(), store.Settings())
}

func TestConfigStore_UpdatePersists(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Update(func(s *domain.Settings) {
		s.WorkspaceDir = "/data/work"
		s.Browser.Mobile = true
		s.Google.ClientID = "client-id"
		s.SlackToken = "xoxb-1"
	})
	require.NoError(t, err)

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	got := reloaded.Settings()
	assert.Equal(t, "/data/work", got.WorkspaceDir)
	assert.True(t, got.Browser.Mobile)
	assert.True(t, got.Browser.Headless)
	assert.Equal(t, "client-id", got.Google.ClientID)
	assert.Equal(t, "xoxb-1", got.SlackToken)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
workspace_dir = "/srv/rpa"

[browser]
mobile = true
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	got := store.Settings()
	assert.Equal(t, "/srv/rpa", got.WorkspaceDir)
	assert.True(t, got.Browser.Mobile)
	assert.True(t, got.Browser.Headless)
	assert.Equal(t, domain.LogFormatText, got.LogFormat)
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("workspace_dir = ["), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_InvalidLogFormat(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(`log_format = "xml"`), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
