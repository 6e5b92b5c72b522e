package gcp

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rpa-cli/internal/files"
	"github.com/custodia-labs/rpa-cli/internal/hash"
)

func TestBootstrapCredentials(t *testing.T) {
	t.Setenv(CredentialsEnv, "")
	f := files.New(afero.NewMemMapFs(), "/work")
	content := `{"type":"service_account","project_id":"demo"}`

	path, err := BootstrapCredentials(f, content)

	require.NoError(t, err)
	assert.Equal(t, "/work/"+hash.MD5(content)+".json", path)
	assert.Equal(t, path, os.Getenv(CredentialsEnv))
	data, err := f.Read(hash.MD5(content) + ".json")
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestBootstrapCredentials_EmptyIsNoop(t *testing.T) {
	t.Setenv(CredentialsEnv, "/existing.json")
	f := files.New(afero.NewMemMapFs(), "/work")

	path, err := BootstrapCredentials(f, "")

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "/existing.json", os.Getenv(CredentialsEnv))
}
