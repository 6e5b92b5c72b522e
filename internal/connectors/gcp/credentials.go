// Package gcp prepares Google Cloud client credentials and hosts the
// BigQuery and Firestore facades in its subpackages.
package gcp

import (
	"os"
	"path/filepath"

	"github.com/custodia-labs/rpa-cli/internal/files"
	"github.com/custodia-labs/rpa-cli/internal/hash"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// CredentialsEnv is read by Google Cloud client libraries to locate a
// service account key.
const CredentialsEnv = "GOOGLE_APPLICATION_CREDENTIALS"

// BootstrapCredentials materialises service account JSON handed over through
// the environment. The content is written to <md5(content)>.json in the
// workspace and CredentialsEnv is pointed at it. Empty content is a no-op
// and returns "".
func BootstrapCredentials(f *files.Files, content string) (string, error) {
	if content == "" {
		return "", nil
	}

	name := hash.MD5(content) + ".json"
	if err := f.Write(name, []byte(content)); err != nil {
		return "", err
	}

	path, err := filepath.Abs(f.Path(name))
	if err != nil {
		return "", err
	}
	if err := os.Setenv(CredentialsEnv, path); err != nil {
		return "", err
	}
	logger.Debug("GCP: credentials written to %s", path)
	return path, nil
}
