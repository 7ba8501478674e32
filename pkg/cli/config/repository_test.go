package config_test

import (
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/harleysato/mailtriage/pkg/cli/config"
)

func TestRepository_Configure(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("memory", "")
		repo, err := cfg.Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, repo).NotNil()
		gt.NoError(t, repo.Close())
	})

	t.Run("sqlite backend creates and migrates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "triage.db")
		cfg := config.NewRepositoryForTest("sqlite", path)
		repo, err := cfg.Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, repo).NotNil()
		gt.NoError(t, repo.Close())
	})

	t.Run("sqlite backend requires a path", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("sqlite", "")
		_, err := cfg.Configure(t.Context())
		gt.Error(t, err)
	})

	t.Run("unknown backend fails", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("postgres", "")
		_, err := cfg.Configure(t.Context())
		gt.Error(t, err)
	})
}
