package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/harleysato/mailtriage/pkg/cli/config"
)

func TestProfile_Configure(t *testing.T) {
	t.Run("defaults with identity flags", func(t *testing.T) {
		cfg := config.NewProfileForTest("", "harley@acme.example", "Harley")
		profile, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, profile.UserEmail).Equal("harley@acme.example")
		gt.Value(t, profile.UserFirstName).Equal("Harley")
		gt.Value(t, profile.Domain()).Equal("acme.example")
		gt.Value(t, profile.Schedule.TaskLimit).Equal(20)
	})

	t.Run("missing identity fails validation", func(t *testing.T) {
		cfg := config.NewProfileForTest("", "", "")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("TOML file overlays defaults", func(t *testing.T) {
		content := `
user_email = "harley@acme.example"
vip_senders = ["ceo@acme.example"]

[schedule]
task_limit = 8
urgency_floor = 85
time_pressure_threshold = 20
stale_escalation = true
`
		path := filepath.Join(t.TempDir(), "profile.toml")
		gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

		cfg := config.NewProfileForTest(path, "", "")
		profile, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, profile.UserEmail).Equal("harley@acme.example")
		gt.Value(t, profile.Schedule.TaskLimit).Equal(8)
		gt.Value(t, profile.Schedule.UrgencyFloor).Equal(85.0)
		gt.Bool(t, profile.IsVIP("ceo@acme.example")).True()
		// untouched sections keep the stock registries
		gt.Bool(t, len(profile.MarketingDomains) > 0).True()
	})

	t.Run("identity flags win over file", func(t *testing.T) {
		content := `user_email = "other@acme.example"`
		path := filepath.Join(t.TempDir(), "profile.toml")
		gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

		cfg := config.NewProfileForTest(path, "harley@acme.example", "")
		profile, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, profile.UserEmail).Equal("harley@acme.example")
	})

	t.Run("invalid schedule in file fails", func(t *testing.T) {
		content := `
user_email = "harley@acme.example"

[schedule]
task_limit = 0
`
		path := filepath.Join(t.TempDir(), "profile.toml")
		gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

		cfg := config.NewProfileForTest(path, "", "")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("missing file fails", func(t *testing.T) {
		cfg := config.NewProfileForTest(filepath.Join(t.TempDir(), "no-such.toml"), "harley@acme.example", "")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})
}
