package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/harleysato/mailtriage/pkg/domain/model"
)

// Profile holds CLI flags for the triage profile configuration.
type Profile struct {
	path      string
	userEmail string
	userName  string
}

// Flags returns CLI flags for profile configuration
func (p *Profile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to a TOML triage profile (defaults apply when omitted)",
			Sources:     cli.EnvVars("MAILTRIAGE_PROFILE"),
			Destination: &p.path,
		},
		&cli.StringFlag{
			Name:        "user-email",
			Usage:       "Email address of the triage owner",
			Sources:     cli.EnvVars("MAILTRIAGE_USER_EMAIL"),
			Destination: &p.userEmail,
		},
		&cli.StringFlag{
			Name:        "user-name",
			Usage:       "First name of the triage owner (used for direct-address detection)",
			Sources:     cli.EnvVars("MAILTRIAGE_USER_NAME"),
			Destination: &p.userName,
		},
	}
}

// Configure loads the triage profile. The stock profile is used as the base,
// a TOML file overlays it when given, and the identity flags win over both.
func (p *Profile) Configure() (*model.TriageProfile, error) {
	profile := model.DefaultProfile()

	if p.path != "" {
		// #nosec G304 - path is expected to be provided by CLI argument
		data, err := os.ReadFile(p.path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read profile file", goerr.V("path", p.path))
		}
		if err := toml.Unmarshal(data, profile); err != nil {
			return nil, goerr.Wrap(err, "failed to parse TOML profile", goerr.V("path", p.path))
		}
	}

	if p.userEmail != "" {
		profile.UserEmail = p.userEmail
	}
	if p.userName != "" {
		profile.UserFirstName = p.userName
	}

	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(err, "profile validation failed", goerr.V("path", p.path))
	}

	return profile, nil
}
