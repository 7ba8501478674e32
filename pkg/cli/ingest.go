package cli

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/harleysato/mailtriage/pkg/cli/config"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/usecase"
	"github.com/harleysato/mailtriage/pkg/utils/logging"
	"github.com/harleysato/mailtriage/pkg/utils/safe"
)

// inboundMessage is the JSON wire format accepted by the ingest command.
type inboundMessage struct {
	MessageID      string            `json:"message_id"`
	FromAddress    string            `json:"from_address"`
	FromName       string            `json:"from_name"`
	Subject        string            `json:"subject"`
	BodyPreview    string            `json:"body_preview"`
	Body           string            `json:"body"`
	ReceivedAt     time.Time         `json:"received_at"`
	Importance     string            `json:"importance"`
	ConversationID string            `json:"conversation_id"`
	HasAttachments bool              `json:"has_attachments"`
	ToRecipients   []model.Recipient `json:"to_recipients"`
	CcRecipients   []model.Recipient `json:"cc_recipients"`
	Headers        map[string]string `json:"headers"`
}

func (m *inboundMessage) toModel() *model.Message {
	return &model.Message{
		MessageID:      m.MessageID,
		FromAddress:    m.FromAddress,
		FromName:       m.FromName,
		Subject:        m.Subject,
		BodyPreview:    m.BodyPreview,
		Body:           m.Body,
		ReceivedAt:     m.ReceivedAt,
		Importance:     types.Importance(m.Importance),
		ConversationID: m.ConversationID,
		HasAttachments: m.HasAttachments,
		ToRecipients:   m.ToRecipients,
		CcRecipients:   m.CcRecipients,
		Headers:        m.Headers,
	}
}

func cmdIngest() *cli.Command {
	var (
		repoCfg    config.Repository
		profileCfg config.Profile

		inputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a JSON file with an array of messages",
			Required:    true,
			Sources:     cli.EnvVars("MAILTRIAGE_INGEST_INPUT"),
			Destination: &inputPath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Load messages from a JSON file into the repository",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// #nosec G304 - path is expected to be provided by CLI argument
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read input file", goerr.V("path", inputPath))
			}

			var inbound []*inboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil {
				return goerr.Wrap(err, "failed to parse input file", goerr.V("path", inputPath))
			}

			msgs := make([]*model.Message, len(inbound))
			for i, in := range inbound {
				msgs[i] = in.toModel()
			}

			profile, err := profileCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load triage profile")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure repository")
			}
			defer safe.Close(ctx, repo)

			uc, err := usecase.New(repo, profile)
			if err != nil {
				return goerr.Wrap(err, "failed to build use cases")
			}

			stored, err := uc.Ingest(ctx, msgs)
			if err != nil {
				return goerr.Wrap(err, "ingest failed")
			}

			logger.Info("Ingest finished", "path", inputPath, "stored", stored)
			return nil
		},
	}
}
