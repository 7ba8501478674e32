package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/harleysato/mailtriage/pkg/cli/config"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/service/semantic"
	"github.com/harleysato/mailtriage/pkg/usecase"
	"github.com/harleysato/mailtriage/pkg/utils/logging"
	"github.com/harleysato/mailtriage/pkg/utils/safe"
)

func cmdTriage() *cli.Command {
	var (
		repoCfg    config.Repository
		geminiCfg  config.Gemini
		profileCfg config.Profile

		semanticLimit int
		semanticDelay time.Duration
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "semantic-limit",
			Usage:       "Maximum concurrent semantic classification calls",
			Value:       1,
			Sources:     cli.EnvVars("MAILTRIAGE_SEMANTIC_LIMIT"),
			Destination: &semanticLimit,
		},
		&cli.DurationFlag{
			Name:        "semantic-delay",
			Usage:       "Minimum spacing between semantic classification calls",
			Value:       500 * time.Millisecond,
			Sources:     cli.EnvVars("MAILTRIAGE_SEMANTIC_DELAY"),
			Destination: &semanticDelay,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:    "triage",
		Aliases: []string{"t"},
		Usage:   "Run the triage pipeline over unclassified messages",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			profile, err := profileCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load triage profile")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure repository")
			}
			defer safe.Close(ctx, repo)

			opts := []usecase.Option{
				usecase.WithSemanticLimit(semanticLimit),
				usecase.WithSemanticDelay(semanticDelay),
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llmClient != nil {
				classifier, err := semantic.New(llmClient)
				if err != nil {
					return goerr.Wrap(err, "failed to build semantic classifier")
				}
				opts = append(opts, usecase.WithSemanticClassifier(classifier))
			} else {
				logger.Warn("No Gemini project configured, running rule-only pipeline")
			}

			uc, err := usecase.New(repo, profile, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to build use cases")
			}

			report, err := uc.RunPipeline(ctx)
			if err != nil {
				return goerr.Wrap(err, "pipeline run failed")
			}

			printReport(report)
			return nil
		},
	}
}

func printReport(r *model.PipelineReport) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	num := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow, color.Bold)

	w := os.Stdout

	_, _ = title.Fprintf(w, "\nTriage run %s\n", r.RunID)
	_, _ = label.Fprintf(w, "  Candidates: ")
	_, _ = num.Fprintf(w, "%d\n", r.TotalMessages)

	_, _ = title.Fprintln(w, "Classification")
	_, _ = label.Fprintf(w, "  Rule matched:  ")
	_, _ = num.Fprintf(w, "%d\n", r.Rule.Classified)
	_, _ = label.Fprintf(w, "  Overridden:    ")
	_, _ = num.Fprintf(w, "%d\n", r.Override.Overridden)
	_, _ = label.Fprintf(w, "  Semantic:      ")
	_, _ = num.Fprintf(w, "%d", r.Semantic.Classified)
	if r.Semantic.Defaulted > 0 || r.Semantic.Failed > 0 {
		_, _ = warn.Fprintf(w, " (%d defaulted, %d failed)", r.Semantic.Defaulted, r.Semantic.Failed)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = title.Fprintln(w, "Scoring")
	_, _ = label.Fprintf(w, "  Scored: ")
	_, _ = num.Fprintf(w, "%d", r.Scoring.Scored)
	_, _ = label.Fprintf(w, " (floor %d, stale %d)\n", r.Scoring.FloorItems, r.Scoring.StaleItems)

	_, _ = title.Fprintln(w, "Assignment")
	for _, slot := range types.AllSlots() {
		if n := r.Assignment.Slots[slot]; n > 0 {
			_, _ = label.Fprintf(w, "  %-10s ", slot)
			_, _ = num.Fprintf(w, "%d\n", n)
		}
	}
	if r.Assignment.FloorOverflow {
		_, _ = warn.Fprintln(w, "  Urgency floor exceeds the daily task limit")
	}

	_, _ = label.Fprintf(w, "Work items: ")
	_, _ = num.Fprintf(w, "%d", r.WorkItems)
	_, _ = label.Fprintf(w, "  Other: ")
	_, _ = num.Fprintf(w, "%d", r.OtherItems)
	_, _ = label.Fprintf(w, "  Took: %s\n", r.Duration.Round(time.Millisecond))
}
