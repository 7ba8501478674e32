// Package semantic implements the LLM-backed third triage stage. It assigns
// one of the Work categories (1-5) to messages the rule stage could not
// route, with bounded retries and a conservative fallback so a flaky model
// never stalls a batch.
package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/utils/logging"
)

const (
	defaultTimeout = 30 * time.Second
	maxAttempts    = 3
	initialBackoff = time.Second
	bodyLimit      = 1000
)

// ErrUnparsableResponse marks an LLM response that could not be decoded into
// a classification. Not retryable; the caller degrades to the safe default.
var ErrUnparsableResponse = goerr.New("unparsable LLM response")

// generator is the slice of gollem.Session this package uses.
type generator interface {
	GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

// Classifier wraps a gollem LLM client as an interfaces.SemanticClassifier.
type Classifier struct {
	llmClient  gollem.LLMClient
	timeout    time.Duration
	backoff    time.Duration
	newSession func(ctx context.Context) (generator, error)
}

// Option is a functional option for Classifier configuration.
type Option func(*Classifier)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		c.timeout = d
	}
}

// New creates a semantic classifier with the provided LLM client.
func New(llmClient gollem.LLMClient, opts ...Option) (*Classifier, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Classifier{
		llmClient: llmClient,
		timeout:   defaultTimeout,
		backoff:   initialBackoff,
	}
	c.newSession = c.defaultSession

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Classifier) defaultSession(ctx context.Context) (generator, error) {
	return c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(responseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
}

// Classify assigns a Work category to the message. Retryable failures (rate
// limits, 5xx, timeouts, connection errors) back off 1s/2s/4s for up to
// three attempts. Terminal failures and exhausted retries degrade to
// action_required at low confidence instead of returning an error, so one
// bad message never aborts the batch. Only context cancellation propagates.
func (c *Classifier) Classify(ctx context.Context, msg *model.Message) (*model.SemanticResult, error) {
	prompt := buildPrompt(msg)

	var lastErr error
	backoff := c.backoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, goerr.Wrap(ctx.Err(), "classification aborted", goerr.V("message_id", msg.ID))
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		result, err := c.generate(ctx, prompt)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, goerr.Wrap(err, "classification aborted", goerr.V("message_id", msg.ID))
		}

		lastErr = err
		if !isRetryable(err) {
			break
		}
		logging.From(ctx).Warn("semantic classification failed, retrying",
			"message_id", msg.ID,
			"attempt", attempt,
			"error", err,
		)
	}

	logging.From(ctx).Warn("semantic classification degraded to fallback",
		"message_id", msg.ID,
		"error", lastErr,
	)
	return fallbackResult(lastErr), nil
}

func (c *Classifier) generate(ctx context.Context, prompt string) (*model.SemanticResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, err := c.newSession(callCtx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(callCtx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	return parseResponse(resp.Texts[0])
}

type llmResponse struct {
	CategoryID   int     `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

func parseResponse(text string) (*model.SemanticResult, error) {
	var resp llmResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		// Models occasionally wrap the JSON in prose. Take the outermost
		// object and try once more.
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, goerr.Wrap(ErrUnparsableResponse, "no JSON object in response", goerr.V("response", text))
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
			return nil, goerr.Wrap(ErrUnparsableResponse, "invalid JSON in response", goerr.V("response", text))
		}
	}

	category := types.Category(resp.CategoryID)
	if !category.IsWork() {
		return nil, goerr.New("LLM returned category outside work range",
			goerr.V("category_id", resp.CategoryID))
	}

	confidence := resp.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &model.SemanticResult{
		Category:   category,
		Confidence: confidence,
		Reasoning:  resp.Reasoning,
	}, nil
}

func fallbackResult(cause error) *model.SemanticResult {
	reasoning := "semantic classification unavailable"
	if cause != nil {
		reasoning = fmt.Sprintf("semantic classification unavailable: %v", cause)
	}
	return &model.SemanticResult{
		Category:   types.CategoryActionRequired,
		Confidence: 0.3,
		Reasoning:  reasoning,
		Degraded:   true,
	}
}

var retryableMarkers = []string{
	"rate limit",
	"rate_limit",
	"429",
	"500",
	"502",
	"503",
	"504",
	"timeout",
	"timed out",
	"deadline exceeded",
	"connection",
	"unavailable",
	"overloaded",
	"internal server",
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	text := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

const systemPrompt = `You are an expert email triage assistant. Classify work emails into one of 5 categories based on what action the recipient needs to take.

CATEGORIES:

1. BLOCKING
   Critical blockers that prevent progress on important work and require immediate action.
   Indicators: someone is blocked waiting for the recipient, production issues, critical deadlines.

2. ACTION REQUIRED
   Important tasks that need completion: a reply with information or a decision, or a concrete to-do such as reviewing a document or approving a request.
   Indicators: direct questions, "can you", "please", "need your".

3. WAITING ON
   The recipient already took action and is waiting for someone else to respond or finish something.
   Indicators: status updates from others, confirmations, "working on it", "will get back to you".

4. TIME-SENSITIVE
   Has a specific deadline or time constraint that needs attention soon but is not blocking anyone right now.
   Indicators: specific dates or times, "due by", "deadline", "reminder", upcoming events.

5. INFORMATIONAL
   Informational only, no action needed.
   Indicators: "FYI", status updates, newsletters, automated notifications that need no action.

GUIDELINES:
- Someone is BLOCKED waiting on the recipient: category 1.
- The recipient must DO something or REPLY: category 2.
- The recipient is waiting on THEM: category 3.
- There is a DEADLINE but nobody is blocked: category 4.
- Just information, no action: category 5.

CONFIDENCE:
- 0.9-1.0: very clear category
- 0.7-0.89: most signals point one way
- 0.5-0.69: could go either way
- 0.3-0.49: ambiguous

When in doubt: direct questions or requests are category 2, time pressure without blocking is category 4, no clear action is category 5.

Respond ONLY with valid JSON in this exact format:
{"category_id": <number 1-5>, "category_name": "<category name>", "confidence": <number 0.0-1.0>, "reasoning": "<brief 1-2 sentence explanation>"}`

func responseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "EmailClassification",
		Description: "Work category assignment for a single email",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"category_id": {
				Type:        gollem.TypeInteger,
				Description: "The assigned category, 1 through 5",
				Required:    true,
			},
			"category_name": {
				Type:        gollem.TypeString,
				Description: "The name of the assigned category",
				Required:    true,
			},
			"confidence": {
				Type:        gollem.TypeNumber,
				Description: "Classification confidence between 0.0 and 1.0",
				Required:    true,
			},
			"reasoning": {
				Type:        gollem.TypeString,
				Description: "Brief explanation of the classification",
				Required:    true,
			},
		},
	}
}

func buildPrompt(msg *model.Message) string {
	var sb strings.Builder

	sb.WriteString("EMAIL TO CLASSIFY:\n\n")
	fmt.Fprintf(&sb, "From: %s <%s>\n", valueOr(msg.FromName, "Unknown"), msg.FromAddress)
	fmt.Fprintf(&sb, "To: %s\n", joinAddresses(msg.ToRecipients))
	fmt.Fprintf(&sb, "CC: %s\n", joinAddresses(msg.CcRecipients))
	fmt.Fprintf(&sb, "Subject: %s\n", valueOr(msg.Subject, "[No subject]"))
	fmt.Fprintf(&sb, "Received: %s\n", msg.ReceivedAt.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "Importance: %s\n", msg.Importance)
	fmt.Fprintf(&sb, "Has Attachments: %t\n", msg.HasAttachments)

	body := msg.Body
	if body == "" {
		body = msg.BodyPreview
	}
	if len(body) > bodyLimit {
		body = body[:bodyLimit]
	}
	if body == "" {
		body = "[No body content]"
	}
	sb.WriteString("\nBody:\n")
	sb.WriteString(body)
	sb.WriteString("\n\nClassify this email into one of the 5 categories.")

	return sb.String()
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func joinAddresses(recipients []model.Recipient) string {
	if len(recipients) == 0 {
		return "None"
	}
	addrs := make([]string, 0, len(recipients))
	for _, r := range recipients {
		addrs = append(addrs, r.Address)
	}
	return strings.Join(addrs, ", ")
}
