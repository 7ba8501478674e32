package semantic

import "time"

// SetBackoff shortens the retry backoff for testing
func (c *Classifier) SetBackoff(d time.Duration) {
	c.backoff = d
}

// ParseResponse is exported for testing
var ParseResponse = parseResponse

// IsRetryable is exported for testing
var IsRetryable = isRetryable

// BuildPrompt is exported for testing
var BuildPrompt = buildPrompt
