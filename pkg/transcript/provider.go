package transcript

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xhad/rescript/internal/models"
)

// ProviderError is the typed failure a provider converts every fault into:
// network errors, non-2xx statuses, malformed payloads, empty segment lists.
// It never propagates as an unhandled fault that aborts a batch.
type ProviderError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerErr(provider, reason string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Reason: reason, Err: err}
}

// JoinSegments joins segment texts into normalized plain text with all
// whitespace runs collapsed to single spaces.
func JoinSegments(segments []models.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
		b.WriteString(" ")
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
