// Package host implements Dana's host-call surface: native capabilities
// exposed to Dana code as ordinary functions, starting with reason(), the
// LLM call-out every Dana program can invoke without importing anything.
package host

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dana-lang/dana/internal/values"
)

// Options configures a reason() call: sampling temperature, a response
// token budget, any system messages to prepend, and whether the call
// should request the model's chain-of-thought via enable_ipv.
type Options struct {
	Temperature     float64
	MaxTokens       int
	SystemMessages  []string
	EnableIPV       bool
}

// Resource is the pluggable LLM backend reason() calls through. Sandbox
// wiring supplies a real implementation when one is configured; otherwise
// Reason uses the mock (see NewMockResource) if mock mode is enabled and
// returns a RuntimeError if it is not.
type Resource interface {
	Complete(prompt string, opts Options) (string, error)
}

// mockResource answers deterministically without any network access,
// active when OPENDXA_MOCK_LLM is "1", "true" or "yes" (any case) so tests
// and CI can exercise reason() without live credentials.
type mockResource struct{}

func (mockResource) Complete(prompt string, _ Options) (string, error) {
	return fmt.Sprintf("[mock reasoning response to: %s]", prompt), nil
}

// NewMockResource returns the deterministic stand-in LLM resource.
func NewMockResource() Resource { return mockResource{} }

func mockEnabled() bool {
	v := strings.ToLower(os.Getenv("OPENDXA_MOCK_LLM"))
	return v == "1" || v == "true" || v == "yes"
}

// Reason implements the reason(prompt, options?) host call. If no Resource
// is configured and mock mode isn't enabled, it raises a RuntimeError
// rather than silently degrading — the same "fail loud, not quiet" stance
// the sandbox takes toward any unconfigured external dependency.
func Reason(res Resource, logger hclog.Logger, prompt string, opts Options) (values.Value, error) {
	if res == nil {
		if mockEnabled() {
			res = NewMockResource()
		} else {
			return values.None(), fmt.Errorf("RuntimeError: reason() called with no LLM resource configured and OPENDXA_MOCK_LLM not set")
		}
	}
	logger.Debug("reason() call", "prompt_len", len(prompt), "temperature", opts.Temperature)
	text, err := res.Complete(prompt, opts)
	if err != nil {
		return values.None(), fmt.Errorf("RuntimeError: reason() call failed: %w", err)
	}
	return values.Str(text), nil
}
