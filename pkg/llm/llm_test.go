package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

func TestLangchainProvider_ChatMode(t *testing.T) {
	p := NewLangchainProvider(fake.NewFakeLLM([]string{"  an answer  "}), ModeChat)

	resp, err := p.Complete(context.Background(), "q", Options{Temperature: 0.5, MaxTokens: 800})
	require.NoError(t, err)
	require.Equal(t, KindChoices, resp.Kind)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "  an answer  ", resp.Choices[0].Text)
}

func TestLangchainProvider_TextMode(t *testing.T) {
	p := NewLangchainProvider(fake.NewFakeLLM([]string{"bare"}), ModeText)

	resp, err := p.Complete(context.Background(), "q", Options{})
	require.NoError(t, err)
	require.Equal(t, KindText, resp.Kind)
	require.Equal(t, "bare", resp.Text)
}

func TestLangchainProvider_Error(t *testing.T) {
	p := NewLangchainProvider(fake.NewFakeLLM(nil), ModeChat)

	_, err := p.Complete(context.Background(), "q", Options{})
	require.Error(t, err)
}

func TestDecodeContent(t *testing.T) {
	testCases := []struct {
		name string
		resp *llms.ContentResponse
		kind ResponseKind
	}{
		{"Nil", nil, KindUnknown},
		{"NilChoice", &llms.ContentResponse{Choices: []*llms.ContentChoice{nil}}, KindUnknown},
		{"NoChoices", &llms.ContentResponse{}, KindChoices},
		{"OneChoice", &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "x", StopReason: "stop"}}}, KindChoices},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.kind, decodeContent(tc.resp).Kind)
		})
	}
}

func TestOpenAIProvider_AgainstStubServer(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "From the stub."},
				"finish_reason": "stop",
			}},
		})
	}))
	defer server.Close()

	p, err := NewOpenAIProvider("sk-test", "gpt-test", server.URL, server.Client(), ModeChat)
	require.NoError(t, err)

	resp, err := p.Complete(context.Background(), "hello", Options{Temperature: 0.5, MaxTokens: 800})
	require.NoError(t, err)
	require.Equal(t, KindChoices, resp.Kind)
	require.Equal(t, "From the stub.", resp.Choices[0].Text)
	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Equal(t, "gpt-test", gotBody["model"])
}

func TestNewOpenAIProvider_MissingToken(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewOpenAIProvider("", "", "", nil, ModeChat)
	require.Error(t, err)
}

type flakyProvider struct {
	failures int
	calls    int
}

func (f *flakyProvider) Complete(context.Context, string, Options) (*Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("temporary")
	}
	return TextResponse("ok"), nil
}

func TestRetryingProvider(t *testing.T) {
	testCases := []struct {
		name       string
		failures   int
		maxRetries int
		wantErr    bool
		wantCalls  int
	}{
		{"NoRetriesSuccess", 0, 0, false, 1},
		{"NoRetriesFailure", 1, 0, true, 1},
		{"RecoversWithinBudget", 2, 3, false, 3},
		{"ExhaustsBudget", 5, 2, true, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inner := &flakyProvider{failures: tc.failures}
			p := NewRetryingProvider(inner, tc.maxRetries, time.Millisecond, nil)

			resp, err := p.Complete(context.Background(), "q", Options{})
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, "ok", resp.Text)
			}
			require.Equal(t, tc.wantCalls, inner.calls)
		})
	}
}

func TestRetryingProvider_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewRetryingProvider(&flakyProvider{failures: 10}, 3, time.Hour, nil)
	_, err := p.Complete(ctx, "q", Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffDelay(t *testing.T) {
	testCases := []struct {
		name     string
		attempt  int
		frac     float64
		expected time.Duration
	}{
		{"NoJitter", 0, 0.5, 100 * time.Millisecond},
		{"Max", 0, 0, 125 * time.Millisecond},
		{"Min", 0, 0.999, 75*time.Millisecond + 50*time.Microsecond},
		{"Doubles", 2, 0.5, 400 * time.Millisecond},
		{"DoublesMax", 2, 0, 500 * time.Millisecond},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := backoffDelay(100*time.Millisecond, tc.attempt, tc.frac)
			require.InDelta(t, float64(tc.expected), float64(got), float64(time.Microsecond))
		})
	}
}

func TestCalculateBackoffDelay_Bounds(t *testing.T) {
	p := NewRetryingProvider(&flakyProvider{}, 3, 100*time.Millisecond, nil)
	for i := 0; i < 50; i++ {
		d := p.calculateBackoffDelay(1)
		require.GreaterOrEqual(t, d, 150*time.Millisecond)
		require.LessOrEqual(t, d, 250*time.Millisecond)
	}
}
