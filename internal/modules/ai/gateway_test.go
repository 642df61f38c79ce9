package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jingxin-guardian/core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
	text string
	err  error
	seen []Request
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, req Request) (string, error) {
	s.seen = append(s.seen, req)
	return s.text, s.err
}

func TestGatewayFirstProviderWins(t *testing.T) {
	primary := &stubProvider{name: "primary", text: "主通道响应"}
	fallback := &stubProvider{name: "fallback", text: "备用通道响应"}
	g := NewGatewayWithProviders(nil, primary, fallback)

	got := g.Call(context.Background(), config.SystemConfig{}, "体检摘要", "sys")
	assert.Equal(t, "主通道响应", got)
	assert.Len(t, primary.seen, 1)
	assert.Empty(t, fallback.seen, "fallback must not run when the primary succeeds")
	assert.Equal(t, "sys", primary.seen[0].System)
	require.Len(t, primary.seen[0].Messages, 1)
	assert.Equal(t, RoleUser, primary.seen[0].Messages[0].Role)
}

func TestGatewaySkipsToFallback(t *testing.T) {
	primary := &stubProvider{name: "primary", err: fmt.Errorf("key unusable: %w", errSkipped)}
	fallback := &stubProvider{name: "fallback", text: "备用通道响应"}
	g := NewGatewayWithProviders(nil, primary, fallback)

	got := g.Call(context.Background(), config.SystemConfig{}, "prompt", "")
	assert.Equal(t, "备用通道响应", got)
}

func TestGatewayNeverReturnsErrorText(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("connection refused")}
	fallback := &stubProvider{name: "fallback", err: errors.New("quota exhausted")}
	g := NewGatewayWithProviders(nil, primary, fallback)

	got := g.Call(context.Background(), config.SystemConfig{}, "prompt", "")
	assert.Equal(t, diagnosticLinkDown, got)
}

func TestGatewayMissingCredentialDiagnosticMasksKey(t *testing.T) {
	primary := &stubProvider{name: "primary", err: fmt.Errorf("no usable key: %w", errSkipped)}
	fallback := &stubProvider{name: "fallback", err: errMissingCredential}
	g := NewGatewayWithProviders(nil, primary, fallback)

	cfg := config.SystemConfig{OpenRouterKey: "sk-or-v1-abcdef012345"}
	got := g.Call(context.Background(), cfg, "prompt", "")
	assert.Contains(t, got, "sk-or-v1-a", "diagnostic carries only a short key prefix")
	assert.NotContains(t, got, "abcdef012345", "full key never leaks into the diagnostic")
	assert.Contains(t, got, "系统设置")
}

func TestGatewayEmptyChain(t *testing.T) {
	g := NewGatewayWithProviders(nil)
	got := g.Call(context.Background(), config.SystemConfig{}, "prompt", "")
	assert.Equal(t, diagnosticLinkDown, got)
}

func TestGatewayChatExposesError(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("timeout")}
	g := NewGatewayWithProviders(nil, primary)

	_, err := g.Chat(context.Background(), config.SystemConfig{}, []Message{{Role: RoleUser, Text: "你好"}}, "")
	require.Error(t, err)
}

func TestGatewayChatReplaysTranscript(t *testing.T) {
	primary := &stubProvider{name: "primary", text: "收到"}
	g := NewGatewayWithProviders(nil, primary)

	transcript := []Message{
		{Role: RoleModel, Text: "开场白"},
		{Role: RoleUser, Text: "最近压力大"},
		{Role: RoleModel, Text: "理解"},
		{Role: RoleUser, Text: "谢谢"},
	}
	got := g.CallChat(context.Background(), config.SystemConfig{}, transcript, "sys")
	assert.Equal(t, "收到", got)
	require.Len(t, primary.seen, 1)
	assert.Equal(t, transcript, primary.seen[0].Messages)
}

func TestOpenRouterProviderSkipsPlaceholderKey(t *testing.T) {
	for _, key := range []string{"", "   ", config.PlaceholderKeyPrefix, "ｓｋ"} {
		_, err := openRouterProvider{}.Generate(context.Background(), Request{
			Config: config.SystemConfig{OpenRouterKey: key},
		})
		assert.ErrorIs(t, err, errSkipped, "key %q", key)
	}
}

func TestOpenRouterProviderAgainstCompatibleServer(t *testing.T) {
	var gotAuth, gotTitle, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"研判完成"}}]}`)
	}))
	defer srv.Close()

	text, err := openRouterProvider{}.Generate(context.Background(), Request{
		Config: config.SystemConfig{
			OpenRouterKey:  "sk-or-v1-testkey",
			APIBaseURL:     srv.URL,
			PreferredModel: "google/gemini-2.0-flash-001",
		},
		System:   ExamSystemInstruction,
		Messages: []Message{{Role: RoleUser, Text: "分析体检数据"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "研判完成", text)
	assert.Equal(t, "Bearer sk-or-v1-testkey", gotAuth)
	assert.Equal(t, titleHeader, gotTitle)
	assert.True(t, strings.HasSuffix(gotPath, "/chat/completions"), "path %q", gotPath)
}

func TestOpenRouterProviderEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	text, err := openRouterProvider{}.Generate(context.Background(), Request{
		Config: config.SystemConfig{OpenRouterKey: "sk-or-v1-testkey", APIBaseURL: srv.URL},
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, emptyReplyText, text)
}

func TestOpenRouterProviderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := openRouterProvider{}.Generate(context.Background(), Request{
		Config: config.SystemConfig{OpenRouterKey: "sk-or-v1-dead", APIBaseURL: srv.URL},
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, errSkipped)
}
