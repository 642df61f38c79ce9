package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/jingxin-guardian/core/internal/config"
	"go.uber.org/zap"
)

// Diagnostic strings shown to end users when the whole chain is exhausted.
// They are displayable text, not errors: the product must keep working with
// an expired shared key, so callers only ever store/render what comes back.
const (
	diagnosticKeyInvalid = "[系统提示] 默认 API 密钥可能已失效 (%s...)。请管理员在“系统设置”中更新有效的 OpenRouter API Key。"
	diagnosticLinkDown   = "[核心链路故障] 无法连接到 AI 服务。当前使用的 Key 可能已停用或额度用尽。请联系管理员更换全局配置。"
)

const maskedKeyPrefixLen = 10

// Gateway runs an ordered chain of provider strategies and maps final
// exhaustion to diagnostic text at this boundary, nowhere else.
type Gateway struct {
	log       *zap.Logger
	providers []Provider
}

// NewGateway builds the production chain: OpenRouter-compatible HTTP first,
// native Gemini SDK second.
func NewGateway(log *zap.Logger) *Gateway {
	return NewGatewayWithProviders(log, openRouterProvider{}, newGeminiProvider())
}

// NewGatewayWithProviders builds a gateway over an explicit chain.
func NewGatewayWithProviders(log *zap.Logger, providers ...Provider) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{log: log, providers: providers}
}

// Call sends one prompt through the chain and always returns displayable
// text, never an error.
func (g *Gateway) Call(ctx context.Context, cfg config.SystemConfig, prompt, systemInstruction string) string {
	return g.CallChat(ctx, cfg, []Message{{Role: RoleUser, Text: prompt}}, systemInstruction)
}

// CallChat is Call with a full conversation transcript.
func (g *Gateway) CallChat(ctx context.Context, cfg config.SystemConfig, messages []Message, systemInstruction string) string {
	text, err := g.Chat(ctx, cfg, messages, systemInstruction)
	if err != nil {
		return g.diagnose(cfg, err)
	}
	return text
}

// Chat runs the chain and exposes the final error instead of mapping it.
// Callers that substitute their own fallback text (the counseling opener)
// use this entry point.
func (g *Gateway) Chat(ctx context.Context, cfg config.SystemConfig, messages []Message, systemInstruction string) (string, error) {
	req := Request{Config: cfg, System: systemInstruction, Messages: messages}

	var lastErr error
	for _, p := range g.providers {
		text, err := p.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if errors.Is(err, errSkipped) {
			g.log.Debug("ai provider skipped", zap.String("provider", p.Name()))
			continue
		}
		g.log.Warn("ai provider failed, trying next",
			zap.String("provider", p.Name()), zap.Error(err))
	}
	if lastErr == nil {
		lastErr = errors.New("no ai providers configured")
	}
	return "", lastErr
}

// diagnose maps chain exhaustion to user-facing text.
func (g *Gateway) diagnose(cfg config.SystemConfig, err error) string {
	if errors.Is(err, errMissingCredential) {
		key := config.SanitizeASCII(cfg.OpenRouterKey)
		if len(key) > maskedKeyPrefixLen {
			key = key[:maskedKeyPrefixLen]
		}
		return fmt.Sprintf(diagnosticKeyInvalid, key)
	}
	return diagnosticLinkDown
}
