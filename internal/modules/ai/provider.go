package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jingxin-guardian/core/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

// Message roles on the wire. The officer side is "user", the AI side "model"
// (the OpenRouter provider translates "model" to "assistant").
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a conversation handed to a provider.
type Message struct {
	Role string
	Text string
}

// Request is a single generation request against the resolved provider
// configuration. Sanitization happens inside the providers, at call time.
type Request struct {
	Config   config.SystemConfig
	System   string
	Messages []Message
}

// Provider is one strategy in the gateway's ordered failover chain.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// errSkipped means the provider declined the request without attempting a
// call (for example the primary key is empty or a bare placeholder).
var errSkipped = errors.New("provider skipped")

// errMissingCredential means the fallback credential is not configured at
// all; the gateway turns this into the administrator diagnostic.
var errMissingCredential = errors.New("fallback credential missing")

const (
	callTimeout     = 30 * time.Second
	sampleTemp      = 0.7
	refererHeader   = "https://jingxin-guardian.internal"
	titleHeader     = "JingXin Guardian System"
	emptyReplyText  = "AI 响应内容为空"
	emptyGeminiText = "Gemini SDK 响应内容为空"
)

// openRouterProvider is the primary path: an OpenAI-compatible
// chat-completions call against the configured base URL.
type openRouterProvider struct{}

func (openRouterProvider) Name() string { return "openrouter" }

func (openRouterProvider) Generate(ctx context.Context, req Request) (string, error) {
	key := config.SanitizeASCII(req.Config.OpenRouterKey)
	if key == "" || key == config.PlaceholderKeyPrefix {
		return "", fmt.Errorf("openrouter key unusable: %w", errSkipped)
	}

	baseURL := strings.TrimRight(config.SanitizeASCII(req.Config.APIBaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultSystemConfig().APIBaseURL
	}
	model := config.SanitizeASCII(req.Config.PreferredModel)
	if model == "" {
		model = config.DefaultSystemConfig().PreferredModel
	}

	client := openaiclient.NewClient(
		openaioption.WithAPIKey(key),
		openaioption.WithBaseURL(baseURL+"/"),
		openaioption.WithHeader("HTTP-Referer", refererHeader),
		openaioption.WithHeader("X-Title", titleHeader),
		openaioption.WithMaxRetries(0),
		openaioption.WithRequestTimeout(callTimeout),
	)

	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openaiclient.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == RoleModel {
			messages = append(messages, openaiclient.AssistantMessage(m.Text))
			continue
		}
		messages = append(messages, openaiclient.UserMessage(m.Text))
	}

	completion, err := client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model:       openaiclient.ChatModel(model),
		Messages:    messages,
		Temperature: openaiclient.Float(sampleTemp),
	})
	if err != nil {
		return "", fmt.Errorf("openrouter chat completion: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return emptyReplyText, nil
	}
	return completion.Choices[0].Message.Content, nil
}
