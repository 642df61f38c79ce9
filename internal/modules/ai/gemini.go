package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jingxin-guardian/core/internal/config"
	"google.golang.org/genai"
)

// geminiProvider is the fallback path: the native Gemini SDK keyed by an
// environment-only credential. A fresh client is built per call so credential
// rotation takes effect without a restart.
type geminiProvider struct {
	apiKey func() string
}

func newGeminiProvider() geminiProvider {
	return geminiProvider{apiKey: func() string { return os.Getenv(config.EnvGeminiKey) }}
}

func (geminiProvider) Name() string { return "gemini" }

// geminiRole maps a conversation role onto the SDK's typed role. The wire
// names happen to match, but the SDK wants its own type.
func geminiRole(role string) genai.Role {
	if role == RoleModel {
		return genai.Role(genai.RoleModel)
	}
	return genai.Role(genai.RoleUser)
}

func (p geminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	key := strings.TrimSpace(p.apiKey())
	if key == "" {
		return "", errMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	// The preferred model only transfers when it is a bare Gemini id; ids
	// with a provider prefix ("vendor/model") belong to the primary path.
	model := config.SanitizeASCII(req.Config.PreferredModel)
	if model == "" || strings.Contains(model, "/") {
		model = config.DefaultFallbackModel
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		contents = append(contents, genai.NewContentFromText(m.Text, geminiRole(m.Role)))
	}

	genCfg := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](sampleTemp)}
	if strings.TrimSpace(req.System) != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.Role(genai.RoleUser))
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return emptyGeminiText, nil
	}
	return text, nil
}
