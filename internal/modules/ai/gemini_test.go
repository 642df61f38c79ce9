package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestGeminiRoleMapping(t *testing.T) {
	assert.Equal(t, genai.Role(genai.RoleUser), geminiRole(RoleUser))
	assert.Equal(t, genai.Role(genai.RoleModel), geminiRole(RoleModel))
	assert.Equal(t, genai.Role(genai.RoleUser), geminiRole("unknown"), "anything unrecognized speaks as the user")
}

func TestGeminiProviderMissingCredential(t *testing.T) {
	p := geminiProvider{apiKey: func() string { return "   " }}

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Text: "你好"}},
	})
	assert.ErrorIs(t, err, errMissingCredential)
}
