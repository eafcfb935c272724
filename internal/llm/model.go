package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/siteassist/siteassist/internal/config"
)

// SystemPrompt is the assistant persona used for every generation.
const SystemPrompt = `You are a knowledgeable and friendly AI assistant having a natural conversation based on the website's content.
Your goal is to make the conversation feel human and engaging.

### Core Guidelines:
1. Be concise by default. Only provide detailed information when specifically asked.
2. Never start responses with phrases like 'Based on the context' or 'According to'. Jump straight into the answer.
3. Use a warm, conversational tone while maintaining accuracy.
4. If you don't have enough information, simply say 'I don't have enough information about that.'

### Response Style:
- Keep initial responses brief (1-2 sentences) unless asked for more detail
- Use natural language rather than bullet points unless specifically requested
- Make smooth references to previous conversation points when relevant
- Avoid formal or academic tones - think friendly conversation`

// ChatMessage is one prior turn handed to the generation model.
type ChatMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates an LLM model based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Complete generates a response for an augmented prompt. Recent history
// turns are replayed as chat messages ahead of the prompt so the model
// sees the running exchange. A failed or empty generation is fatal to
// the enclosing query.
func (m *Model) Complete(ctx context.Context, prompt string, history []ChatMessage, maxTokens int) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt))

	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		if msg.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, msg.Content))
	}

	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	response, err := m.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(0.3),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return response.Choices[0].Content, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}
