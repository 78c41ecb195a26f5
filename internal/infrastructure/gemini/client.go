package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// AboutInput is what the model knows about the user.
type AboutInput struct {
	Name      string
	Interests []string
	Horoscope string
	Zodiac    string
}

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.SetTemperature(0.8)

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger.Named("gemini"),
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// SuggestAbout asks the model for short "about me" texts. On any model
// failure the deterministic suggestions are returned instead.
func (c *GeminiClient) SuggestAbout(ctx context.Context, in AboutInput) ([]string, error) {
	prompt := fmt.Sprintf(`
		Write 3 short "about me" texts for a personal profile.
		Name: %s
		Interests: %s
		Horoscope: %s
		Chinese zodiac: %s

		Each text is 1-2 friendly sentences in the first person.
		Output: JSON array of strings. Example: ["I love...", "Hi, I'm..."]
	`, in.Name, strings.Join(in.Interests, ", "), in.Horoscope, in.Zodiac)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Warn("gemini unavailable, using fallback suggestions", zap.Error(err))
		return FallbackAbout(in), nil
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return FallbackAbout(in), nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	suggestions := parseSuggestions(sb.String())
	if len(suggestions) == 0 {
		return FallbackAbout(in), nil
	}
	return suggestions, nil
}

func parseSuggestions(text string) []string {
	text = strings.TrimSpace(text)
	// Clean up markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var out []string
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return compact(out)
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "[") && !strings.HasSuffix(line, "]") {
			out = append(out, strings.Trim(line, `",`))
		}
	}
	return compact(out)
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FallbackAbout builds suggestions without the model.
func FallbackAbout(in AboutInput) []string {
	name := in.Name
	if name == "" {
		name = "there"
	}

	var out []string
	if len(in.Interests) > 0 {
		out = append(out, fmt.Sprintf("Hi, I'm %s. I'm into %s.", name, strings.Join(in.Interests, ", ")))
	} else {
		out = append(out, fmt.Sprintf("Hi, I'm %s.", name))
	}
	if in.Horoscope != "" && in.Zodiac != "" {
		out = append(out, fmt.Sprintf("A %s born in the year of the %s, always up for something new.", in.Horoscope, in.Zodiac))
	}
	out = append(out, "Ask me about my favourite things and I'll tell you a story.")
	return out
}
