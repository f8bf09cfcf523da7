// Package parser turns resume PDFs into candidate profiles via an AI
// extraction call. The core treats it as an opaque collaborator; only
// the terminal failure is recorded on the submission.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"jobhunter/internal/domain/profile"
)

// ErrUnreadablePDF covers scanned or image-only resumes: fewer than
// MinTextLength characters of extractable text.
var ErrUnreadablePDF = errors.New("could not read the PDF: it looks scanned or image-only")

// MinTextLength is the minimum extractable text for a parseable resume.
const MinTextLength = 50

type Parser interface {
	Parse(ctx context.Context, pdf []byte) (profile.Profile, error)
}

// TextExtractor pulls plain text out of PDF bytes. Injected so tests
// run without real PDFs.
type TextExtractor func(pdf []byte) (string, error)

const systemPrompt = `You extract a structured candidate profile from resume text.
Respond with a single JSON object:
{"skills":[{"name":"...","tier":"core|strong|peripheral"}],
 "titles":["..."],"keywords":["..."],
 "experience":{"years":0,"level":"intern|junior|mid|senior"}}
Tier "core" means the skill dominates the resume, "strong" appears in
multiple roles, "peripheral" is mentioned once. Keep lists short and
deduplicated. No prose, JSON only.`

// OpenAIParser implements Parser with a chat-completion extraction.
type OpenAIParser struct {
	client  *openai.Client
	model   string
	extract TextExtractor
}

func NewOpenAIParser(apiKey, model string, extract TextExtractor) *OpenAIParser {
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4oMini
	}
	if extract == nil {
		extract = ExtractText
	}
	return &OpenAIParser{
		client:  openai.NewClient(apiKey),
		model:   model,
		extract: extract,
	}
}

type parsedProfile struct {
	Skills []struct {
		Name string `json:"name"`
		Tier string `json:"tier"`
	} `json:"skills"`
	Titles     []string `json:"titles"`
	Keywords   []string `json:"keywords"`
	Experience *struct {
		Years float64 `json:"years"`
		Level string  `json:"level"`
	} `json:"experience"`
}

func (p *OpenAIParser) Parse(ctx context.Context, pdf []byte) (profile.Profile, error) {
	text, err := p.extract(pdf)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("extract resume text: %w", err)
	}
	if len(strings.TrimSpace(text)) < MinTextLength {
		return profile.Profile{}, ErrUnreadablePDF
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return profile.Profile{}, fmt.Errorf("resume extraction call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return profile.Profile{}, fmt.Errorf("resume extraction call: empty response")
	}

	var parsed parsedProfile
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return profile.Profile{}, fmt.Errorf("decode extracted profile: %w", err)
	}

	out := profile.Profile{
		Titles:   parsed.Titles,
		Keywords: parsed.Keywords,
	}
	for _, s := range parsed.Skills {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		out.Skills = append(out.Skills, profile.Skill{
			Name: s.Name,
			Tier: profile.ParseTier(s.Tier),
		})
	}
	if parsed.Experience != nil {
		out.Experience = &profile.Experience{
			Years: parsed.Experience.Years,
			Level: profile.ExperienceLevel(parsed.Experience.Level),
		}
	}
	return out, nil
}
