package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel 是未配置模型时使用的模型名。
const DefaultGeminiModel = "gemini-2.5-pro"

var (
	ErrAIUnavailable = errors.New("ai parser is not configured")
	ErrEmptyAIOutput = errors.New("ai returned no content")
	ErrIncomplete    = errors.New("ai result has no contact, experience, education or skills")
)

// AIParser 把简历文本解析为结构化数据。
type AIParser interface {
	Parse(ctx context.Context, text string) (Parsed, error)
}

// ContentGenerator 是 Gemini 调用的最小接口，便于测试替换。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiParser 使用 Gemini 生成结构化 JSON。
type GeminiParser struct {
	models ContentGenerator
	model  string
}

// NewGeminiParser 创建 Gemini 客户端；apiKey 为空时返回 ErrAIUnavailable。
func NewGeminiParser(ctx context.Context, apiKey, model string) (*GeminiParser, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAIUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewGeminiParserWith(client.Models, model), nil
}

// NewGeminiParserWith 使用给定的生成器构造解析器。
func NewGeminiParserWith(models ContentGenerator, model string) *GeminiParser {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiParser{models: models, model: model}
}

func (p *GeminiParser) Parse(ctx context.Context, text string) (Parsed, error) {
	if p == nil || p.models == nil {
		return Parsed{}, ErrAIUnavailable
	}

	resp, err := p.models.GenerateContent(ctx, p.model, genai.Text(buildPrompt(text)), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.3)),
		MaxOutputTokens: 4096,
	})
	if err != nil {
		return Parsed{}, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return Parsed{}, ErrEmptyAIOutput
	}
	out := CleanJSONBlock(resp.Text())
	if out == "" {
		return Parsed{}, ErrEmptyAIOutput
	}
	return decodeParsed(out)
}

func decodeParsed(doc string) (Parsed, error) {
	if !json.Valid([]byte(doc)) {
		return Parsed{}, errors.New("ai output is not valid json")
	}
	if err := ValidateParsedJSON(doc); err != nil {
		return Parsed{}, err
	}
	var parsed Parsed
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return Parsed{}, fmt.Errorf("decode ai output: %w", err)
	}
	parsed.Skills = trimAll(parsed.Skills)
	if parsed.Contact.isEmpty() {
		parsed.Contact = nil
	}
	if !parsed.Usable() {
		return Parsed{}, ErrIncomplete
	}
	return parsed, nil
}

// CleanJSONBlock 去掉模型输出外层的 Markdown 代码块。
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := strings.TrimSpace(text[:idx])
		if first == "" || (len(first) < 20 && !strings.ContainsAny(first, " {")) {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func buildPrompt(resumeText string) string {
	return `You are an expert resume parser. I will provide you with resume text, and you need to extract and structure all the information into a JSON format.

Please parse the following resume and extract the information into this exact JSON structure:
{
  "contact": {
    "name": "Full name",
    "email": "email address",
    "phone": "phone number",
    "location": "city, state/country",
    "website": "personal website or portfolio URL",
    "linkedin": "LinkedIn profile URL"
  },
  "summary": "Professional summary or objective (2-3 sentences max)",
  "experience": [
    {
      "company": "Company name",
      "position": "Job title",
      "startDate": "Month Year",
      "endDate": "Month Year or Present",
      "description": "Brief description of responsibilities and achievements"
    }
  ],
  "education": [
    {
      "institution": "University/School name",
      "degree": "Degree type (e.g., Bachelor of Science)",
      "field": "Field of study",
      "graduationDate": "Month Year"
    }
  ],
  "skills": ["skill1", "skill2", "skill3"],
  "projects": [
    {
      "name": "Project name",
      "description": "Brief description",
      "link": "GitHub or project URL"
    }
  ]
}

Important instructions:
1. Extract ONLY information that is present in the resume
2. Omit fields if the information is not available (use null or empty values)
3. For experience and education, include ALL entries found
4. Format dates consistently as "Month Year" (e.g., "January 2020")
5. Keep descriptions concise but informative
6. For skills, create a comprehensive list from all mentioned skills
7. Return ONLY valid JSON, no additional text or markdown

Resume to parse:
` + resumeText + `

Return the JSON object only, no markdown formatting, no code blocks.`
}
