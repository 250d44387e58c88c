package diagnosis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GenerationOptions are the reproducibility and size knobs surfaced to the
// model on every call. Seed is fixed so identical recordings produce
// identical diagnoses.
type GenerationOptions struct {
	MaxOutputTokens int
	Temperature     float32
	TopP            float32
	Seed            int
}

// GeminiClient talks to the Gemini generateContent REST surface directly.
// Video goes inline as base64 mp4; all four safety categories are turned
// off because bug descriptions must come back unfiltered. With structured
// mode on, a response schema pins the output to three named string fields.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	structured bool
	opts       GenerationOptions
	httpClient *http.Client
}

func NewGemini(apiKey, model string, structured bool, opts GenerationOptions) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultGeminiBaseURL,
		structured: structured,
		opts:       opts,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// WithBaseURL points the client at a different API host. Used by tests.
func (c *GeminiClient) WithBaseURL(u string) *GeminiClient {
	c.baseURL = u
	return c
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens  int           `json:"maxOutputTokens"`
	Temperature      float32       `json:"temperature"`
	TopP             float32       `json:"topP"`
	Seed             int           `json:"seed"`
	ResponseMimeType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	SafetySettings    []geminiSafetySetting  `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func safetyOff() []geminiSafetySetting {
	categories := []string{
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_HARASSMENT",
	}
	settings := make([]geminiSafetySetting, 0, len(categories))
	for _, cat := range categories {
		settings = append(settings, geminiSafetySetting{Category: cat, Threshold: "OFF"})
	}
	return settings
}

func choicesSchema() *geminiSchema {
	str := geminiSchema{Type: "STRING"}
	return &geminiSchema{
		Type: "OBJECT",
		Properties: map[string]geminiSchema{
			"choice1": str,
			"choice2": str,
			"choice3": str,
		},
		Required: []string{"choice1", "choice2", "choice3"},
	}
}

func (c *GeminiClient) Diagnose(ctx context.Context, video []byte, narrative string) (Result, error) {
	prompt := SuggestionPrompt
	if narrative != "" {
		prompt = prompt + "\n\nWhat the user did, step by step:\n" + narrative
	}

	req := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MimeType: "video/mp4",
					Data:     base64.StdEncoding.EncodeToString(video),
				}},
				{Text: prompt},
			},
		}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: SystemInstruction}}},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: c.opts.MaxOutputTokens,
			Temperature:     c.opts.Temperature,
			TopP:            c.opts.TopP,
			Seed:            c.opts.Seed,
		},
		SafetySettings: safetyOff(),
	}
	if c.structured {
		req.GenerationConfig.ResponseMimeType = "application/json"
		req.GenerationConfig.ResponseSchema = choicesSchema()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("gemini call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read gemini response: %w", err)
	}

	var gr geminiResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return Result{}, fmt.Errorf("decode gemini response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if gr.Error != nil {
			msg = gr.Error.Message
		}
		return Result{}, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, msg)
	}
	if len(gr.Candidates) == 0 {
		return Result{}, fmt.Errorf("gemini returned no candidates")
	}

	var text string
	for _, part := range gr.Candidates[0].Content.Parts {
		text += part.Text
	}

	if c.structured {
		return parseStructured(text)
	}
	return Result{Choices: splitSuggestions(text)}, nil
}

func parseStructured(text string) (Result, error) {
	var out struct {
		Choice1 string `json:"choice1"`
		Choice2 string `json:"choice2"`
		Choice3 string `json:"choice3"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return Result{}, fmt.Errorf("model broke the response schema: %w", err)
	}
	var choices []string
	for _, c := range []string{out.Choice1, out.Choice2, out.Choice3} {
		if c != "" {
			choices = append(choices, c)
		}
	}
	return Result{Choices: choices}, nil
}
