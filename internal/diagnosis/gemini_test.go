package diagnosis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testOptions() GenerationOptions {
	return GenerationOptions{MaxOutputTokens: 2000, Temperature: 1, TopP: 1, Seed: 0}
}

func geminiText(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGemini_RequestShape(t *testing.T) {
	var captured geminiRequest
	var gotPath, gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("Request body not JSON: %v", err)
		}
		_, _ = io.WriteString(w, geminiText("1. something broke"))
	}))
	defer srv.Close()

	c := NewGemini("test-key", "gemini-test", false, testOptions()).WithBaseURL(srv.URL)
	video := []byte("mp4 bytes")
	if _, err := c.Diagnose(context.Background(), video, "User clicked the mouse button."); err != nil {
		t.Fatalf("Diagnose failed: %v", err)
	}

	if gotPath != "/models/gemini-test:generateContent" {
		t.Errorf("Unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("API key header missing, got %q", gotKey)
	}

	if len(captured.SafetySettings) != 4 {
		t.Fatalf("Expected 4 safety settings, got %d", len(captured.SafetySettings))
	}
	for _, s := range captured.SafetySettings {
		if s.Threshold != "OFF" {
			t.Errorf("Safety category %s not disabled: %s", s.Category, s.Threshold)
		}
	}

	gc := captured.GenerationConfig
	if gc.MaxOutputTokens != 2000 || gc.Temperature != 1 || gc.TopP != 1 || gc.Seed != 0 {
		t.Errorf("Unexpected generation config: %+v", gc)
	}
	if gc.ResponseSchema != nil {
		t.Error("Freeform mode must not send a response schema")
	}

	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != SystemInstruction {
		t.Error("System instruction missing")
	}

	parts := captured.Contents[0].Parts
	if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "video/mp4" {
		t.Fatalf("Expected inline video part, got %+v", parts[0])
	}
	if parts[0].InlineData.Data != base64.StdEncoding.EncodeToString(video) {
		t.Error("Video bytes not base64 encoded correctly")
	}
	if !strings.Contains(parts[1].Text, SuggestionPrompt) {
		t.Error("Suggestion prompt missing from text part")
	}
	if !strings.Contains(parts[1].Text, "User clicked the mouse button.") {
		t.Error("Narrative missing from text part")
	}
}

func TestGemini_StructuredMode(t *testing.T) {
	var captured geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_, _ = io.WriteString(w, geminiText(`{"choice1":"off-by-one","choice2":"","choice3":""}`))
	}))
	defer srv.Close()

	c := NewGemini("k", "m", true, testOptions()).WithBaseURL(srv.URL)
	res, err := c.Diagnose(context.Background(), []byte("v"), "")
	if err != nil {
		t.Fatalf("Diagnose failed: %v", err)
	}

	if len(res.Choices) != 1 || res.Choices[0] != "off-by-one" {
		t.Errorf("Expected empty choices dropped, got %v", res.Choices)
	}

	gc := captured.GenerationConfig
	if gc.ResponseMimeType != "application/json" {
		t.Errorf("Expected JSON response mime type, got %q", gc.ResponseMimeType)
	}
	if gc.ResponseSchema == nil {
		t.Fatal("Expected a response schema")
	}
	if len(gc.ResponseSchema.Required) != 3 {
		t.Errorf("Expected all three choices required, got %v", gc.ResponseSchema.Required)
	}
	for _, name := range []string{"choice1", "choice2", "choice3"} {
		if _, ok := gc.ResponseSchema.Properties[name]; !ok {
			t.Errorf("Schema missing property %s", name)
		}
	}
}

func TestGemini_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"quota exhausted"}}`)
	}))
	defer srv.Close()

	c := NewGemini("k", "m", false, testOptions()).WithBaseURL(srv.URL)
	_, err := c.Diagnose(context.Background(), []byte("v"), "")
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Errorf("Expected the API message surfaced, got %v", err)
	}
}

func TestGemini_BrokenSchemaOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, geminiText("plain prose, not the schema"))
	}))
	defer srv.Close()

	c := NewGemini("k", "m", true, testOptions()).WithBaseURL(srv.URL)
	if _, err := c.Diagnose(context.Background(), []byte("v"), ""); err == nil {
		t.Fatal("Expected schema violation to error")
	}
}

func TestSplitSuggestions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"numbered list", "1. first\n2. second\n3. third", []string{"first", "second", "third"}},
		{"dashes", "- first\n- second", []string{"first", "second"}},
		{"more than three", "1. a\n2. b\n3. c\n4. d", []string{"a", "b", "c"}},
		{"single blob", "everything went wrong at once", []string{"everything went wrong at once"}},
		{"blank lines", "first\n\n\nsecond\n", []string{"first", "second"}},
		{"empty", "   \n  ", nil},
	}
	for _, c := range cases {
		got := splitSuggestions(c.in)
		if len(got) != len(c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
				break
			}
		}
	}
}
