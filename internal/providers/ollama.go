package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Generator interface for Ollama and LM Studio
// (OpenAI-compatible API). No API key is required by default.
type Ollama struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates a new Ollama provider.
func NewOllama(model string) (*Ollama, error) {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	// Normalize URL: strip trailing /, /v1, /v1/chat/completions
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	// Optional API key for servers that require it (e.g., LM Studio)
	apiKey := os.Getenv("COMET_OLLAMA_API_KEY")

	return &Ollama{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 300 * time.Second},
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Generate(ctx context.Context, req Request) (Response, error) {
	body := buildChatRequest(o.model, req)
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return Response{}, classifyTransport(o.Name(), err)
	}
	defer httpResp.Body.Close()

	return parseChatResponse(o.Name(), httpResp)
}

// ModelInfo describes one locally installed model.
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ListModels returns the locally installed Ollama models.
func (o *Ollama) ListModels(ctx context.Context) ([]ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(o.Name(), err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Provider: o.Name(), Message: fmt.Sprintf("reading response: %v", err)}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: KindInvalidResponse, Provider: o.Name(), Message: fmt.Sprintf("status %d: %s", httpResp.StatusCode, truncate(respBody, 200))}
	}

	var tags tagsResponse
	if err := json.Unmarshal(respBody, &tags); err != nil {
		return nil, &Error{Kind: KindInvalidResponse, Provider: o.Name(), Message: fmt.Sprintf("parsing response: %v", err)}
	}
	return tags.Models, nil
}

// preferredModels lists models suited to fast local code analysis, in
// preference order.
var preferredModels = []string{
	"gemma3:1b",
	"gemma2:2b",
	"llama3.2:1b",
	"llama3.2:3b",
	"llama3.1:8b",
	"qwen2.5-coder:1.5b",
	"qwen2.5-coder:3b",
	"qwen2.5-coder:7b",
	"codellama",
	"mistral",
	"phi3",
}

// SuggestModel picks the best installed model from the preference list,
// falling back to the first installed model. Empty when none installed.
func SuggestModel(models []ModelInfo) string {
	for _, pref := range preferredModels {
		for _, m := range models {
			if strings.HasPrefix(m.Name, pref) {
				return m.Name
			}
		}
	}
	if len(models) > 0 {
		return models[0].Name
	}
	return ""
}
