package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter implements the Generator interface for the OpenRouter API
// (OpenAI-compatible chat completions).
type OpenRouter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenRouter creates a new OpenRouter provider.
func NewOpenRouter(model string) (*OpenRouter, error) {
	key := os.Getenv("OPENROUTER_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
	}
	return &OpenRouter{
		apiKey:  key,
		model:   model,
		baseURL: defaultOpenRouterURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (o *OpenRouter) Name() string { return "openrouter" }

func (o *OpenRouter) Generate(ctx context.Context, req Request) (Response, error) {
	body := buildChatRequest(o.model, req)
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return Response{}, classifyTransport(o.Name(), err)
	}
	defer httpResp.Body.Close()

	return parseChatResponse(o.Name(), httpResp)
}

// Shared OpenAI-compatible wire format, used by OpenRouter and Ollama.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func buildChatRequest(model string, req Request) chatRequest {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body := chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}
	return body
}

// parseChatResponse maps status codes and body shape to the gateway error
// taxonomy, then extracts the completion text.
func parseChatResponse(provider string, httpResp *http.Response) (Response, error) {
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, &Error{Kind: KindUnreachable, Provider: provider, Message: fmt.Sprintf("reading response: %v", err)}
	}

	if e := errorFromStatus(provider, httpResp, respBody); e != nil {
		return Response{}, e
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, &Error{Kind: KindInvalidResponse, Provider: provider, Message: fmt.Sprintf("parsing response: %v", err)}
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return Response{}, &Error{Kind: KindInvalidResponse, Provider: provider, Message: "empty completion in response"}
	}

	return Response{
		Content:    result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}

// errorFromStatus converts a non-200 status into a typed error, or nil for
// success.
func errorFromStatus(provider string, httpResp *http.Response, body []byte) *Error {
	switch {
	case httpResp.StatusCode == http.StatusOK:
		return nil
	case httpResp.StatusCode == http.StatusTooManyRequests:
		e := &Error{Kind: KindRateLimited, Provider: provider, Message: "rate limited"}
		if ra := httpResp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				e.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return e
	case httpResp.StatusCode == http.StatusRequestTimeout || httpResp.StatusCode == http.StatusGatewayTimeout:
		return &Error{Kind: KindTimeout, Provider: provider, Message: fmt.Sprintf("status %d", httpResp.StatusCode)}
	case httpResp.StatusCode >= 500:
		return &Error{Kind: KindUnreachable, Provider: provider, Message: fmt.Sprintf("status %d: %s", httpResp.StatusCode, truncate(body, 200))}
	default:
		// 4xx including auth rejections: the provider answered and a
		// retry with the same request cannot succeed.
		return &Error{Kind: KindInvalidResponse, Provider: provider, Message: fmt.Sprintf("status %d: %s", httpResp.StatusCode, truncate(body, 200))}
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
