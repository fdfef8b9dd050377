package yelp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultChatBaseURL = "https://api.yelp.com/ai/chat/v2"

// AIClient calls the Yelp AI chat API. Responses are free text that often
// embeds a JSON block; extraction and parsing are separate, non-fatal steps.
type AIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewAIClient(apiKey string, timeout time.Duration) *AIClient {
	return &AIClient{
		apiKey:  apiKey,
		baseURL: defaultChatBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Query  string `json:"query"`
	ChatID string `json:"chat_id,omitempty"`
}

// ChatResponse is the provider's reply. ChatID threads a conversation.
type ChatResponse struct {
	ChatID   string `json:"chat_id"`
	Response struct {
		Text string `json:"text"`
	} `json:"response"`
}

// Chat sends one query. Pass an empty chatID to start a new conversation.
func (c *AIClient) Chat(ctx context.Context, query, chatID string) (*ChatResponse, error) {
	body, err := json.Marshal(chatRequest{Query: query, ChatID: chatID})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &out, nil
}

// ExtractJSONBlock returns the span from the first "{" to the last "}" in
// text. Chat replies wrap their JSON in prose, so this is deliberately
// permissive; the caller finds out whether the block parses.
func ExtractJSONBlock(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseError reports a chat reply whose text carried no parseable JSON. The
// raw text is preserved so callers can surface it instead.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string { return "no parseable JSON block in chat response" }

// JSONFromResponse extracts and parses the embedded JSON object from a chat
// reply. It returns the raw text alongside either result, and a *ParseError
// when the text holds no valid block.
func JSONFromResponse(resp *ChatResponse) (map[string]any, string, error) {
	text := ""
	if resp != nil {
		text = resp.Response.Text
	}
	if text == "" {
		return nil, "", &ParseError{Raw: ""}
	}
	block, ok := ExtractJSONBlock(text)
	if !ok {
		return nil, text, &ParseError{Raw: text}
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return nil, text, &ParseError{Raw: text}
	}
	return parsed, text, nil
}
