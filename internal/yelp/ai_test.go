package yelp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlock(t *testing.T) {
	block, ok := ExtractJSONBlock(`Here are my thoughts: {"score": 8.5, "feedback": "good"} hope that helps!`)
	require.True(t, ok)
	assert.Equal(t, `{"score": 8.5, "feedback": "good"}`, block)

	_, ok = ExtractJSONBlock("no json here at all")
	assert.False(t, ok)

	_, ok = ExtractJSONBlock("} backwards {")
	assert.False(t, ok)

	// Nested braces: the span runs to the last closing brace.
	block, ok = ExtractJSONBlock(`{"outer": {"inner": 1}}`)
	require.True(t, ok)
	assert.Equal(t, `{"outer": {"inner": 1}}`, block)
}

func TestJSONFromResponse(t *testing.T) {
	resp := &ChatResponse{}
	resp.Response.Text = `Sure! {"score": 7} Let me know if you need more.`

	parsed, raw, err := JSONFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, resp.Response.Text, raw)
	assert.Equal(t, float64(7), parsed["score"])
}

func TestJSONFromResponseParseFailure(t *testing.T) {
	resp := &ChatResponse{}
	resp.Response.Text = "I could not produce a structured answer, sorry."

	parsed, raw, err := JSONFromResponse(resp)
	assert.Nil(t, parsed)
	assert.Equal(t, resp.Response.Text, raw)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, resp.Response.Text, pe.Raw)
}

func TestJSONFromResponseMalformedBlock(t *testing.T) {
	resp := &ChatResponse{}
	resp.Response.Text = `{"score": not valid}`

	parsed, raw, err := JSONFromResponse(resp)
	assert.Nil(t, parsed)
	assert.Equal(t, resp.Response.Text, raw)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestChat(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chat_id": "abc", "response": {"text": "hello"}}`))
	}))
	defer srv.Close()

	c := NewAIClient("test-key", 5*time.Second)
	c.baseURL = srv.URL

	resp, err := c.Chat(context.Background(), "rate my reply", "prev-chat")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "rate my reply", gotBody["query"])
	assert.Equal(t, "prev-chat", gotBody["chat_id"])
	assert.Equal(t, "abc", resp.ChatID)
	assert.Equal(t, "hello", resp.Response.Text)
}

func TestChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewAIClient("test-key", 5*time.Second)
	c.baseURL = srv.URL

	_, err := c.Chat(context.Background(), "hi", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "quota")
}
