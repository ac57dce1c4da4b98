package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider answers every POST on path with reply and keeps the last body.
type fakeProvider struct {
	path  string
	reply string
	body  map[string]any
}

func (f *fakeProvider) serve(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, f.path, r.URL.Path)

		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		f.body = map[string]any{}
		assert.NoError(t, json.Unmarshal(data, &f.body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, f.reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_Generate(t *testing.T) {
	fake := &fakeProvider{
		path:  "/chat/completions",
		reply: `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  repair\n"},"finish_reason":"stop"}]}`,
	}
	srv := fake.serve(t)

	c := NewOpenAIClient("k", "gpt-4o-mini", srv.URL)
	got, err := c.Generate(context.Background(), "classify: leaking pipe")
	require.NoError(t, err)
	assert.Equal(t, "repair", got)

	assert.Equal(t, "gpt-4o-mini", fake.body["model"])
	assert.EqualValues(t, maxReplyTokens, fake.body["max_tokens"])
	assert.Equal(t, []any{"\n"}, fake.body["stop"])
	msgs, ok := fake.body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "classify: leaking pipe", msgs[0].(map[string]any)["content"])
}

func TestOpenAIClient_EmptyReply(t *testing.T) {
	for name, reply := range map[string]string{
		"no choices": `{"id":"c1","choices":[]}`,
		"blank":      `{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":" \n "}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := (&fakeProvider{path: "/chat/completions", reply: reply}).serve(t)

			_, err := NewOpenAIClient("k", "gpt-4o-mini", srv.URL).Generate(context.Background(), "p")
			assert.ErrorIs(t, err, ErrEmptyReply)
			assert.Contains(t, err.Error(), "openai")
		})
	}
}

func TestClaudeClient_Generate(t *testing.T) {
	fake := &fakeProvider{
		path:  "/messages",
		reply: `{"id":"m1","type":"message","role":"assistant","model":"claude-3-haiku","content":[{"type":"text","text":""},{"type":"text","text":"cleaning"}],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":1}}`,
	}
	srv := fake.serve(t)

	c := NewClaudeClient("k", "claude-3-haiku", srv.URL)
	got, err := c.Generate(context.Background(), "classify: dusty flat")
	require.NoError(t, err)
	assert.Equal(t, "cleaning", got)

	assert.Equal(t, "claude-3-haiku", fake.body["model"])
	assert.EqualValues(t, maxReplyTokens, fake.body["max_tokens"])
	assert.EqualValues(t, 0, fake.body["temperature"])
}

func TestClaudeClient_EmptyReply(t *testing.T) {
	srv := (&fakeProvider{
		path:  "/messages",
		reply: `{"id":"m1","type":"message","role":"assistant","content":[],"stop_reason":"max_tokens","usage":{"input_tokens":5,"output_tokens":0}}`,
	}).serve(t)

	_, err := NewClaudeClient("k", "claude-3-haiku", srv.URL).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestGeminiTexts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}, genai.Text(" senior_support ")}}},
		},
	}

	got, err := firstReply("gemini", geminiTexts(resp)...)
	require.NoError(t, err)
	assert.Equal(t, "senior_support", got)

	_, err = firstReply("gemini", geminiTexts(&genai.GenerateContentResponse{})...)
	assert.ErrorIs(t, err, ErrEmptyReply)
}
