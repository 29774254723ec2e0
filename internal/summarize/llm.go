package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/topicwise/internal/cache"
)

// ChatClient is the subset of *openai.Client used for summaries. Any
// OpenAI-compatible backend can be adapted to it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ErrNoChatClient is wrapped by the KindConfig error of an unconfigured LLM.
var ErrNoChatClient = errors.New("LLM backend is not configured")

const llmSystemPrompt = "You summarize articles for a research brief. Use only the provided text. Answer with 3 to 5 Markdown bullet points and nothing else."

// LLM summarizes with a chat completion model.
type LLM struct {
	Client ChatClient
	Model  string
	// MaxInputChars caps the article text in code points; zero means DefaultMaxInputChars.
	MaxInputChars int
	Cache         *cache.SummaryCache
}

func (l *LLM) Summarize(ctx context.Context, in Input) (string, error) {
	if l.Client == nil || trimmed(l.Model) == "" {
		return "", &Error{Kind: KindConfig, Err: ErrNoChatClient}
	}
	maxChars := l.MaxInputChars
	if maxChars == 0 {
		maxChars = DefaultMaxInputChars
	}
	user := buildUserMessage(in.Topic, in.Link, Truncate(in.Text, maxChars))

	key := cache.KeyFrom(l.Model, llmSystemPrompt+"\n\n"+user)
	if l.Cache != nil {
		if raw, ok, _ := l.Cache.Get(ctx, key); ok {
			var out struct {
				Summary string `json:"summary"`
			}
			if err := json.Unmarshal(raw, &out); err == nil && trimmed(out.Summary) != "" {
				return out.Summary, nil
			}
		}
	}

	resp, err := l.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &Error{Kind: KindStatus, Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &Error{Kind: KindStatus, Status: reqErr.HTTPStatusCode, Body: reqErr.Error()}
		}
		return "", &Error{Kind: KindTransport, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindParse, Err: errors.New("no choices in completion")}
	}
	out := trimmed(resp.Choices[0].Message.Content)
	if out == "" {
		return "", &Error{Kind: KindParse, Err: errors.New("empty completion")}
	}
	if l.Cache != nil {
		payload, _ := json.Marshal(map[string]string{"summary": out})
		_ = l.Cache.Save(ctx, key, payload)
	}
	return out, nil
}

func buildUserMessage(topic, link, text string) string {
	var sb strings.Builder
	sb.WriteString("Topic: ")
	sb.WriteString(topic)
	if link != "" {
		sb.WriteString("\nSource: ")
		sb.WriteString(link)
	}
	sb.WriteString("\n\nSummarize what this article says about the topic.\n\nArticle:\n")
	sb.WriteString(text)
	return sb.String()
}
