package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DefaultHuggingFaceURL = "https://api-inference.huggingface.co"
	DefaultBARTModel      = "facebook/bart-large-cnn"
	DefaultMaxInputChars  = 1000
)

// ErrMissingToken is wrapped by the KindConfig error returned without a token.
var ErrMissingToken = errors.New("HUGGINGFACE_API_TOKEN is not configured")

// HuggingFace calls the hosted inference API for a summarization model.
type HuggingFace struct {
	BaseURL    string
	Model      string
	Token      string
	HTTPClient *http.Client
	// MaxInputChars caps the input in code points; zero means DefaultMaxInputChars.
	MaxInputChars int
	MinLength     int
	MaxLength     int
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length"`
}

type hfSummary struct {
	SummaryText *string `json:"summary_text"`
}

func (h *HuggingFace) Summarize(ctx context.Context, in Input) (string, error) {
	if trimmed(h.Token) == "" {
		return "", &Error{Kind: KindConfig, Err: ErrMissingToken}
	}
	base := strings.TrimRight(h.BaseURL, "/")
	if base == "" {
		base = DefaultHuggingFaceURL
	}
	model := h.Model
	if model == "" {
		model = DefaultBARTModel
	}
	maxChars := h.MaxInputChars
	if maxChars == 0 {
		maxChars = DefaultMaxInputChars
	}
	minLen, maxLen := h.MinLength, h.MaxLength
	if minLen == 0 {
		minLen = 60
	}
	if maxLen == 0 {
		maxLen = 300
	}

	payload, err := json.Marshal(hfRequest{
		Inputs:     Truncate(in.Text, maxChars),
		Parameters: hfParameters{MinLength: minLen, MaxLength: maxLen},
	})
	if err != nil {
		return "", &Error{Kind: KindParse, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/models/"+model, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+h.Token)
	req.Header.Set("Content-Type", "application/json")

	client := h.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("url", in.Link).Msg("summarization request rejected")
		return "", &Error{Kind: KindStatus, Status: resp.StatusCode, Body: string(body)}
	}

	var out []hfSummary
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &Error{Kind: KindParse, Err: err}
	}
	if len(out) == 0 {
		return "", &Error{Kind: KindParse, Err: errors.New("empty result list")}
	}
	if out[0].SummaryText == nil {
		return "", &Error{Kind: KindParse, Err: fmt.Errorf("missing summary_text in %s", truncateForLog(string(body)))}
	}
	return *out[0].SummaryText, nil
}

func truncateForLog(s string) string {
	const max = 200
	if len([]rune(s)) <= max {
		return s
	}
	return Truncate(s, max) + "…"
}
