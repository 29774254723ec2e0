// Command topicwise-stub serves offline stand-ins for SerpAPI, the Hugging
// Face inference API and an OpenAI-compatible chat endpoint, plus canned
// article pages, so the live variant can run without network access.
//
//	topicwise-stub &
//	SERPAPI_URL=http://localhost:8081 SERPAPI_KEY=x \
//	HUGGINGFACE_URL=http://localhost:8081 HUGGINGFACE_API_TOKEN=x \
//	topicwise -variant live
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type article struct {
	Slug  string
	Title string
	Body  []string
}

var articles = []article{
	{
		Slug:  "ai-e-invoicing",
		Title: "How AI and automation are transforming e-invoicing",
		Body: []string{
			"Finance teams are using machine learning to validate invoices in real time, catching duplicate and fraudulent submissions before payment.",
			"Predictive models forecast when customers will pay, giving treasury departments better visibility of cash flow.",
		},
	},
	{
		Slug:  "mandates",
		Title: "E-invoicing mandates across Europe",
		Body: []string{
			"Governments are rolling out mandatory electronic invoicing for business-to-government and business-to-business trade.",
			"Companies are adopting platforms that adapt to each jurisdiction's schema and submission rules automatically.",
		},
	},
	{
		Slug:  "accounting-data",
		Title: "AI in accounting: better data, new opportunities",
		Body: []string{
			"Automated extraction and matching raise data quality in accounting systems, which improves invoice accuracy.",
			"Mid-sized businesses benefit from pre-trained models without building in-house data science teams.",
		},
	},
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	base := os.Getenv("PUBLIC_URL")
	if strings.TrimSpace(base) == "" {
		base = "http://localhost" + addr
	}
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if strings.TrimSpace(q.Get("api_key")) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid API key."})
			return
		}
		results := make([]map[string]string, 0, len(articles))
		for _, a := range articles {
			results = append(results, map[string]string{
				"title":   a.Title,
				"link":    base + "/articles/" + a.Slug,
				"snippet": a.Body[0],
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"search_parameters": map[string]string{"q": q.Get("q"), "engine": q.Get("engine")},
			"organic_results":   results,
		})
	})
	mux.HandleFunc("/articles/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimPrefix(r.URL.Path, "/articles/")
		for _, a := range articles {
			if a.Slug != slug {
				continue
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, "<!doctype html><html><head><title>%s</title></head><body><article><h1>%s</h1>", a.Title, a.Title)
			for _, p := range a.Body {
				fmt.Fprintf(w, "<p>%s</p>", p)
			}
			fmt.Fprint(w, "</article></body></html>")
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/models/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authorization header is correct, but the token seems invalid"})
			return
		}
		var req struct {
			Inputs string `json:"inputs"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, []map[string]string{{"summary_text": firstSentence(req.Inputs)}})
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		user := ""
		if len(req.Messages) >= 2 {
			user = req.Messages[1].Content
		}
		content := "- " + firstSentence(user) + "\n- Stub summary generated offline."
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      "chatcmpl-stub",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	})

	log.Info().Str("addr", addr).Str("public", base).Msg("stub listening")
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("stub server")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// firstSentence returns the text up to the first full stop, skipping any
// heading lines.
func firstSentence(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, ":") || strings.HasPrefix(line, "Topic") || strings.HasPrefix(line, "Source") {
			continue
		}
		if i := strings.Index(line, ". "); i > 0 {
			return line[:i+1]
		}
		return line
	}
	return "No text provided."
}
