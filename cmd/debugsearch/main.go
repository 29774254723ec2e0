package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hyperifyio/topicwise/internal/search"
)

// debugsearch prints the links SerpAPI returns for a query.
func main() {
	q := "AI in e-invoicing"
	if len(os.Args) > 1 {
		q = os.Args[1]
	}
	prov := &search.SerpAPI{
		BaseURL:    os.Getenv("SERPAPI_URL"),
		APIKey:     os.Getenv("SERPAPI_KEY"),
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		UserAgent:  "debugsearch/1.0",
	}
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	res, err := prov.Search(ctx, q, search.DefaultLimit)
	fmt.Println("err:", err)
	for i, r := range res {
		fmt.Printf("%d. %s — %s\n", i+1, r.Title, r.URL)
	}
}
