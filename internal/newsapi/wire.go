package newsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-reader/internal/domain"
)

// apiResponse mirrors the upstream envelope. Articles is a pointer so a
// missing array can be told apart from an empty one.
type apiResponse struct {
	Status       string        `json:"status"`
	Code         string        `json:"code"`
	Message      string        `json:"message"`
	TotalResults int           `json:"totalResults"`
	Articles     *[]apiArticle `json:"articles"`
}

type apiSource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type apiArticle struct {
	Source      apiSource `json:"source"`
	Author      *string   `json:"author"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	URLToImage  *string   `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
}

var errMissingArticles = errors.New(`response has no "articles" array`)

// decodeArticles turns a response body into domain articles, keeping upstream order.
func decodeArticles(body []byte) ([]domain.Article, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Articles == nil {
		return nil, errMissingArticles
	}

	raw := *resp.Articles
	articles := make([]domain.Article, 0, len(raw))
	for i, a := range raw {
		if a.Title == nil {
			return nil, fmt.Errorf("articles[%d]: title is missing", i)
		}
		articles = append(articles, domain.Article{
			Title:       *a.Title,
			Description: deref(a.Description),
			URL:         deref(a.URL),
			ImageURL:    deref(a.URLToImage),
			Source:      strings.TrimSpace(a.Source.Name),
			Author:      deref(a.Author),
			PublishedAt: parsePublishedAt(a.PublishedAt),
		})
	}
	return articles, nil
}

// upstreamError extracts the error message from a non-2xx body when present.
func upstreamError(body []byte) string {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	if resp.Status != "error" {
		return ""
	}
	switch {
	case resp.Code != "" && resp.Message != "":
		return resp.Code + ": " + resp.Message
	case resp.Message != "":
		return resp.Message
	default:
		return resp.Code
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func parsePublishedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
