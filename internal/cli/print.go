package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-news-reader/internal/domain"
	"github.com/samvad-hq/samvad-news-reader/internal/feed"
)

func printRows(w io.Writer, rows []*feed.ViewModel) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No articles.")
		return
	}
	for i, vm := range rows {
		fmt.Fprintf(w, "%2d. %s\n", i+1, vm.Title)
		fmt.Fprintf(w, "    %s\n", vm.Subtitle)
		if vm.ArticleURL != "" {
			fmt.Fprintf(w, "    %s\n", vm.ArticleURL)
		}
	}
}

func printArticles(w io.Writer, articles []domain.Article, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(articles)
	}
	list := feed.NewList(nil)
	list.Replace(articles)
	printRows(w, list.Snapshot().Rows)
	return nil
}

func printResult(w io.Writer, res domain.FetchResult, asJSON bool) error {
	if !res.OK() {
		return res.Err()
	}
	return printArticles(w, res.Articles(), asJSON)
}
