package search

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/haeorum-lab/sosik-monitor/internal/domain"
)

// Selectors for the search result markup. Each result lives in a
// ".news_area" container; title and media are mandatory, the byline is not.
const (
	selNewsItem   = ".news_area"
	selTitle      = ".news_tit"
	selMedia      = ".info_group a"
	selJournalist = ".info_group span.journalist"
)

// Extract parses a search results page into articles tagged with the keyword
// that produced them. Containers missing a title or media name are skipped
// individually; a page with no matches yields an empty slice and no error.
func Extract(html, keyword string) ([]domain.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var articles []domain.Article
	doc.Find(selNewsItem).Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(selTitle).First().Text())
		if title == "" {
			return
		}

		media := strings.TrimSpace(item.Find(selMedia).First().Text())
		if media == "" {
			return
		}

		journalist := strings.TrimSpace(item.Find(selJournalist).First().Text())
		if journalist == "" {
			journalist = domain.JournalistUnknown
		}

		articles = append(articles, domain.Article{
			Title:      title,
			Media:      media,
			Journalist: journalist,
			Keyword:    keyword,
		})
	})

	return articles, nil
}
