package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/haeorum-lab/sosik-monitor/internal/domain"
	"github.com/haeorum-lab/sosik-monitor/internal/logger"
)

// Categories is the closed set the model is asked to choose from. The model
// is instructed, not constrained: replies outside the set are kept verbatim.
var Categories = []string{
	"CIP",
	"Govt policy",
	"Local govt policy",
	"Stakeholders",
	"RE Industry",
	"Impact on",
}

const promptTemplate = `Analyze this news article title and provide:
1. A brief synopsis (2-3 sentences)
2. A category from these options: %s

Title: %s

Format response as:
Category: [category]
Synopsis: [synopsis]`

// BuildPrompt returns the fixed instruction for one title.
func BuildPrompt(title string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(Categories, ", "), title)
}

// Classifier turns article titles into (category, synopsis) pairs. Transport
// failures and malformed replies both degrade to sentinel values; no error
// crosses this boundary.
type Classifier struct {
	completer Completer
	cache     *ReplyCache
	log       logger.Logger
}

// NewClassifier builds a Classifier. The cache may be nil to classify every
// title through the provider.
func NewClassifier(completer Completer, cache *ReplyCache, log logger.Logger) *Classifier {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Classifier{completer: completer, cache: cache, log: log}
}

// Classify produces the classified record for one article. One provider
// round trip per call; a cache hit skips the provider entirely.
func (c *Classifier) Classify(ctx context.Context, art domain.Article) domain.ClassifiedArticle {
	out := domain.ClassifiedArticle{
		Category:   domain.CategoryUnknown,
		Media:      art.Media,
		Journalist: art.Journalist,
		Synopsis:   domain.SynopsisError,
	}

	if category, synopsis, ok := c.cache.Get(art.Title); ok {
		out.Category = category
		out.Synopsis = synopsis
		return out
	}

	reply, err := c.completer.Complete(ctx, BuildPrompt(art.Title))
	if err != nil {
		c.log.WarnObj("model call failed", "classify_transport_error", map[string]any{
			"title": art.Title,
			"error": err.Error(),
		})
		return out
	}

	category, synopsis, err := ParseReply(reply)
	if err != nil {
		c.log.WarnObj("model reply did not match template", "classify_parse_error", map[string]any{
			"title": art.Title,
			"error": err.Error(),
			"reply": replySnippet(reply),
		})
		return out
	}

	if err := c.cache.Put(art.Title, category, synopsis); err != nil {
		c.log.WarnObj("reply cache write failed", "classify_cache_error", map[string]any{
			"title": art.Title,
			"error": err.Error(),
		})
	}

	out.Category = category
	out.Synopsis = synopsis
	return out
}

func replySnippet(reply string) string {
	const maxLen = 256
	s := strings.TrimSpace(reply)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
