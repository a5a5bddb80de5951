package classify

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haeorum-lab/sosik-monitor/internal/domain"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func article(title string) domain.Article {
	return domain.Article{Title: title, Media: "연합뉴스", Journalist: "N/A", Keyword: "CIP"}
}

func TestClassifier_Success(t *testing.T) {
	completer := &fakeCompleter{reply: "Category: CIP\nSynopsis: The fund invested."}
	c := NewClassifier(completer, nil, nil)

	got := c.Classify(context.Background(), article("CIP 투자 발표"))
	if got.Category != "CIP" {
		t.Errorf("category = %q", got.Category)
	}
	if got.Synopsis != "The fund invested." {
		t.Errorf("synopsis = %q", got.Synopsis)
	}
	if got.Media != "연합뉴스" || got.Journalist != "N/A" {
		t.Errorf("media/journalist not carried over: %+v", got)
	}
}

func TestClassifier_TransportFailureDegradesToSentinels(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	c := NewClassifier(completer, nil, nil)

	got := c.Classify(context.Background(), article("어떤 제목"))
	if got.Category != domain.CategoryUnknown {
		t.Errorf("category = %q, want sentinel", got.Category)
	}
	if got.Synopsis != domain.SynopsisError {
		t.Errorf("synopsis = %q, want sentinel", got.Synopsis)
	}
}

func TestClassifier_MalformedReplyDegradesToSentinels(t *testing.T) {
	completer := &fakeCompleter{reply: "I cannot classify this."}
	c := NewClassifier(completer, nil, nil)

	got := c.Classify(context.Background(), article("어떤 제목"))
	if got.Category != domain.CategoryUnknown || got.Synopsis != domain.SynopsisError {
		t.Errorf("expected sentinel record, got %+v", got)
	}
}

func TestClassifier_PromptEmbedsTitleAndCategories(t *testing.T) {
	prompt := BuildPrompt("해상풍력 단지 착공")
	if !strings.Contains(prompt, "해상풍력 단지 착공") {
		t.Error("prompt is missing the title")
	}
	for _, cat := range Categories {
		if !strings.Contains(prompt, cat) {
			t.Errorf("prompt is missing category %q", cat)
		}
	}
}

func TestClassifier_CacheSkipsProviderOnSecondCall(t *testing.T) {
	cache, err := OpenReplyCache(filepath.Join(t.TempDir(), "replies.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	completer := &fakeCompleter{reply: "Category: Impact on\nSynopsis: Fisheries are affected."}
	c := NewClassifier(completer, cache, nil)

	first := c.Classify(context.Background(), article("어업 영향 조사"))
	second := c.Classify(context.Background(), article("어업 영향 조사"))

	if completer.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", completer.calls)
	}
	if first != second {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestReplyCache_SentinelOutcomesNotCached(t *testing.T) {
	cache, err := OpenReplyCache(filepath.Join(t.TempDir(), "replies.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	completer := &fakeCompleter{err: errors.New("boom")}
	c := NewClassifier(completer, cache, nil)

	c.Classify(context.Background(), article("실패하는 제목"))

	if _, _, ok := cache.Get("실패하는 제목"); ok {
		t.Error("failed classification must not be cached")
	}
}

func TestReplyCache_NilCacheIsNoop(t *testing.T) {
	var cache *ReplyCache

	if _, _, ok := cache.Get("anything"); ok {
		t.Error("nil cache reported a hit")
	}
	if err := cache.Put("anything", "CIP", "text"); err != nil {
		t.Errorf("nil cache Put returned error: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("nil cache Close returned error: %v", err)
	}
}
