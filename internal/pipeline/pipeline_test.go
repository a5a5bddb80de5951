package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/haeorum-lab/sosik-monitor/internal/domain"
)

// newsPage renders a minimal search results page with one container per
// title, matching the markup the extractor expects.
func newsPage(media string, titles ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, title := range titles {
		fmt.Fprintf(&b, `<div class="news_area"><a class="news_tit">%s</a><div class="info_group"><a>%s</a></div></div>`, title, media)
	}
	b.WriteString("</body></html>")
	return b.String()
}

type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, keyword string, _ domain.DateRange) (string, error) {
	f.calls = append(f.calls, keyword)
	if err := f.errs[keyword]; err != nil {
		return "", err
	}
	return f.pages[keyword], nil
}

// titleClassifier maps titles to fixed synopses; unmapped titles echo the
// title as synopsis.
type titleClassifier struct {
	synopses map[string]string
}

func (c *titleClassifier) Classify(_ context.Context, art domain.Article) domain.ClassifiedArticle {
	synopsis := art.Title
	if s, ok := c.synopses[art.Title]; ok {
		synopsis = s
	}
	return domain.ClassifiedArticle{
		Category:   "CIP",
		Media:      art.Media,
		Journalist: art.Journalist,
		Synopsis:   synopsis,
	}
}

func TestRun_TwoArticlesDistinctSynopses(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"CIP": newsPage("연합뉴스", "A", "B")}}
	runner := NewRunner(fetcher, &titleClassifier{}, 1, nil, nil)

	rep, err := runner.Run(context.Background(), []string{"CIP"}, domain.LastDays(7))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rep.Rows))
	}
	if rep.Collected != 2 {
		t.Errorf("Collected = %d, want 2", rep.Collected)
	}
	if runner.State() != StateDone {
		t.Errorf("state = %q, want done", runner.State())
	}
}

func TestRun_IdenticalSynopsesCollapseToFirst(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"CIP": newsPage("첫번째매체", "A") + newsPage("두번째매체", "B")}}
	classifier := &titleClassifier{synopses: map[string]string{
		"A": "Same summary.",
		"B": "Same summary.",
	}}
	runner := NewRunner(fetcher, classifier, 1, nil, nil)

	rep, err := runner.Run(context.Background(), []string{"CIP"}, domain.LastDays(7))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Rows) != 1 {
		t.Fatalf("expected 1 row after dedup, got %d", len(rep.Rows))
	}
	if rep.Rows[0].Media != "첫번째매체" {
		t.Errorf("dedup must keep the first occurrence, got media %q", rep.Rows[0].Media)
	}
}

func TestRun_FailedKeywordDoesNotHaltOthers(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{"Y": newsPage("매체", "Y의 기사")},
		errs:  map[string]error{"X": errors.New("connection reset")},
	}
	runner := NewRunner(fetcher, &titleClassifier{}, 1, nil, nil)

	rep, err := runner.Run(context.Background(), []string{"X", "Y"}, domain.LastDays(7))
	if err != nil {
		t.Fatalf("Run must not fail on a single keyword error: %v", err)
	}
	if len(rep.Rows) != 1 {
		t.Fatalf("expected 1 row from keyword Y, got %d", len(rep.Rows))
	}
	if got := fetcher.calls; !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Errorf("fetch order = %v", got)
	}
}

func TestRun_EmptyKeywordSetFailsFast(t *testing.T) {
	fetcher := &fakeFetcher{}
	runner := NewRunner(fetcher, &titleClassifier{}, 1, nil, nil)

	_, err := runner.Run(context.Background(), nil, domain.LastDays(7))
	if !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("expected ErrNoKeywords, got %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("no network activity expected, fetcher saw %v", fetcher.calls)
	}

	_, err = runner.Run(context.Background(), []string{"  ", "\t"}, domain.LastDays(7))
	if !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("blank-only keywords: expected ErrNoKeywords, got %v", err)
	}
}

func TestRun_KeywordProgressStrictlyOrdered(t *testing.T) {
	// "b" fails outright and "c" yields an empty page; both still emit their
	// keyword progress event in order.
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"a": newsPage("m", "a1"),
			"c": "",
			"d": newsPage("m", "d1"),
		},
		errs: map[string]error{"b": errors.New("blocked")},
	}

	var events []domain.ProgressEvent
	progress := func(evt domain.ProgressEvent) {
		if evt.Phase == domain.PhaseFetching {
			events = append(events, evt)
		}
	}
	runner := NewRunner(fetcher, &titleClassifier{}, 1, progress, nil)

	if _, err := runner.Run(context.Background(), []string{"a", "b", "c", "d"}, domain.LastDays(7)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantLabels := []string{"a", "b", "c", "d"}
	if len(events) != len(wantLabels) {
		t.Fatalf("expected %d keyword events, got %d", len(wantLabels), len(events))
	}
	for i, evt := range events {
		if evt.Label != wantLabels[i] {
			t.Errorf("event %d label = %q, want %q", i, evt.Label, wantLabels[i])
		}
		want := float64(i+1) / float64(len(wantLabels))
		if evt.Fraction != want {
			t.Errorf("event %d fraction = %v, want %v", i, evt.Fraction, want)
		}
	}
}

func TestRun_ClassificationProgressReachesOne(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"CIP": newsPage("m", "a", "b", "c", "d")}}

	var fractions []float64
	progress := func(evt domain.ProgressEvent) {
		if evt.Phase == domain.PhaseClassifying {
			fractions = append(fractions, evt.Fraction)
		}
	}
	runner := NewRunner(fetcher, &titleClassifier{}, 3, progress, nil)

	if _, err := runner.Run(context.Background(), []string{"CIP"}, domain.LastDays(7)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fractions) != 4 {
		t.Fatalf("expected 4 classification events, got %d", len(fractions))
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] <= fractions[i-1] {
			t.Errorf("fractions not monotonic: %v", fractions)
		}
	}
	if fractions[len(fractions)-1] != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", fractions[len(fractions)-1])
	}
}

func TestRun_OrderInvariantToWorkerCount(t *testing.T) {
	titles := make([]string, 20)
	for i := range titles {
		titles[i] = fmt.Sprintf("기사-%02d", i)
	}
	page := newsPage("m", titles...)

	var sequential []domain.ClassifiedArticle
	for _, workers := range []int{1, 8} {
		fetcher := &fakeFetcher{pages: map[string]string{"CIP": page}}
		runner := NewRunner(fetcher, &titleClassifier{}, workers, nil, nil)

		rep, err := runner.Run(context.Background(), []string{"CIP"}, domain.LastDays(7))
		if err != nil {
			t.Fatalf("Run with %d workers failed: %v", workers, err)
		}
		if workers == 1 {
			sequential = rep.Rows
			continue
		}
		if !reflect.DeepEqual(sequential, rep.Rows) {
			t.Errorf("result table differs between 1 and %d workers", workers)
		}
	}
}

func TestDedupeBySynopsis_IsIdempotent(t *testing.T) {
	rows := []domain.ClassifiedArticle{
		{Category: "CIP", Media: "a", Synopsis: "one"},
		{Category: "CIP", Media: "b", Synopsis: "two"},
		{Category: "CIP", Media: "c", Synopsis: "one"},
	}

	once := DedupeBySynopsis(rows)
	twice := DedupeBySynopsis(once)

	if len(once) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(once))
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedup is not a fixed point: %v vs %v", once, twice)
	}
	if once[0].Media != "a" {
		t.Errorf("first occurrence must win, got %q", once[0].Media)
	}
}

func TestDedupeBySynopsis_NeverAddsRows(t *testing.T) {
	rows := []domain.ClassifiedArticle{
		{Synopsis: "x"}, {Synopsis: "y"}, {Synopsis: "x"}, {Synopsis: "z"},
	}
	if got := DedupeBySynopsis(rows); len(got) > len(rows) {
		t.Errorf("dedup grew the table: %d > %d", len(got), len(rows))
	}
}
