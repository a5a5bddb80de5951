// Package pipeline drives a full monitoring run: fetch every keyword,
// extract articles, classify each title, and deduplicate into the final
// report.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/haeorum-lab/sosik-monitor/internal/domain"
	"github.com/haeorum-lab/sosik-monitor/internal/logger"
	"github.com/haeorum-lab/sosik-monitor/internal/search"
)

// ErrNoKeywords is returned before any network activity when the keyword set
// is empty.
var ErrNoKeywords = errors.New("no keywords selected")

const defaultClassifyWorkers = 4

// State names the stage a run is currently in.
type State string

const (
	StateIdle          State = "idle"
	StateFetching      State = "fetching"
	StateExtracting    State = "extracting"
	StateClassifying   State = "classifying"
	StateDeduplicating State = "deduplicating"
	StateDone          State = "done"
)

// Fetcher fetches the raw search results page for one keyword.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string, r domain.DateRange) (string, error)
}

// Classifier produces the classified record for one article. Implementations
// never fail past their boundary; degraded records carry sentinel values.
type Classifier interface {
	Classify(ctx context.Context, art domain.Article) domain.ClassifiedArticle
}

// ProgressFunc observes per-unit completion. Events are emitted serially:
// keyword events strictly in keyword order, classification events as a
// monotonic completion count.
type ProgressFunc func(domain.ProgressEvent)

// Runner executes monitoring runs. A Runner is reusable; each Run owns its
// accumulating state exclusively.
type Runner struct {
	fetcher    Fetcher
	classifier Classifier
	workers    int
	progress   ProgressFunc
	log        logger.Logger

	mu    sync.Mutex
	state State
}

// NewRunner builds a Runner. workers bounds concurrent classification calls;
// values below 1 select the default. A workers value of 1 reproduces strictly
// sequential classification. progress and log may be nil.
func NewRunner(fetcher Fetcher, classifier Classifier, workers int, progress ProgressFunc, log logger.Logger) *Runner {
	if workers < 1 {
		workers = defaultClassifyWorkers
	}
	if progress == nil {
		progress = func(domain.ProgressEvent) {}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Runner{
		fetcher:    fetcher,
		classifier: classifier,
		workers:    workers,
		progress:   progress,
		log:        log,
		state:      StateIdle,
	}
}

// State reports the stage of the current (or last) run.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Run executes one full pipeline pass. A keyword whose fetch or extraction
// fails contributes zero articles and never halts the others; the only error
// returns are the empty keyword set and context cancellation.
func (r *Runner) Run(ctx context.Context, keywords []string, dr domain.DateRange) (domain.Report, error) {
	started := time.Now()

	keywords = cleanKeywords(keywords)
	if len(keywords) == 0 {
		return domain.Report{}, ErrNoKeywords
	}

	articles, err := r.collect(ctx, keywords, dr)
	if err != nil {
		return domain.Report{}, err
	}

	classified, err := r.classifyAll(ctx, articles)
	if err != nil {
		return domain.Report{}, err
	}

	r.setState(StateDeduplicating)
	rows := DedupeBySynopsis(classified)

	r.setState(StateDone)
	r.log.InfoObj("run finished", "run_done", map[string]any{
		"keywords":  len(keywords),
		"collected": len(articles),
		"rows":      len(rows),
	})

	return domain.Report{
		Rows:       rows,
		Keywords:   keywords,
		Range:      dr,
		Collected:  len(articles),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, nil
}

// collect runs the fetch/extract phases over every keyword in order.
func (r *Runner) collect(ctx context.Context, keywords []string, dr domain.DateRange) ([]domain.Article, error) {
	var articles []domain.Article

	for i, kw := range keywords {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.setState(StateFetching)
		html, err := r.fetcher.Fetch(ctx, kw, dr)
		if err != nil {
			r.log.WarnObj("keyword search failed", "keyword_fetch_error", map[string]any{
				"keyword": kw,
				"error":   err.Error(),
			})
			r.emitKeywordProgress(i, len(keywords), kw)
			continue
		}

		r.setState(StateExtracting)
		found, err := search.Extract(html, kw)
		if err != nil {
			r.log.WarnObj("result page extraction failed", "keyword_extract_error", map[string]any{
				"keyword": kw,
				"error":   err.Error(),
			})
			r.emitKeywordProgress(i, len(keywords), kw)
			continue
		}

		articles = append(articles, found...)
		r.log.DebugObj("keyword processed", "keyword_done", map[string]any{
			"keyword":  kw,
			"articles": len(found),
		})
		r.emitKeywordProgress(i, len(keywords), kw)
	}

	return articles, nil
}

func (r *Runner) emitKeywordProgress(idx, total int, keyword string) {
	r.progress(domain.ProgressEvent{
		Phase:    domain.PhaseFetching,
		Fraction: float64(idx+1) / float64(total),
		Label:    keyword,
	})
}

// classifyAll classifies the accumulated articles on a bounded worker pool.
// Workers write into index-addressed slots, so the output order equals the
// accumulation order regardless of the worker count, and one failed
// classification shares no state with its siblings.
func (r *Runner) classifyAll(ctx context.Context, articles []domain.Article) ([]domain.ClassifiedArticle, error) {
	r.setState(StateClassifying)

	out := make([]domain.ClassifiedArticle, len(articles))
	if len(articles) == 0 {
		return out, ctx.Err()
	}

	workerCount := r.workers
	if workerCount > len(articles) {
		workerCount = len(articles)
	}

	var (
		wg        sync.WaitGroup
		doneMu    sync.Mutex
		doneCount int
	)

	jobCh := make(chan int)
	for range workerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				if ctx.Err() != nil {
					return
				}
				out[idx] = r.classifier.Classify(ctx, articles[idx])

				doneMu.Lock()
				doneCount++
				r.progress(domain.ProgressEvent{
					Phase:    domain.PhaseClassifying,
					Fraction: float64(doneCount) / float64(len(articles)),
					Label:    articles[idx].Title,
				})
				doneMu.Unlock()
			}
		}()
	}

	for idx := range articles {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	return out, ctx.Err()
}

// DedupeBySynopsis collapses rows with identical synopsis text, keeping the
// first occurrence and its media/journalist, preserving insertion order.
// Applying it twice is a no-op.
func DedupeBySynopsis(rows []domain.ClassifiedArticle) []domain.ClassifiedArticle {
	seen := make(map[string]struct{}, len(rows))
	out := make([]domain.ClassifiedArticle, 0, len(rows))

	for _, row := range rows {
		if _, dup := seen[row.Synopsis]; dup {
			continue
		}
		seen[row.Synopsis] = struct{}{}
		out = append(out, row)
	}

	return out
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
