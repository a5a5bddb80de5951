// Command sosik runs one news monitoring pass: search the configured
// keywords, classify every collected title, and write the deduplicated
// report to CSV and Excel files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/haeorum-lab/sosik-monitor/internal/classify"
	"github.com/haeorum-lab/sosik-monitor/internal/config"
	"github.com/haeorum-lab/sosik-monitor/internal/domain"
	"github.com/haeorum-lab/sosik-monitor/internal/logger"
	"github.com/haeorum-lab/sosik-monitor/internal/pipeline"
	"github.com/haeorum-lab/sosik-monitor/internal/report"
	"github.com/haeorum-lab/sosik-monitor/internal/search"
	"github.com/haeorum-lab/sosik-monitor/pkg/httpclient"
	"github.com/haeorum-lab/sosik-monitor/pkg/publishers"
)

const defaultConfigPath = "configs/sosik.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sosik:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	path := *configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	completer, err := classify.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		return err
	}
	defer completer.Close()

	var cache *classify.ReplyCache
	if cfg.ReplyCachePath != "" {
		cache, err = classify.OpenReplyCache(cfg.ReplyCachePath)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	fetcher := search.NewFetcher(httpclient.NewRestyClient(cfg.HTTPTimeout()), cfg.SearchBaseURL, log)
	classifier := classify.NewClassifier(completer, cache, log)

	progress := func(evt domain.ProgressEvent) {
		log.InfoObj("progress", "run_progress", map[string]any{
			"phase":    string(evt.Phase),
			"fraction": fmt.Sprintf("%.2f", evt.Fraction),
			"label":    evt.Label,
		})
	}

	runner := pipeline.NewRunner(fetcher, classifier, cfg.ClassifyWorkers, progress, log)

	dateRange, err := cfg.Range()
	if err != nil {
		return err
	}

	rep, err := runner.Run(ctx, cfg.KeywordList(), dateRange)
	if err != nil {
		return err
	}

	files, err := writeReports(cfg.OutputDir, rep)
	if err != nil {
		return err
	}
	for _, f := range files {
		log.InfoObj("report written", "report_file", map[string]any{"path": f})
	}

	publishRunEvent(ctx, cfg.PublishersFile, rep, files, log)
	return nil
}

// writeReports renders the result table as news_report_YYYYMMDD.csv and .xlsx.
func writeReports(dir string, rep domain.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	stamp := time.Now().Format("20060102")
	csvPath := filepath.Join(dir, fmt.Sprintf("news_report_%s.csv", stamp))
	xlsxPath := filepath.Join(dir, fmt.Sprintf("news_report_%s.xlsx", stamp))

	if err := report.SaveCSV(csvPath, rep); err != nil {
		return nil, err
	}
	if err := report.SaveExcel(xlsxPath, rep); err != nil {
		return nil, err
	}
	return []string{csvPath, xlsxPath}, nil
}

// publishRunEvent sends the run summary to every enabled publisher.
// Publishing is best-effort: failures are logged and never fail the run.
func publishRunEvent(ctx context.Context, publishersFile string, rep domain.Report, files []string, log logger.Logger) {
	if publishersFile == "" {
		return
	}

	reg, err := publishers.LoadRegistry(publishersFile)
	if err != nil {
		log.ErrorObj("publishers config load failed", "publisher_config_error", map[string]any{
			"path":  publishersFile,
			"error": err.Error(),
		})
		return
	}

	pubs, err := publishers.BuildAll(ctx, reg.Enabled(), log)
	if err != nil {
		log.ErrorObj("publisher construction failed", "publisher_build_error", map[string]any{
			"error": err.Error(),
		})
		return
	}

	evt := publishers.Event{
		RunID:       rep.StartedAt.UTC().Format("20060102T150405Z"),
		GeneratedAt: rep.FinishedAt,
		Keywords:    len(rep.Keywords),
		Collected:   rep.Collected,
		Rows:        len(rep.Rows),
		ReportFiles: files,
	}

	for _, pub := range pubs {
		if err := pub.Publish(ctx, evt); err != nil {
			log.ErrorObj("run event publish failed", "publisher_send_error", map[string]any{
				"publisher": pub.ID(),
				"error":     err.Error(),
			})
			continue
		}
		log.InfoObj("run event published", "publisher_sent", map[string]any{
			"publisher": pub.ID(),
		})
	}
}
