// Package pipeline runs extract, transform, load and report in order.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fashionetl/internal/config"
	"fashionetl/internal/crawler"
	"fashionetl/internal/db"
	"fashionetl/internal/loader"
	"fashionetl/internal/model"
	"fashionetl/internal/observability"
	"fashionetl/internal/report"
	"fashionetl/internal/repository"
	"fashionetl/internal/transform"
)

type Runner struct {
	Out         io.Writer
	Extractor   *crawler.Extractor
	Transformer *transform.Transformer
	Sinks       []loader.Sink
	Metrics     *observability.Metrics
	Runs        *repository.RunRepository // nil disables the run audit

	ReportPath string
	Report     report.Options

	PushgatewayURL  string
	MetricsTextfile string

	closers []func() error
}

type Result struct {
	Run      model.Run
	Table    model.Table
	Stats    transform.Stats
	Outcomes []loader.Outcome
}

// New wires a Runner from cfg. m may be shared across scheduled runs.
func New(cfg *config.Config, out io.Writer, m *observability.Metrics) (*Runner, error) {
	policy, err := crawler.ParsePagePolicy(cfg.PagePolicy)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = observability.New()
	}

	r := &Runner{
		Out:         out,
		Transformer: transform.New(cfg.ExchangeRate),
		Sinks: []loader.Sink{
			&loader.CSVSink{Path: cfg.CSVPath},
			&loader.SheetsSink{
				CredentialsFile: cfg.SheetsCredentials,
				SpreadsheetID:   cfg.SheetsSpreadsheetID,
				SheetName:       cfg.SheetsSheetName,
			},
			&loader.DatabaseSink{URL: cfg.DatabaseURL, Table: cfg.DatabaseTable},
		},
		Metrics:         m,
		ReportPath:      cfg.CSVPath,
		Report:          report.Options{Rows: cfg.ReportRows, MaxColWidth: report.DefaultOptions().MaxColWidth},
		PushgatewayURL:  cfg.PushgatewayURL,
		MetricsTextfile: cfg.MetricsTextfile,
	}

	var cache crawler.PageCache
	if cfg.RedisURL != "" {
		rc, err := crawler.NewRedisCache(context.Background(), cfg.RedisURL, cfg.PageCacheTTL)
		if err != nil {
			zap.S().Warnf("page cache disabled: %v", err)
		} else {
			cache = rc
			r.closers = append(r.closers, rc.Close)
		}
	}
	r.Extractor = &crawler.Extractor{
		BaseURL:  cfg.SourceURL,
		MaxPages: cfg.MaxPages,
		Policy:   policy,
		Fetcher:  crawler.NewFetcher(cfg.RequestRate, cache),
	}

	if cfg.DatabaseURL != "" {
		conn, driver, err := db.New(cfg.DatabaseURL)
		if err != nil {
			zap.S().Warnf("run audit disabled: %v", err)
		} else {
			r.Runs = &repository.RunRepository{DB: conn, Driver: driver}
			r.closers = append(r.closers, conn.Close)
		}
	}
	return r, nil
}

func (r *Runner) Close() {
	for _, c := range r.closers {
		_ = c()
	}
}

// Run executes one pipeline pass. Only extraction and transformation
// failures are returned; sink and report problems are printed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.Metrics == nil {
		r.Metrics = observability.New()
	}
	res := &Result{Run: model.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Sinks:     map[string]string{},
	}}
	defer r.finish(ctx, res)

	fmt.Fprintln(r.Out, "Starting ETL Pipeline...")

	fmt.Fprintf(r.Out, "1. Extracting data from %s...\n", r.Extractor.BaseURL)
	start := time.Now()
	batch, err := r.Extractor.Extract(ctx)
	r.observe("extract", start)
	if err != nil {
		return res, r.abort(res, err)
	}
	res.Run.Pages = batch.Pages
	res.Run.Extracted = len(batch.Products)
	res.Run.Partial = batch.Partial
	r.Metrics.PagesFetched.Add(float64(batch.Pages))
	r.Metrics.ProductsExtracted.Add(float64(len(batch.Products)))
	fmt.Fprintf(r.Out, "   Extracted %d products from %d pages\n", len(batch.Products), batch.Pages)
	if batch.Partial {
		fmt.Fprintln(r.Out, "   [WARN] pagination stopped early; continuing with the pages fetched")
	}

	fmt.Fprintln(r.Out, "2. Transforming data...")
	start = time.Now()
	table, stats, err := r.Transformer.Transform(batch)
	r.observe("transform", start)
	res.Stats = stats
	if err != nil {
		return res, r.abort(res, err)
	}
	res.Table = table
	res.Run.Transformed = table.Len()
	r.Metrics.RowsTransformed.Add(float64(table.Len()))
	for reason, n := range stats.Dropped {
		r.Metrics.RowsDropped.WithLabelValues(reason).Add(float64(n))
	}
	fmt.Fprintf(r.Out, "   Transformed data shape: (%d, %d)\n", table.Len(), len(model.Columns))

	fmt.Fprintln(r.Out, "3. Loading data...")
	start = time.Now()
	for _, sink := range r.Sinks {
		out := sink.Load(ctx, table)
		res.Outcomes = append(res.Outcomes, out)
		res.Run.Sinks[out.Sink] = string(out.Status)
		r.Metrics.SinkOutcomes.WithLabelValues(out.Sink, string(out.Status)).Inc()
		fmt.Fprintf(r.Out, "   %s\n", out)
		if out.Status == loader.StatusFail {
			zap.S().Errorw("sink failed", "sink", out.Sink, "error", out.Err)
		}
	}
	r.observe("load", start)

	fmt.Fprintln(r.Out, "ETL Pipeline completed!")

	if err := report.Print(r.Out, r.ReportPath, r.Report); err != nil {
		fmt.Fprintf(r.Out, "Error displaying data: %v\n", err)
	}
	return res, nil
}

func (r *Runner) abort(res *Result, err error) error {
	res.Run.Error = err.Error()
	fmt.Fprintf(r.Out, "ETL Pipeline failed: %v\n", err)
	zap.S().Errorw("pipeline aborted", "run", res.Run.ID, "error", err)
	return err
}

func (r *Runner) observe(stage string, start time.Time) {
	r.Metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// finish stores the run record and flushes metrics. Both are best effort.
func (r *Runner) finish(ctx context.Context, res *Result) {
	res.Run.FinishedAt = time.Now()

	if err := r.Metrics.Flush(r.PushgatewayURL, r.MetricsTextfile); err != nil {
		zap.S().Warnf("metrics flush failed: %v", err)
	}

	if r.Runs == nil {
		return
	}
	if err := r.Runs.EnsureSchema(ctx); err != nil {
		zap.S().Warnf("run audit skipped: %v", err)
		return
	}
	if err := r.Runs.Save(ctx, res.Run); err != nil {
		zap.S().Warnf("run audit skipped: %v", err)
	}
}
