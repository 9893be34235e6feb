// Package crawl provides the concurrent crawl engine: the frontier
// scheduler, admission re-checks, the per-URL lifecycle driven against the
// store, and the dispatch of fetch jobs to a bounded worker pool.
package crawl

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/sjseo298/webmirror"
	"golang.org/x/sync/errgroup"
)

// Engine coordinates one crawl run. The store is the sole source of truth
// for resume; the engine's in-memory sets are warm caches rebuilt from the
// store at startup.
type Engine struct {
	Store    webmirror.CrawlStore
	Driver   webmirror.SiteDriver
	Policy   *webmirror.Policy
	Mapper   *webmirror.PathMapper
	StartURL string

	// Workers bounds the pool; clamped to [1, 50], default 5.
	Workers int

	// JobBudget is the per-job wall-clock limit, default 60s.
	JobBudget time.Duration

	// Limiter, when set, paces requests (advisory request_delay).
	Limiter *DomainLimiter

	Logger   *slog.Logger
	Progress webmirror.ProgressFunc

	frontier   *Frontier
	downloaded *stateCache
}

// Result holds the outcome of a crawl run.
type Result struct {
	Downloaded int
	Failed     int
	Indexes    int
	Skipped    int
}

// jobResult is the outcome of processing a single URL.
type jobResult struct {
	url     string
	depth   int
	outcome *webmirror.FetchOutcome
	err     error
	skipped bool
	elapsed time.Duration
}

// Run executes the crawl until the frontier and the in-flight set are both
// empty, or the context is canceled. In-flight jobs are drained before
// returning so every job resolves to completed or failed in the store.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	e.frontier = NewFrontier()
	e.downloaded = newStateCache()

	if err := e.seed(ctx); err != nil {
		return nil, err
	}

	workers := e.workerCount()
	results := make(chan jobResult)
	g := &errgroup.Group{}
	g.SetLimit(workers)

	total := &Result{}
	inFlight := 0

	for ctx.Err() == nil {
		// Dispatch while there is capacity and admissible work.
		for inFlight < workers {
			item, ok := e.frontier.Pop()
			if !ok {
				break
			}
			if !e.admissible(item.CleanURL, item.Depth) {
				total.Skipped++
				continue
			}
			e.downloaded.reserve(item.CleanURL)
			if err := e.pace(ctx, item.CleanURL); err != nil {
				e.downloaded.release(item.CleanURL)
				break
			}
			inFlight++
			g.Go(func() error {
				results <- e.runJob(ctx, item)
				return nil
			})
		}

		if inFlight == 0 {
			if e.frontier.Len() == 0 {
				break
			}
			continue
		}

		select {
		case res := <-results:
			inFlight--
			e.handleResult(ctx, res, total)
		case <-ctx.Done():
			// Stop admitting; the drain below collects in-flight jobs,
			// each bounded by its own job budget.
		}
	}

	drainCtx := context.WithoutCancel(ctx)
	for inFlight > 0 {
		res := <-results
		inFlight--
		e.handleResult(drainCtx, res, total)
	}
	_ = g.Wait()

	e.Logger.Info("crawl finished",
		"downloaded", total.Downloaded,
		"failed", total.Failed,
		"indexes", total.Indexes,
		"seen", e.frontier.SeenEstimate(),
	)
	e.emit(webmirror.ProgressEvent{
		Type:       webmirror.ProgressFinished,
		Downloaded: total.Downloaded,
		Failed:     total.Failed,
	})

	if err := ctx.Err(); err != nil {
		return total, err
	}
	return total, nil
}

// seed rebuilds the in-memory caches from the store and loads the frontier.
// The start URL is admitted at depth 0 only when the store holds no pending
// work; otherwise the run is a resume.
func (e *Engine) seed(ctx context.Context) error {
	done, err := e.Store.DownloadedURLs(ctx)
	if err != nil {
		return err
	}
	paths, err := e.Store.URLToPath(ctx)
	if err != nil {
		return err
	}
	e.downloaded.load(done, paths)
	for u := range done {
		e.frontier.MarkSeen(u)
	}

	pending, err := e.Store.PendingURLs(ctx, 0)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		clean, err := webmirror.CleanURL(e.StartURL)
		if err != nil {
			return err
		}
		if _, err := e.Store.Admit(ctx, webmirror.Link{RawURL: e.StartURL, CleanURL: clean}); err != nil {
			return err
		}
		e.frontier.Push(clean, 0)
		e.Logger.Info("starting crawl", "start_url", clean)
		return nil
	}

	for _, p := range pending {
		e.frontier.Push(p.CleanURL, p.Depth)
	}
	e.Logger.Info("resuming crawl", "pending", len(pending), "completed", len(done))
	return nil
}

// runJob executes one fetch+save cycle under the per-job budget. Every
// non-index job resolves to completed or failed in the store before
// returning; errors never propagate into the engine loop.
func (e *Engine) runJob(ctx context.Context, item webmirror.PendingURL) jobResult {
	res := jobResult{url: item.CleanURL, depth: item.Depth}
	start := time.Now()
	defer func() { res.elapsed = time.Since(start) }()

	jctx, cancel := context.WithTimeout(ctx, e.jobBudget())
	defer cancel()

	e.emit(webmirror.ProgressEvent{
		Type:     webmirror.ProgressStarted,
		URL:      item.CleanURL,
		QueueLen: e.frontier.Len(),
	})

	ok, err := e.Store.MarkDownloading(jctx, item.CleanURL)
	if err != nil {
		res.err = err
		return res
	}
	if !ok {
		// Not pending anymore: absorbed by a concurrent worker or an
		// earlier run.
		res.skipped = true
		return res
	}

	outcome, err := e.Driver.Fetch(jctx, item.CleanURL, item.Depth)
	if err != nil {
		res.err = classify(jctx, err)
		e.markFailed(jctx, item.CleanURL, res.err)
		return res
	}
	res.outcome = outcome

	if outcome.IsIndex {
		// Fan-out only; the dispatcher admits the links and then retires
		// this URL.
		return res
	}

	localPath := e.Mapper.LocalPath(item.CleanURL)
	if err := e.Driver.Save(jctx, item.CleanURL, outcome, localPath); err != nil {
		res.err = classify(jctx, err)
		e.markFailed(jctx, item.CleanURL, res.err)
		return res
	}

	var size int64
	if fi, err := os.Stat(localPath); err == nil {
		size = fi.Size()
	}
	doc := &webmirror.DownloadedDocument{
		CleanURL:       item.CleanURL,
		LocalPath:      localPath,
		FileSize:       size,
		DownloadTime:   time.Since(start).Seconds(),
		DownloadedAt:   time.Now().UTC(),
		Depth:          item.Depth,
		LinksExtracted: len(outcome.Links),
	}
	if err := e.Store.MarkCompleted(context.WithoutCancel(jctx), doc); err != nil {
		res.err = err
		return res
	}
	e.downloaded.complete(item.CleanURL, localPath)

	return res
}

// handleResult applies the dispatcher side of a finished job: counters,
// link fan-in, and index retirement.
func (e *Engine) handleResult(ctx context.Context, res jobResult, total *Result) {
	e.downloaded.release(res.url)

	switch {
	case res.skipped:
		total.Skipped++

	case res.err != nil:
		total.Failed++
		e.Logger.Warn("page failed",
			"url", res.url,
			"code", webmirror.ErrorCode(res.err),
			"err", webmirror.ErrorMessage(res.err),
		)
		e.emit(webmirror.ProgressEvent{
			Type:   webmirror.ProgressFailed,
			URL:    res.url,
			Err:    res.err,
			Failed: total.Failed,
		})

	case res.outcome.IsIndex:
		// Space-index fan-out: links enter at depth 0 regardless of the
		// index's own depth so a space crawl completes even when the index
		// is reached deep from an unrelated entry point.
		added := e.admitLinks(ctx, res.url, res.outcome.Links, 0)
		if err := e.Store.MarkIndexed(ctx, res.url); err != nil {
			e.Logger.Warn("index retirement failed", "url", res.url, "err", err)
		}
		total.Indexes++
		e.Logger.Info("space index expanded", "url", res.url, "links", len(res.outcome.Links), "admitted", added)
		e.emit(webmirror.ProgressEvent{
			Type:     webmirror.ProgressIndexExpanded,
			URL:      res.url,
			QueueLen: e.frontier.Len(),
		})

	default:
		total.Downloaded++
		e.admitLinks(ctx, res.url, res.outcome.Links, res.depth+1)
		localPath, _ := e.downloaded.path(res.url)
		e.Logger.Debug("page downloaded",
			"url", res.url,
			"path", localPath,
			"links", len(res.outcome.Links),
			"duration", res.elapsed,
		)
		e.emit(webmirror.ProgressEvent{
			Type:       webmirror.ProgressDownloaded,
			URL:        res.url,
			LocalPath:  localPath,
			Downloaded: total.Downloaded,
			QueueLen:   e.frontier.Len(),
			Elapsed:    res.elapsed,
		})
	}
}

// admitLinks persists admissible links and queues them for fetching.
// The store insert happens before the frontier push so a crash between the
// two never loses discovered work.
func (e *Engine) admitLinks(ctx context.Context, parent string, urls []string, depth int) int {
	var links []webmirror.Link
	var queue []string
	for _, u := range urls {
		if !e.admissible(u, depth) {
			continue
		}
		links = append(links, webmirror.Link{
			RawURL:    u,
			CleanURL:  u,
			Depth:     depth,
			ParentURL: parent,
		})
		queue = append(queue, u)
	}
	if len(links) == 0 {
		return 0
	}

	added, err := e.Store.AdmitBatch(ctx, links)
	if err != nil {
		e.Logger.Warn("link admission failed", "parent", parent, "err", err)
		return 0
	}
	e.frontier.PushMany(queue, depth)
	return added
}

// admissible re-checks a URL at dispatch time: policy plus the live
// completed and in-flight sets. A URL admitted earlier may have been
// finished by a concurrent worker since.
func (e *Engine) admissible(cleanURL string, depth int) bool {
	if !e.Policy.Admit(cleanURL, depth) {
		return false
	}
	return !e.downloaded.busy(cleanURL)
}

// pace applies the advisory inter-request delay.
func (e *Engine) pace(ctx context.Context, rawURL string) error {
	if e.Limiter == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return e.Limiter.Wait(ctx, u.Host)
}

func (e *Engine) markFailed(ctx context.Context, cleanURL string, cause error) {
	if err := e.Store.MarkFailed(context.WithoutCancel(ctx), cleanURL, webmirror.ErrorMessage(cause)); err != nil {
		e.Logger.Warn("failure record failed", "url", cleanURL, "err", err)
	}
}

func (e *Engine) emit(event webmirror.ProgressEvent) {
	if e.Progress != nil {
		e.Progress(event)
	}
}

func (e *Engine) workerCount() int {
	n := e.Workers
	if n <= 0 {
		n = webmirror.DefaultMaxWorkers
	}
	if n < webmirror.MinWorkers {
		n = webmirror.MinWorkers
	}
	if n > webmirror.MaxWorkers {
		n = webmirror.MaxWorkers
	}
	return n
}

func (e *Engine) jobBudget() time.Duration {
	if e.JobBudget <= 0 {
		return webmirror.DefaultJobBudget
	}
	return e.JobBudget
}

// classify maps context deadline errors onto the timeout code; everything
// else keeps its application code (or becomes EINTERNAL).
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return webmirror.Errorf(webmirror.ETIMEOUT, "job budget exceeded: %v", err)
	}
	return err
}
