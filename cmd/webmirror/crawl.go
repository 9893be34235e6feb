package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sjseo298/webmirror"
	"github.com/sjseo298/webmirror/confluence"
	"github.com/sjseo298/webmirror/crawl"
	webhttp "github.com/sjseo298/webmirror/http"
	wmslog "github.com/sjseo298/webmirror/slog"
	wmyaml "github.com/sjseo298/webmirror/yaml"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	cfg := deps.Config

	policy, err := webmirror.NewPolicy(
		cfg.Crawling.MaxDepth,
		cfg.Website.BaseDomain,
		cfg.Website.ValidURLPatterns,
		cfg.Website.ExcludePatterns,
	)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}

	creds, err := wmyaml.LoadCredentials(".", cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}

	useAPI, err := cfg.UseAPIDriver(creds)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		fmt.Fprintln(deps.Stderr, "Hint: put CONFLUENCE_EMAIL, CONFLUENCE_TOKEN, and CONFLUENCE_BASE_URL in config/.env")
		return err
	}

	if err := os.MkdirAll(cfg.Output.OutputDir, 0o755); err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot create output directory %s: %v\n", cfg.Output.OutputDir, err)
		return err
	}

	mapper := &webmirror.PathMapper{
		OutputDir: cfg.Output.OutputDir,
		Space:     cfg.Crawling.SpaceName,
		Format:    cfg.Output.Format,
		Wiki:      cfg.IsConfluenceSite(),
	}

	driver, pool, err := c.buildDriver(deps, policy, mapper, creds, useAPI)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}

	var limiter *crawl.DomainLimiter
	if delay := cfg.RequestDelay(); delay > 0 {
		limiter = crawl.NewDomainLimiter(1 / delay.Seconds())
	}

	var progress webmirror.ProgressFunc
	var bar *progressBar
	if !c.Quiet {
		bar = newProgressBar(deps.Stderr)
		progress = bar.observe
	}
	if pool != nil && progress != nil {
		pool.Notify = func(resourceURL string) {
			progress(webmirror.ProgressEvent{
				Type:      webmirror.ProgressResource,
				URL:       resourceURL,
				Resources: pool.Count(),
			})
		}
	}

	engine := &crawl.Engine{
		Store:    deps.Store,
		Driver:   wmslog.NewLoggingDriver(driver, deps.Logger),
		Policy:   policy,
		Mapper:   mapper,
		StartURL: cfg.Website.StartURL,
		Workers:  cfg.Workers(),
		Limiter:  limiter,
		Logger:   deps.Logger,
		Progress: progress,
	}

	sessionID := uuid.NewString()
	startedAt := time.Now()
	if err := deps.Store.StartSession(deps.Ctx, sessionID, startedAt); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(err))
		return err
	}

	result, runErr := engine.Run(deps.Ctx)
	if bar != nil {
		bar.finish()
	}

	if result != nil {
		session := &webmirror.CrawlSession{
			ID:         sessionID,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
			Downloaded: result.Downloaded,
			Failed:     result.Failed,
		}
		if pool != nil {
			session.Resources = pool.Count()
		}
		if err := deps.Store.FinishSession(deps.Ctx, session); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: could not record session: %s\n", webmirror.ErrorMessage(err))
		}

		fmt.Fprintf(deps.Stdout, "Downloaded %d pages (%d failed, %d skipped) in %s\n",
			result.Downloaded, result.Failed, result.Skipped, time.Since(startedAt).Round(time.Second))
	}

	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmirror.ErrorMessage(runErr))
		return runErr
	}
	return nil
}

// buildDriver selects and wires the site driver for this run. The resource
// pool is returned alongside so the command can report its totals.
func (c *CrawlCmd) buildDriver(deps *Dependencies, policy *webmirror.Policy, mapper *webmirror.PathMapper, creds *webmirror.Credentials, useAPI bool) (webmirror.SiteDriver, *webhttp.ResourcePool, error) {
	cfg := deps.Config

	if useAPI {
		client, err := confluence.NewClient(&http.Client{Timeout: webmirror.DefaultReadTimeout}, creds)
		if err != nil {
			return nil, nil, err
		}
		driver := confluence.NewDriver(client, deps.Store, policy, mapper)
		driver.Output = cfg.Output.Confluence
		return driver, nil, nil
	}

	client, err := webhttp.NewPageClient()
	if err != nil {
		return nil, nil, err
	}

	cookies, err := webhttp.LoadCookieFile(cfg.Files.CookiesFile)
	if err != nil {
		return nil, nil, err
	}
	if err := webhttp.SetCookies(client, cfg.Website.BaseURL, cookies); err != nil {
		return nil, nil, err
	}

	driver := webhttp.NewDriver(client, policy, mapper)
	driver.UserAgent = cfg.Advanced.UserAgent
	driver.Headers = cfg.Advanced.Headers

	var pool *webhttp.ResourcePool
	if cfg.Content.DownloadResources {
		resourceClient, err := webhttp.NewResourceClient()
		if err != nil {
			return nil, nil, err
		}
		poolDir := filepath.Join(cfg.Output.OutputDir, cfg.Output.ResourcesDir)
		pool, err = webhttp.NewResourcePool(deps.Ctx, resourceClient, deps.Store, poolDir)
		if err != nil {
			return nil, nil, err
		}
		driver.Resources = pool
	}
	return driver, pool, nil
}
