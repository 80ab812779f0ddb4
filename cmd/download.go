package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/brogergvhs/mangapdf/internal/chapters"
	"github.com/brogergvhs/mangapdf/internal/config"
	"github.com/brogergvhs/mangapdf/internal/document"
	"github.com/brogergvhs/mangapdf/internal/fetch"
	"github.com/brogergvhs/mangapdf/internal/metrics"
	"github.com/brogergvhs/mangapdf/internal/pipeline"
	"github.com/brogergvhs/mangapdf/internal/providers"
	"github.com/brogergvhs/mangapdf/internal/scraper"
	"github.com/brogergvhs/mangapdf/internal/ui"
	"github.com/brogergvhs/mangapdf/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// selection
	flagURL   string
	flagRange string
	flagList  string

	// runtime
	flagOutput        string
	flagFormat        string
	flagKeepFolders   bool
	flagDryRun        bool
	flagSeriesWorkers int
	flagTimeout       int
	flagRetries       int
	flagRetryDelay    int
	flagMetricsFile   string

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagCloudflare bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download [url...]",
		Short: "Download manga chapters and produce one PDF (or CBZ) per chapter. Uses the defaults from the selected config, overwritten by CLI flags",
		Long: "Each URL is the first chapter of a series on a supported site (see `mangapdf sites`).\n" +
			"With several URLs every series gets its own sub-folder of --output.",
		RunE: runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagURL, "url", "", "first chapter URL of a series")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "download range of chapters by index (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "download specific chapter indices (e.g. 1,3,5)")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for chapter documents")
	downloadCmd.Flags().StringVar(&flagFormat, "format", "", "output format: pdf or cbz")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", false, "keep the downloaded page folders")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list the chapters that would be downloaded, don't download")
	downloadCmd.Flags().IntVar(&flagSeriesWorkers, "series-workers", 1, "series downloaded in parallel")
	downloadCmd.Flags().IntVar(&flagTimeout, "timeout", 20, "seconds per request attempt")
	downloadCmd.Flags().IntVar(&flagRetries, "retries", 3, "attempts per request")
	downloadCmd.Flags().IntVar(&flagRetryDelay, "retry-delay", 2, "seconds between attempts")
	downloadCmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus counters to this file when done")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	downloadCmd.Flags().BoolVar(&flagCloudflare, "cloudflare", false, "use a browser-like TLS transport for Cloudflare-protected sites")

	rootCmd.AddCommand(downloadCmd)
}

func loadDownloadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	opts := config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		Output:           flagOutput,
		Format:           flagFormat,
		KeepFolders:      flagKeepFolders,
		DefaultURL:       flagURL,
		DefaultRange:     flagRange,
		DefaultList:      flagList,
		Cookie:           flagCookie,
		CookieFile:       flagCookieFile,
		UserAgent:        flagUserAgent,
		CloudflareBypass: flagCloudflare,
		MetricsFile:      flagMetricsFile,
	}

	// numeric flags only count when given, so profile values survive defaults
	if cmd.Flags().Changed("series-workers") {
		opts.SeriesWorkers = flagSeriesWorkers
	}
	if cmd.Flags().Changed("timeout") {
		opts.TimeoutSeconds = flagTimeout
	}
	if cmd.Flags().Changed("retries") {
		opts.MaxRetries = flagRetries
	}
	if cmd.Flags().Changed("retry-delay") {
		opts.RetryDelay = flagRetryDelay
	}

	cfg, used, err := config.LoadMerged(opts)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, used, nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := loadDownloadConfig(cmd)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	defer logSvc.Sync()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config file: %s\n", usedPath)
	fmt.Fprintln(out, "Full config:")
	cfg.Print(out)
	fmt.Fprintln(out)

	urls := args
	if flagURL != "" {
		urls = append([]string{flagURL}, urls...)
	}
	if len(urls) == 0 && cfg.DefaultURL != "" {
		urls = []string{cfg.DefaultURL}
	}
	if len(urls) == 0 {
		return errors.New("missing URL: pass one or more URLs, --url, or set default_url in config")
	}

	m := metrics.New()
	client := util.NewHTTPClient(util.HTTPClientOptions{
		UserAgent:        util.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      logSvc,
	})
	fetcher := fetch.New(client, fetch.Options{
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		Metrics:    m,
		Log:        logSvc,
	})
	registry := providers.Default()

	ctx, stop := util.InterruptContext(cmd.Context())
	defer stop()

	if flagDryRun {
		return dryRun(ctx, out, registry, fetcher, cfg, urls, logSvc)
	}

	assembler, err := document.New(cfg.Format, logSvc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	pm := ui.NewProgressManager(out)
	stats := &ui.Stats{}
	start := time.Now()
	dirs := seriesDirs(cfg.Output, urls)

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(cfg.SeriesWorkers)

	for i, u := range urls {
		base := dirs[i]

		label := ""
		if len(urls) > 1 {
			label = "[" + filepath.Base(base) + "]"
		}

		g.Go(func() error {
			rep := newReporter(label, pm, logSvc)

			p := pipeline.New(pipeline.Options{
				Registry:  registry,
				Fetcher:   fetcher,
				Assembler: assembler,
				Deliverer: pipeline.LocalDelivery{KeepFolders: cfg.KeepFolders, Log: logSvc},
				BaseDir:   base,
				Range:     cfg.DefaultRange,
				List:      cfg.DefaultList,
				Sink:      rep.handle,
				Metrics:   m,
				Log:       logSvc,
			})

			if err := os.MkdirAll(base, 0755); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", u, err))
				mu.Unlock()
				return nil
			}

			sum, err := p.Run(ctx, u)

			stats.Series.Add(1)
			stats.Delivered.Add(int64(sum.Delivered))
			stats.Skipped.Add(int64(sum.Skipped))
			stats.Failed.Add(int64(sum.Failed))
			stats.Pages.Add(int64(sum.Pages))
			stats.Bytes.Add(sum.Bytes)

			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", u, err))
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()
	pm.Close()

	if ctx.Err() != nil {
		fmt.Fprintln(out, "\nInterrupt received. Cleaning up...")
		cleanupInterrupted(out, dirs, cfg.Output, cfg.KeepFolders)
	}

	stats.Print(out, time.Since(start))

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logSvc.Errorf("cannot write metrics to %s: %v", cfg.MetricsFile, err)
		}
	}

	if ctx.Err() != nil {
		return errors.New("interrupted")
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nAll done.")
	return nil
}

// seriesDirs gives every URL its base folder: output itself for a single URL,
// otherwise a slug sub-folder, numbered when slugs collide.
func seriesDirs(output string, urls []string) []string {
	if len(urls) == 1 {
		return []string{output}
	}

	dirs := make([]string, len(urls))
	seen := map[string]int{}

	for i, u := range urls {
		slug := chapters.SeriesSlug(u)
		seen[slug]++
		if n := seen[slug]; n > 1 {
			slug += "-" + strconv.Itoa(n)
		}
		dirs[i] = filepath.Join(output, slug)
	}

	return dirs
}

func cleanupInterrupted(out io.Writer, dirs []string, output string, keep bool) {
	for _, dir := range dirs {
		if !keep {
			removed, err := util.CleanupUnfinished(dir, chapters.FolderPrefix)
			for _, r := range removed {
				fmt.Fprintf(out, "Removed %s\n", r)
			}
			if err != nil {
				fmt.Fprintf(out, "Error cleaning up %s: %v\n", dir, err)
			}
		}

		if dir != output && util.RemoveIfEmpty(dir) {
			fmt.Fprintf(out, "Removed empty folder: %s\n", dir)
		}
	}

	if util.RemoveIfEmpty(output) {
		fmt.Fprintf(out, "Removed empty output folder: %s\n", output)
	}
}

func dryRun(
	ctx context.Context,
	out io.Writer,
	registry *providers.Registry,
	f fetch.Fetcher,
	cfg *config.Config,
	urls []string,
	log *ui.Logger,
) error {
	var errs []error

	for _, u := range urls {
		site, ok := registry.Resolve(u)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: %w", u, pipeline.ErrUnsupportedSite))
			continue
		}

		found, err := scraper.New(f, site.Adapter, log).GetChapters(ctx, u)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}

		all := chapters.Jobs(found)
		selected := chapters.Filter(all, cfg.DefaultRange, cfg.DefaultList)

		fmt.Fprintf(out, "Dry-run: %s (%s), %d of %d chapters selected.\n\n", u, site.Name, len(selected), len(all))
		for _, j := range selected {
			fmt.Fprintf(out, "%3d) %s\n     -> %s\n", j.Index, j.URL, j.DocumentName(cfg.Format))
		}
		fmt.Fprintln(out)
	}

	return errors.Join(errs...)
}
