package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"boorudl/internal/downloader"
	"boorudl/pkg/auth"
	"boorudl/pkg/config"
	"boorudl/pkg/danbooru"
	apperrors "boorudl/pkg/errors"
	"boorudl/pkg/logger"
	"boorudl/pkg/scraper"
	"boorudl/pkg/ui"
)

var (
	// Download command flags
	tagFlags            []string
	outputDir           string
	baseURL             string
	concurrent          int
	pageConcurrency     int
	excludeGeneral      bool
	excludeSensitive    bool
	excludeQuestionable bool
	excludeExplicit     bool
	anonymous           bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [tag...]",
	Short: "Download all posts matching a set of tags",
	Long: `Download every post matching the given tags and sort the files
into per-rating subfolders of the output directory.

Files are named {score}_{id}.{ext}. Posts whose file already exists are
skipped, so interrupted runs can simply be repeated. Ratings can be
excluded individually; excluded posts are never downloaded.

Anonymous access works for most queries. Tag limits and censored
content depend on the account level, store credentials with
'boorudl auth login' to raise them.`,
	Example: `  # Download everything matching a single tag
  boorudl download blue_sky

  # Multiple tags narrow the search (board tag limits apply)
  boorudl download blue_sky cloud --output ./walls

  # Skip explicit and questionable posts
  boorudl download landscape --exclude-explicit --exclude-questionable

  # More parallel transfers
  boorudl download landscape --concurrent 8

  # Tags can also be given as repeated flags
  boorudl download -t blue_sky -t cloud`,
	Args: cobra.ArbitraryArgs,
	Run:  runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringArrayVarP(&tagFlags, "tag", "t", nil, "search tag, repeatable")
	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads (default: ./output)")
	downloadCmd.Flags().StringVar(&baseURL, "base-url", "", "image board base URL")
	downloadCmd.Flags().IntVar(&concurrent, "concurrent", 3, "number of concurrent downloads")
	downloadCmd.Flags().IntVar(&pageConcurrency, "page-concurrency", 4, "number of listing pages fetched in parallel")
	downloadCmd.Flags().BoolVar(&excludeGeneral, "exclude-general", false, "skip posts rated general")
	downloadCmd.Flags().BoolVar(&excludeSensitive, "exclude-sensitive", false, "skip posts rated sensitive")
	downloadCmd.Flags().BoolVar(&excludeQuestionable, "exclude-questionable", false, "skip posts rated questionable")
	downloadCmd.Flags().BoolVar(&excludeExplicit, "exclude-explicit", false, "skip posts rated explicit")
	downloadCmd.Flags().BoolVar(&anonymous, "anonymous", false, "ignore stored credentials")
}

func runDownload(cmd *cobra.Command, args []string) {
	tags := make([]string, 0, len(args)+len(tagFlags))
	for _, arg := range append(args, tagFlags...) {
		if tag := strings.TrimSpace(arg); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		ui.PrintError("At least one non-empty tag is required")
		os.Exit(1)
	}

	cfg := loadConfigOrExit()

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithFields(map[string]interface{}{
		"version": version,
		"tags":    strings.Join(tags, " "),
	}).Info("starting download")

	creds := resolveCredentials(cfg)

	client := danbooru.NewClient(
		cfg.Board.BaseURL,
		cfg.Board.UserAgent,
		cfg.Download.RequestTimeout,
		cfg.Download.DownloadTimeout,
		creds,
		logger.GetLogger(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Tags", strings.Join(tags, " "))
	ui.PrintInfo("Output", cfg.Output.Directory)

	s := scraper.New(client, logger.GetLogger())

	var tracker *ui.StatusTracker
	opts := scraper.Options{
		Tags:        tags,
		OutputDir:   cfg.Output.Directory,
		FallbackDir: cfg.Output.FallbackDirectory,
		Exclusions: danbooru.Exclusions{
			General:      excludeGeneral,
			Sensitive:    excludeSensitive,
			Questionable: excludeQuestionable,
			Explicit:     excludeExplicit,
		},
		PageConcurrency:     cfg.Download.PageConcurrency,
		ConcurrentDownloads: cfg.Download.ConcurrentDownloads,
		OnPostsFetched: func(total int) {
			tracker = ui.NewStatusTracker(total, quiet)
		},
		OnResult: func(r downloader.Result) {
			if tracker != nil {
				tracker.Record(r)
			}
		},
	}

	report, err := s.Run(ctx, opts)
	if tracker != nil {
		tracker.Finish()
	}
	if err != nil {
		logger.WithError(err).Error("download run aborted")
		switch {
		case errors.Is(err, apperrors.ErrNoResults):
			ui.PrintError("No posts found for tags", strings.Join(tags, " "))
		case errors.Is(err, apperrors.ErrNothingToDownload):
			ui.PrintError("Every matching post was excluded by the rating filters")
		case errors.Is(err, context.Canceled):
			ui.PrintWarning("Interrupted")
		default:
			ui.PrintError("Download failed", err.Error())
		}
		os.Exit(1)
	}

	printReport(report)
}

// resolveCredentials picks the credential pair for the run: explicit
// config/env values win, then the stored pair. A missing pair means
// anonymous access, not an error.
func resolveCredentials(cfg *config.Config) *auth.Credentials {
	if anonymous {
		return nil
	}

	if cfg.Board.Login != "" && cfg.Board.APIKey != "" {
		return &auth.Credentials{Login: cfg.Board.Login, APIKey: cfg.Board.APIKey}
	}

	manager, err := auth.NewManager()
	if err != nil {
		return nil
	}
	creds, err := manager.Retrieve("")
	if err != nil {
		logger.Info("no stored credentials, using anonymous access")
		return nil
	}
	ui.PrintInfo("Account", creds.Login)
	return creds
}

func printReport(report *scraper.Report) {
	fmt.Println()
	ui.PrintSuccess("Download complete")
	ui.PrintInfo("Pages", fmt.Sprintf("%d", report.TotalPages))
	if report.FailedPages > 0 {
		ui.PrintWarning("Failed pages", report.FailedPages)
	}
	ui.PrintInfo("Downloaded", fmt.Sprintf("%d", report.Summary.Downloaded))
	if report.Summary.AlreadyPresent > 0 {
		ui.PrintInfo("Already present", fmt.Sprintf("%d", report.Summary.AlreadyPresent))
	}
	if report.Summary.Excluded > 0 {
		ui.PrintInfo("Excluded", fmt.Sprintf("%d", report.Summary.Excluded))
	}
	if report.Summary.Failed > 0 {
		ui.PrintWarning("Failed", report.Summary.Failed)
	}
	ui.PrintInfo("Saved to", report.OutputDir)
}

// loadConfigOrExit builds the effective configuration from the global
// and command flags.
func loadConfigOrExit() *config.Config {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if baseURL != "" {
		flags["base-url"] = baseURL
	}
	if concurrent != 3 {
		flags["concurrent-downloads"] = concurrent
	}
	if pageConcurrency != 4 {
		flags["page-concurrency"] = pageConcurrency
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	return cfg
}
