package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"boorudl/pkg/danbooru"
	"boorudl/pkg/logger"
	"boorudl/pkg/ui"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the board for tags matching a prefix",
	Long: `Search the board's tag index for tags starting with the given
term, ordered by post count. Use it to find the exact tag spelling
before starting a download.`,
	Example: `  # Find tags starting with "blue"
  boorudl search blue

  # Underscores work the same way as in downloads
  boorudl search blue_sk`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	term := strings.TrimSpace(args[0])
	if term == "" {
		ui.PrintError("A non-empty search term is required")
		os.Exit(1)
	}

	cfg := loadConfigOrExit()
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	client := danbooru.NewClient(
		cfg.Board.BaseURL,
		cfg.Board.UserAgent,
		cfg.Download.RequestTimeout,
		cfg.Download.DownloadTimeout,
		resolveCredentials(cfg),
		logger.GetLogger(),
	)

	tags, err := client.SearchTags(context.Background(), term)
	if err != nil {
		logger.WithError(err).Error("tag search failed")
		ui.PrintError("Search failed", err.Error())
		os.Exit(1)
	}

	if len(tags) == 0 {
		ui.PrintInfo("No tags found for", term)
		return
	}

	for _, tag := range tags {
		fmt.Printf("%-40s %10d  %s\n", tag.Name, tag.PostCount, ui.Dim(tag.CategoryName()))
	}
}
