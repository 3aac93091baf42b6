package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"charm.land/log/v2"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/postlinks/extract"
	"github.com/Gaurav-Gosain/postlinks/output"
	"github.com/Gaurav-Gosain/postlinks/scraper"
	"github.com/Gaurav-Gosain/postlinks/tui"
)

type config struct {
	Selector  string
	Attr      string
	Output    string
	Format    string
	Timeout   time.Duration
	UserAgent string
	WordWrap  int
	Quiet     bool
}

func NewRootCmd() *cobra.Command {
	cfg := &config{}

	cmd := &cobra.Command{
		Use:   "postlinks [urls...]",
		Short: "Extract unique post links from search result pages",
		Long:  "Fetches search result pages, selects link elements by CSS class and prints each unique post URL once.\nQuery strings are stripped before deduplication.",
		Example: `  # Scrape the default search page
  postlinks

  # Scrape a page, write JSON lines to a file
  postlinks -o posts.jsonl "https://towardsdatascience.com/search?q=golang"

  # Pipe URLs from a file, custom selector, CSV to stdout
  cat urls.txt | postlinks -s "a.post-title" -f csv`,
		RunE: func(c *cobra.Command, args []string) error {
			return run(c.Context(), cfg, args, c.OutOrStdout())
		},
		// Allow positional args (URLs) even though fang adds subcommands.
		TraverseChildren: true,
	}

	cmd.Flags().StringVarP(&cfg.Selector, "selector", "s", extract.DefaultSelector, "CSS selector for link elements")
	cmd.Flags().StringVarP(&cfg.Attr, "attr", "a", extract.DefaultAttr, "Attribute holding the link target")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "Write records to file (default: stdout)")
	cmd.Flags().StringVarP(&cfg.Format, "format", "f", "", "Record format: jsonl, json, csv, yaml (default: from --output extension, else jsonl)")
	cmd.Flags().DurationVarP(&cfg.Timeout, "timeout", "t", scraper.DefaultTimeout, "Per page request timeout")
	cmd.Flags().StringVar(&cfg.UserAgent, "user-agent", "", "User-Agent header (default: colly's)")
	cmd.Flags().IntVarP(&cfg.WordWrap, "word-wrap", "w", 80, "Word wrap width for terminal rendering")
	cmd.Flags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "Disable progress output")

	return cmd
}

func run(ctx context.Context, cfg *config, args []string, stdout io.Writer) error {
	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}

	opts := scrapeOptions(cfg, collectURLs(args))

	var session *scraper.Session
	if cfg.Quiet {
		session, err = scraper.Run(ctx, opts)
	} else if cfg.Output == "" {
		// Records go to stdout; keep progress on stderr as plain logs.
		session, err = tui.RunWithLogs(ctx, opts, log.New(os.Stderr))
	} else {
		session, err = tui.RunWithProgress(ctx, opts)
	}
	if err != nil {
		return fmt.Errorf("scraping failed: %w", err)
	}
	if session == nil {
		return fmt.Errorf("scraping failed: %w", context.Canceled)
	}

	output.ReportErrors(os.Stderr, session.Pages)
	records := session.Records()

	if cfg.Output != "" {
		if err := output.WriteFile(cfg.Output, records, format); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d posts to %s\n", len(records), cfg.Output)
		return nil
	}

	// A bare interactive run renders a readable list instead of raw records.
	if cfg.Format == "" && stdout == os.Stdout && output.IsTerminal() {
		return output.RenderTerminal(records, cfg.WordWrap)
	}

	return output.Write(stdout, records, format)
}

// scrapeOptions maps flags onto scraper options. Empty urls are passed
// through; scraper.Run substitutes scraper.DefaultStartURL.
func scrapeOptions(cfg *config, urls []string) scraper.Options {
	return scraper.Options{
		URLs:      urls,
		Selector:  cfg.Selector,
		Attr:      cfg.Attr,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	}
}

func resolveFormat(cfg *config) (output.Format, error) {
	if cfg.Format != "" {
		return output.ParseFormat(cfg.Format)
	}
	if cfg.Output != "" {
		return output.FormatFromPath(cfg.Output), nil
	}
	return output.JSONLines, nil
}

func collectURLs(args []string) []string {
	urls := make([]string, 0, len(args))
	urls = append(urls, args...)

	// Read from stdin if piped (not a terminal).
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		urls = append(urls, readURLs(os.Stdin)...)
	}

	return urls
}

// readURLs returns the non-blank lines of r.
func readURLs(r io.Reader) []string {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}
	return urls
}
