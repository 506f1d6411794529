package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kyuscout/kyuscout/internal/adapter"
	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/pipeline"
	"github.com/kyuscout/kyuscout/internal/types"
)

var (
	cfgFile string
	verbose bool

	siteName        string
	keyword         string
	area            string
	prefecture      string
	employmentType  string
	qualification   string
	workType        string
	jobCategory     string
	facility        string
	freeText        string
	beautySurgery   bool
	beautyDerm      bool
	quota           int
	noDetails       bool
	noContacts      bool
	outputDir       string
	outputFormat    string
	placesKey       string
	enableBrowser   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kyuscout",
		Short: "kyuscout collects clinic job listings from Japanese job boards",
		Long: `kyuscout collects clinic job listings from Japanese job boards,
enriches them from detail pages and public contact sources, and exports a
uniform contact sheet.

Supported boards: 求人ボックス, とらばーゆ, 美容ナース, メディカルコンシェルジュ, Indeed.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(sitesCmd())
	rootCmd.AddCommand(optionsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search one board and export the collected records",
		RunE:  runSearch,
	}

	cmd.Flags().StringVarP(&siteName, "site", "s", "kyujinbox", "board to search (see 'kyuscout sites')")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "occupation or industry keyword (e.g. 看護師)")
	cmd.Flags().StringVarP(&area, "area", "a", "", "region: prefecture, city or station name")
	cmd.Flags().StringVar(&prefecture, "prefecture", "", "two-digit prefecture code (13 = 東京都)")
	cmd.Flags().StringVar(&employmentType, "employment", "", "employment type code")
	cmd.Flags().StringVar(&qualification, "qualification", "", "license code (1 = 正看護師)")
	cmd.Flags().StringVar(&workType, "worktype", "", "work type code (form-based boards)")
	cmd.Flags().StringVar(&jobCategory, "job", "", "job category code (form-based boards)")
	cmd.Flags().StringVar(&facility, "facility", "", "facility category code (form-based boards)")
	cmd.Flags().StringVar(&freeText, "freeword", "", "free-word facet for form-based boards")
	cmd.Flags().BoolVar(&beautySurgery, "beauty-surgery", false, "filter to cosmetic surgery departments")
	cmd.Flags().BoolVar(&beautyDerm, "beauty-dermatology", false, "filter to cosmetic dermatology departments")
	cmd.Flags().IntVarP(&quota, "quota", "n", 0, "maximum records to collect (0 = config default)")
	cmd.Flags().BoolVar(&noDetails, "no-details", false, "skip detail-page enrichment")
	cmd.Flags().BoolVar(&noContacts, "no-contacts", false, "skip contact resolution")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format: csv, jsonl, mongodb")
	cmd.Flags().StringVar(&placesKey, "places-key", "", "Google Places API key (overrides config)")
	cmd.Flags().BoolVar(&enableBrowser, "browser", false, "enable the headless browser fetcher")

	return cmd
}

func runSearch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := cfg.Logging.NewLogger(verbose)

	caps := config.DetectCapabilities()
	if !caps.WebSearch {
		logger.Info("restricted network detected, search-engine contact source disabled")
	}

	pipe, err := pipeline.New(cfg, caps, logger)
	if err != nil {
		return err
	}
	defer pipe.Close(context.Background())

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	q := types.SearchQuery{
		Keyword:           keyword,
		Area:              area,
		PrefectureCode:    prefecture,
		EmploymentType:    employmentType,
		Qualification:     qualification,
		WorkType:          workType,
		JobCategory:       jobCategory,
		FacilityCategory:  facility,
		FreeText:          freeText,
		BeautySurgery:     beautySurgery,
		BeautyDermatology: beautyDerm,
		Quota:             quota,
		FetchDetails:      !noDetails,
		ResolveContacts:   !noContacts,
	}

	logger.Info("starting search",
		"site", siteName,
		"keyword", keyword,
		"area", area,
		"quota", quota)

	result, err := pipe.Run(ctx, siteName, q)
	if err != nil {
		return err
	}

	printSummary(result)
	return nil
}

func printSummary(r *pipeline.Result) {
	fmt.Printf("\n✅ %s: %d records in %s\n", r.SiteLabel, len(r.Records), r.Duration.Round(time.Millisecond))
	if r.PageState != nil {
		fmt.Printf("   Pages:     %d scanned, stop: %s", r.PageState.Pages, r.PageState.Reason)
		if r.PageState.Duplicates > 0 {
			fmt.Printf(" (%d duplicates skipped)", r.PageState.Duplicates)
		}
		fmt.Println()
	}
	if r.EnrichStats != nil {
		fmt.Printf("   Details:   %d enriched, %d skipped, %d failed\n",
			r.EnrichStats.Enriched, r.EnrichStats.Skipped, r.EnrichStats.Failed)
	}
	if r.ResolveStats != nil {
		fmt.Printf("   Contacts:  %d resolved of %d attempted\n",
			r.ResolveStats.Resolved, r.ResolveStats.Attempted)
	}
	if cov := r.Coverage(); cov.Total > 0 {
		fmt.Printf("   Coverage:  %d facilities, %d addresses, %d/%d with phone\n",
			cov.DistinctFacilities, cov.DistinctAddresses, cov.WithPhone, cov.Total)
	}
	if r.Destination != "" {
		fmt.Printf("   Output:    %s\n", r.Destination)
	}
	if len(r.Records) == 0 {
		fmt.Println("\n💡 No records collected. Try a broader keyword or another board ('kyuscout sites').")
	}
}

func sitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the supported job boards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := config.DefaultConfig().Logging.NewLogger(verbose)
			registry := adapter.NewRegistry(logger)
			for _, a := range registry.All() {
				transport := ""
				if a.FetcherType() == "browser" {
					transport = "  (requires --browser)"
				}
				fmt.Printf("  %-12s %s%s\n", a.Name(), a.Label(), transport)
			}
			return nil
		},
	}
}

func optionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options [site]",
		Short: "Show a board's live search facet options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := cfg.Logging.NewLogger(verbose)

			pipe, err := pipeline.New(cfg, config.DetectCapabilities(), logger)
			if err != nil {
				return err
			}
			defer pipe.Close(context.Background())

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cache := adapter.NewOptionCache(time.Hour)
			sets, err := pipe.FetchOptions(ctx, args[0], cache)
			if err != nil {
				return err
			}
			for _, set := range sets {
				fmt.Printf("%s:\n", set.Facet)
				for _, opt := range set.Options {
					fmt.Printf("  %-6s %s\n", opt.Value, opt.Label)
				}
			}
			return nil
		},
	}
	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Client:\n")
			fmt.Printf("  Request Timeout:   %s\n", cfg.Client.RequestTimeout)
			fmt.Printf("  Max Retries:       %d\n", cfg.Client.MaxRetries)
			fmt.Printf("  Requests/sec:      %.1f\n", cfg.Client.RequestsPerSec)
			fmt.Printf("  Courtesy Delay:    %s\n", cfg.Client.CourtesyDelay)
			fmt.Printf("\nPagination:\n")
			fmt.Printf("  Default Quota:     %d\n", cfg.Paginate.DefaultQuota)
			fmt.Printf("  Max Pages:         %d\n", cfg.Paginate.MaxPages)
			fmt.Printf("  Max Empty Pages:   %d\n", cfg.Paginate.MaxEmptyPages)
			fmt.Printf("\nEnrichment:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Enrich.Enabled)
			fmt.Printf("  Error Budget Cap:  %d\n", cfg.Enrich.ErrorBudgetCap)
			fmt.Printf("\nResolver:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Resolve.Enabled)
			fmt.Printf("  Places API Key:    %v\n", cfg.Resolve.PlacesAPIKey != "")
			fmt.Printf("  Web Query:         %v\n", !cfg.Resolve.DisableWebQuery)
			fmt.Printf("\nBrowser:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Browser.Enabled)
			fmt.Printf("  Headless:          %v\n", cfg.Browser.Headless)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Dir:        %s\n", cfg.Storage.OutputDir)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("kyuscout %s\n", config.Version)
		},
	}
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if outputDir != "" {
		cfg.Storage.OutputDir = outputDir
	}
	if outputFormat != "" {
		cfg.Storage.Type = outputFormat
	}
	if placesKey != "" {
		cfg.Resolve.PlacesAPIKey = placesKey
	}
	if enableBrowser {
		cfg.Browser.Enabled = true
	}
}
