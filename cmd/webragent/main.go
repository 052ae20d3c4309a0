package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/models"
	"github.com/FellowTraveler/WebRAgent/internal/services/agent"
	"github.com/FellowTraveler/WebRAgent/internal/services/ingest"
	"github.com/FellowTraveler/WebRAgent/internal/services/llm"
	"github.com/FellowTraveler/WebRAgent/internal/services/retrieval"
	"github.com/FellowTraveler/WebRAgent/internal/services/scraper"
	"github.com/FellowTraveler/WebRAgent/internal/services/websearch"
	"github.com/FellowTraveler/WebRAgent/internal/storage/badger"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	queryText    = flag.String("query", "", "Question to answer")
	strategyName = flag.String("strategy", "", "Decomposition strategy: blind or informed (overrides config)")
	backendName  = flag.String("backend", "", "Retrieval backend: document, web or deep_web (overrides config)")
	modelName    = flag.String("model", "", "LLM model to use; the provider is inferred from the name (overrides config)")
	ingestPath   = flag.String("ingest", "", "Text file to ingest into the document store")
	ingestTitle  = flag.String("title", "", "Title for the ingested document (defaults to the file name)")
	listDocs     = flag.Bool("list", false, "List ingested documents")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("WebRAgent version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, statErr := os.Stat("webragent.toml"); statErr == nil {
			configFiles = append(configFiles, "webragent.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if *strategyName != "" {
		config.Agent.Strategy = strings.ToLower(*strategyName)
	}
	if *backendName != "" {
		config.Search.Backend = strings.ToLower(*backendName)
	}
	if *modelName != "" {
		llm.ApplyModelOverride(config, *modelName)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Debug().
		Str("storage_path", config.Storage.Path).
		Str("backend", config.Search.Backend).
		Str("strategy", config.Agent.Strategy).
		Str("log_level", config.Logging.Level).
		Msg("Resolved configuration")

	// Cancel in-flight work on Ctrl+C
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch {
	case *ingestPath != "":
		err = runIngest(ctx, *ingestPath, *ingestTitle)
	case *listDocs:
		err = runList(ctx)
	case *queryText != "":
		err = runQuery(ctx, *queryText)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Command failed")
	}
}

func openStore() (*badger.Store, error) {
	return badger.NewStore(config.Storage.Path, logger)
}

func runIngest(ctx context.Context, path, title string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := ingest.NewService(store, &config.Ingest, logger)
	doc, err := svc.Ingest(ctx, ingest.Request{
		Title:    title,
		Content:  string(data),
		Metadata: map[string]string{"source": path},
	})
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %q as %s (%d chunks, %s strategy)\n", doc.Title, doc.ID, doc.ChunkCount, doc.Chunking.Strategy)
	return nil
}

func runList(ctx context.Context) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents ingested yet.")
		return nil
	}
	for _, d := range docs {
		fmt.Printf("%s  %-30s  %d chunks  %s\n", d.ID, d.Title, d.ChunkCount, d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runQuery(ctx context.Context, text string) error {
	provider, err := llm.NewProvider(ctx, config, logger)
	if err != nil {
		return err
	}

	deps := retrieval.Dependencies{Provider: provider}

	backendKind, err := models.ParseSourceType(config.Search.Backend)
	if err != nil {
		backendKind = models.SourceTypeDocument
	}

	// Only open the collaborators the selected backend needs
	if backendKind == models.SourceTypeDocument {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Index = store
	} else {
		deps.Search = websearch.NewSearXNGClient(&config.SearXNG, logger)
		if backendKind == models.SourceTypeDeepWeb {
			deps.Fetcher = scraper.NewFetcher(&config.Scraper, logger)
		}
	}

	backend, err := retrieval.NewBackend(&config.Search, deps, logger)
	if err != nil {
		return err
	}

	ctrl := agent.NewController(&config.Agent, provider, backend, config.Search.MaxResults, logger)
	result := ctrl.Run(ctx, models.Query{Text: text})

	printResult(result)
	return nil
}

func printResult(result *models.PipelineResult) {
	fmt.Printf("\nQuery:    %s\n", result.Query)
	fmt.Printf("Strategy: %s\n", result.Strategy)
	fmt.Printf("Model:    %s/%s\n\n", result.ModelInfo.Provider, result.ModelInfo.Model)

	if len(result.Subqueries) > 0 {
		fmt.Println("Subqueries:")
		for i, s := range result.Subqueries {
			fmt.Printf("  %d. %s\n", i+1, s)
		}
		fmt.Println()
	}

	fmt.Println("Answer:")
	fmt.Println(result.Answer)

	if len(result.Contexts) > 0 {
		fmt.Printf("\nSources (%d):\n", len(result.Contexts))
		seen := make(map[string]bool)
		for _, c := range result.Contexts {
			key := c.DocumentID
			if seen[key] {
				continue
			}
			seen[key] = true
			if c.URL != "" {
				fmt.Printf("  - %s (%s)\n", c.DocumentTitle, c.URL)
			} else {
				fmt.Printf("  - %s\n", c.DocumentTitle)
			}
		}
	}

	for _, f := range result.Failures {
		fmt.Printf("\nWarning: %s stage degraded: %s\n", f.Stage, f.Message)
	}
}
