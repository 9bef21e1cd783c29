package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hybridsearch/internal/app"
	"github.com/kailas-cloud/hybridsearch/internal/config"
	logpkg "github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
	documentrepo "github.com/kailas-cloud/hybridsearch/internal/repository/document"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/hybridsearch/internal/usecase/embedding"
	"github.com/kailas-cloud/hybridsearch/internal/version"
)

//go:embed corpus.yaml
var defaultCorpus []byte

// corpus is the on-disk seed format.
type corpus struct {
	Documents []documentuc.Draft `yaml:"documents"`
}

// inserter is the subset of the document service the seeder needs.
type inserter interface {
	InsertBatch(ctx context.Context, drafts []documentuc.Draft) []documentuc.Result
}

type seedOptions struct {
	file       string
	configPath string
	env        string
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a document corpus into the search store",
		Long: `Seed embeds every document of a YAML corpus and inserts it into the
document store configured for the current environment.

Without --file the built-in demo corpus of 20 documents is used.`,
		Version:       version.String(),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.SetVersionTemplate("seed version {{.Version}}\n")

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "YAML corpus file (default: built-in demo corpus)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file path (default: config/<env>.yaml)")
	cmd.Flags().StringVar(&opts.env, "env", config.GetEnv(), "Environment name used to locate the config")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and validate the corpus without embedding or storing")

	return cmd
}

func runSeed(ctx context.Context, out io.Writer, opts seedOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	drafts, err := loadCorpus(opts.file)
	if err != nil {
		return err
	}

	if opts.dryRun {
		fmt.Fprintf(out, "Corpus OK: %d documents (dry run, nothing stored)\n", len(drafts))
		for i, d := range drafts {
			fmt.Fprintf(out, "  %2d. %s\n", i+1, d.Title)
		}
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(opts.env, logpkg.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	store, err := app.OpenStore(ctx, &cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	cache, err := app.NewEmbeddingCache(&cfg, store)
	if err != nil {
		return fmt.Errorf("create embedding cache: %w", err)
	}
	embedder := app.BuildEmbedder(app.NewProvider(&cfg, logger), cache, &cfg, embeddinguc.PurposeDocument, logger)

	svc, err := documentuc.New(documentrepo.New(store), embedder, cfg.Embedding.Dimensions, cfg.Ingest.Workers, logger)
	if err != nil {
		return fmt.Errorf("create document service: %w", err)
	}
	defer svc.Release()

	logger.Info("Seeding corpus", zap.Int("documents", len(drafts)), zap.String("driver", cfg.Database.Driver))
	return seed(ctx, out, svc, drafts)
}

// seed inserts drafts and prints one line per document. Failed items are reported and
// make the command exit non-zero after the whole corpus was attempted.
func seed(ctx context.Context, out io.Writer, svc inserter, drafts []documentuc.Draft) error {
	results := svc.InsertBatch(ctx, drafts)

	var failed int
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", drafts[i].Title, r.Err)
			continue
		}
		fmt.Fprintf(out, "  ok %4d  %s\n", r.Document.ID(), r.Document.Title())
	}

	fmt.Fprintf(out, "Seeding complete: %d inserted, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func loadCorpus(path string) ([]documentuc.Draft, error) {
	data := defaultCorpus
	if path != "" {
		b, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
		data = b
	}
	return parseCorpus(data)
}

func parseCorpus(data []byte) ([]documentuc.Draft, error) {
	var c corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(c.Documents) == 0 {
		return nil, errors.New("corpus has no documents")
	}
	for i, d := range c.Documents {
		if d.Title == "" || d.Body == "" {
			return nil, fmt.Errorf("corpus document %d: title and body are required", i+1)
		}
	}
	return c.Documents, nil
}

func loadConfig(opts seedOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(opts.env)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
