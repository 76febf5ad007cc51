// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noahsarkproj/shopmanual/internal/audit"
	"github.com/noahsarkproj/shopmanual/internal/catalogue"
	"github.com/noahsarkproj/shopmanual/internal/config"
	"github.com/noahsarkproj/shopmanual/internal/fetch"
	"github.com/noahsarkproj/shopmanual/internal/remote"
	"github.com/noahsarkproj/shopmanual/internal/schema"
	"github.com/noahsarkproj/shopmanual/internal/structure"
	"github.com/noahsarkproj/shopmanual/internal/structure/parsers"
	"github.com/noahsarkproj/shopmanual/internal/targets"
)

var (
	// Global flags
	verbose    bool
	configPath string
	outputPath string
	pdbBaseURL string

	// Audit flags
	targetsPath string
	batchSize   int
	push        bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shopmanual",
	Short: "Audit biological structures into the Shop Manual catalogue",
	Long: `shopmanual fetches macromolecular structures from the RCSB PDB, extracts
their atom records and quantum-relevant features, scores them and writes the
resulting catalogue entries to a JSON Shop Manual.

Run without a sub-command to audit the configured targets and quantum
candidates.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runAudit,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "shopmanual.yaml", "Config file (defaults apply when missing)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "out", "o", "", "Shop Manual path (or set "+config.EnvOutput+")")
	rootCmd.PersistentFlags().StringVar(&pdbBaseURL, "pdb-base-url", "", "Override the PDB download base URL")

	rootCmd.Flags().StringVarP(&targetsPath, "targets", "t", "", "YAML or JSON list of structural targets")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Targets per batch (default from config)")
	rootCmd.Flags().BoolVar(&push, "push", false, "Push every entry to the remote catalogue after the audit")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(fetchMapCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if outputPath != "" {
		cfg.OutputPath = outputPath
	}
	if pdbBaseURL != "" {
		cfg.Fetch.PDBBaseURL = pdbBaseURL
	}
	if targetsPath != "" {
		cfg.TargetsFile = targetsPath
	}
	if batchSize != 0 {
		cfg.BatchSize = batchSize
	}
	return cfg, nil
}

// newHTTPClient returns the client shared by the archive and remote catalogue calls.
func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Fetch.RequestTimeout()}
}

func newFetchClient(cfg *config.Config) *fetch.Client {
	opts := append([]fetch.Option{fetch.WithHTTPClient(newHTTPClient(cfg))}, cfg.FetchOptions()...)
	return fetch.NewClient(append(opts, fetch.WithLogger(logger))...)
}

// newAuditor builds an Auditor whose batch hook reports progress to progress
// and, with flush_each_batch, saves the catalogue after every batch.
func newAuditor(cfg *config.Config, manual *catalogue.Catalogue, progress io.Writer) (*audit.Auditor, error) {
	opts := []audit.Option{
		audit.WithLogger(logger),
		audit.WithBaselineScore(cfg.Scoring.BaselineCategoryScore),
		audit.WithQuantumEvidence(cfg.Scoring.QuantumEvidence),
	}
	if cfg.Parser.CollectDiagnostics {
		opts = append(opts, audit.WithRegistry(structure.NewRegistry(
			parsers.NewPDBParser(parsers.WithDiagnostics()),
			parsers.NewDocumentParser(),
		)))
	}
	path, flush := cfg.OutputPath, cfg.FlushEachBatch
	opts = append(opts, audit.WithBatchHook(func(_ context.Context, batch int, entries []catalogue.Entry) error {
		fmt.Fprintf(progress, "Audited batch of %d structures\n", len(entries))
		if !flush {
			return nil
		}
		logger.Debug("Flushing Shop Manual", zap.Int("batch", batch), zap.String("path", path))
		return manual.SaveFile(path)
	}))
	return audit.New(newFetchClient(cfg), manual, opts...)
}

func loadTargets(cfg *config.Config, v *schema.Validator) ([]targets.Target, error) {
	if cfg.TargetsFile == "" {
		return targets.Defaults(), nil
	}
	return targets.Load(cfg.TargetsFile, v)
}

func newRemoteClient(cfg *config.Config) (*remote.Client, error) {
	return remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIKey, newHTTPClient(cfg))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runAudit audits the structural targets in batches, then the quantum
// candidates, and saves the catalogue.
func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	v, err := schema.NewValidator()
	if err != nil {
		return err
	}
	list, err := loadTargets(cfg, v)
	if err != nil {
		return err
	}
	if err := targets.ValidateCandidates(cfg.Quantum, v); err != nil {
		return err
	}

	manual := catalogue.New()
	auditor, err := newAuditor(cfg, manual, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if _, err := auditor.AutoRun(ctx, list, cfg.BatchSize); err != nil {
		return err
	}
	for _, c := range cfg.Quantum {
		if _, err := auditor.AuditQuantumCandidate(ctx, c.PDB, c.PartID, c.Name); err != nil {
			return err
		}
	}

	if err := manual.SaveFile(cfg.OutputPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Audit complete. Shop Manual saved as '%s'.\n", cfg.OutputPath)

	if push {
		return pushAll(ctx, cfg, manual, v)
	}
	return nil
}

// pushAll validates every entry before the first push.
func pushAll(ctx context.Context, cfg *config.Config, manual *catalogue.Catalogue, v *schema.Validator) error {
	client, err := newRemoteClient(cfg)
	if err != nil {
		return err
	}
	entries := manual.Entries()
	for _, e := range entries {
		if err := v.ValidateEntry(e); err != nil {
			return fmt.Errorf("refusing to push: %w", err)
		}
	}
	for _, e := range entries {
		if _, err := client.PushEntry(ctx, e); err != nil {
			return err
		}
		logger.Info("Pushed entry", zap.String("part_id", e.PartID()))
	}
	return nil
}
