package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rosterhq/roster-sdk/modules/roster/importer"
	"github.com/rosterhq/roster-sdk/modules/roster/infrastructure/persistence"
	"github.com/rosterhq/roster-sdk/modules/roster/services"
	"github.com/rosterhq/roster-sdk/pkg/configuration"
	"github.com/rosterhq/roster-sdk/pkg/logging"
)

type importCmdOptions struct {
	tenantID  uuid.UUID
	inputPath string
	kind      string
	apply     bool
	batchSize int
	workers   int
}

func newImportCmd() *cobra.Command {
	var opts importCmdOptions
	var tenant string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import athletes or measurements from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputPath, "input", "", "Input CSV file (required)")
	cmd.Flags().StringVar(&opts.kind, "kind", string(importer.KindAthlete), "Record kind: athlete or measurement")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Apply changes to DB (default is dry-run)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Max rows per batch (default from config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent batch workers (default from config)")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")

	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("input")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(strings.TrimSpace(tenant))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --tenant: %w", err))
		}
		opts.tenantID = id
		switch importer.Kind(opts.kind) {
		case importer.KindAthlete, importer.KindMeasurement:
		default:
			return withCode(exitUsage, fmt.Errorf("unsupported --kind: %s", opts.kind))
		}
		return nil
	}

	return cmd
}

func runImport(ctx context.Context, opts importCmdOptions) error {
	cfg := configuration.Use()
	if opts.batchSize <= 0 {
		opts.batchSize = cfg.Import.MaxBatchSize
	}
	if opts.workers <= 0 {
		opts.workers = cfg.Import.Workers
	}

	raw, err := os.ReadFile(opts.inputPath)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("read %s: %w", opts.inputPath, err))
	}

	if cfg.Prometheus.Enabled {
		go serveMetrics(cfg.Prometheus)
	}

	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()

	svc := services.NewImportService(
		persistence.NewAthleteRepository(pool),
		persistence.NewTeamRepository(pool),
		persistence.NewMeasurementRepository(pool),
		logging.ConsoleLogger(cfg.LogrusLogLevel()),
	)

	result, err := svc.Run(ctx, opts.tenantID, string(raw), services.ImportOptions{
		Kind:         importer.Kind(opts.kind),
		MaxBatchSize: opts.batchSize,
		Workers:      opts.workers,
		Delimiter:    rune(cfg.Import.Delimiter[0]),
		DryRun:       !opts.apply,
	})
	if err != nil {
		return withCode(exitValidation, err)
	}

	printImportResult(result, opts.apply)
	if len(result.Errors) > 0 {
		return withCode(exitValidation, fmt.Errorf("%d row(s) failed validation or write-back", len(result.Errors)))
	}
	return nil
}

func printImportResult(result importer.AggregatedImportResult, applied bool) {
	mode := "dry_run"
	if applied {
		mode = "applied"
	}
	fmt.Printf("mode=%s rows=%d created=%d updated=%d matched=%d skipped=%d\n",
		mode, result.TotalRows,
		result.Summary.Created, result.Summary.Updated,
		result.Summary.Matched, result.Summary.Skipped)

	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Printf("error: [batch %d] %s\n", e.Batch, e.Error())
	}
	for _, t := range result.CreatedTeams {
		fmt.Printf("created team: %s (%s)\n", t.Label, t.ID)
	}
	if logrus.GetLevel() >= logrus.DebugLevel {
		for _, r := range result.RowResults {
			fmt.Printf("row %d: %s tier=%s confidence=%d\n", r.Line, r.Action, r.Tier, r.Confidence)
		}
	}
}
