package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rosterhq/roster-sdk/modules/roster/infrastructure/persistence"
	"github.com/rosterhq/roster-sdk/modules/roster/services"
)

type exportOptions struct {
	tenantID   uuid.UUID
	outputPath string
	format     string
	sheetName  string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions
	var tenant string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export athletes from DB into a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "Output file path (required)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: csv or xlsx (default from file extension)")
	cmd.Flags().StringVar(&opts.sheetName, "sheet", "Athletes", "Sheet name for xlsx output")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("output")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(strings.TrimSpace(tenant))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --tenant: %w", err))
		}
		opts.tenantID = id
		if opts.format == "" {
			opts.format = strings.TrimPrefix(filepath.Ext(opts.outputPath), ".")
		}
		switch opts.format {
		case "csv", "xlsx":
		default:
			return withCode(exitUsage, fmt.Errorf("unsupported --format: %s", opts.format))
		}
		return nil
	}

	return cmd
}

func runExport(ctx context.Context, opts exportOptions) error {
	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()

	svc := services.NewExportService(persistence.NewAthleteRepository(pool))

	switch opts.format {
	case "csv":
		out, err := svc.ExportCSV(ctx, opts.tenantID)
		if err != nil {
			return withCode(exitDB, err)
		}
		if err := os.WriteFile(opts.outputPath, []byte(out), 0o644); err != nil {
			return withCode(exitDB, fmt.Errorf("write %s: %w", opts.outputPath, err))
		}
	case "xlsx":
		f, err := svc.ExportExcel(ctx, opts.tenantID, opts.sheetName)
		if err != nil {
			return withCode(exitDB, err)
		}
		defer f.Close()
		if err := f.SaveAs(opts.outputPath); err != nil {
			return withCode(exitDB, fmt.Errorf("write %s: %w", opts.outputPath, err))
		}
	}

	fmt.Printf("exported %s\n", opts.outputPath)
	return nil
}
