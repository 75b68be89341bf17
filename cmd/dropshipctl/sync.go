package main

import (
	"errors"
	"fmt"

	dropshipapp "github.com/erp/dropship/internal/application/dropship"
	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var syncFrequency string

var syncCmd = &cobra.Command{
	Use:   "sync <supplier-id>",
	Short: "Sync one supplier catalog now",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

var syncAllCmd = &cobra.Command{
	Use:   "sync-all",
	Short: "Sync every supplier with scheduled sync enabled",
	Long: `Sync every supplier with scheduled sync enabled. With --frequency only
suppliers on that schedule are synced.`,
	Args: cobra.NoArgs,
	RunE: runSyncAll,
}

func init() {
	syncAllCmd.Flags().StringVar(&syncFrequency, "frequency", "", "Limit to suppliers on this schedule (hourly, daily, weekly)")
	rootCmd.AddCommand(syncCmd, syncAllCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	supplierID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid supplier id %q", args[0])
	}

	app, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	report, err := app.Sync.Sync(cmd.Context(), supplierID)
	if err != nil {
		if report != nil {
			// interrupted run, show what was applied
			_ = printJSON(cmd, dropshipapp.ToSyncReportResponse(report))
		}
		return err
	}
	return printJSON(cmd, dropshipapp.ToSyncReportResponse(report))
}

type syncAllEntry struct {
	SupplierID   uuid.UUID                       `json:"supplier_id"`
	SupplierCode string                          `json:"supplier_code"`
	Report       *dropshipapp.SyncReportResponse `json:"report,omitempty"`
	Error        string                          `json:"error,omitempty"`
}

func runSyncAll(cmd *cobra.Command, _ []string) error {
	frequency := dropship.SyncFrequency(syncFrequency)
	if frequency != "" && (!frequency.IsValid() || frequency == dropship.SyncManual) {
		return fmt.Errorf("invalid frequency %q", syncFrequency)
	}

	app, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	results, err := app.Sync.SyncDue(cmd.Context(), frequency)
	if err != nil {
		return err
	}

	entries := make([]syncAllEntry, 0, len(results))
	var failed []error
	for _, r := range results {
		entry := syncAllEntry{SupplierID: r.SupplierID, SupplierCode: r.SupplierCode}
		if r.Report != nil {
			resp := dropshipapp.ToSyncReportResponse(r.Report)
			entry.Report = &resp
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			failed = append(failed, fmt.Errorf("%s: %w", r.SupplierCode, r.Err))
		}
		entries = append(entries, entry)
	}
	if err := printJSON(cmd, entries); err != nil {
		return err
	}
	return errors.Join(failed...)
}
