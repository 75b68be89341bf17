package main

import (
	"fmt"

	dropshipapp "github.com/erp/dropship/internal/application/dropship"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var materializeIDs []string

var materializeCmd = &cobra.Command{
	Use:   "materialize <supplier-id>",
	Short: "Publish unlinked supplier products as catalog listings",
	Args:  cobra.ExactArgs(1),
	RunE:  runMaterialize,
}

func init() {
	materializeCmd.Flags().StringSliceVar(&materializeIDs, "ids", nil, "Supplier product IDs to materialize (default: all unlinked)")
	rootCmd.AddCommand(materializeCmd)
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	supplierID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid supplier id %q", args[0])
	}
	ids, err := parseIDs(materializeIDs)
	if err != nil {
		return err
	}

	app, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	report, err := app.Materialize.Materialize(cmd.Context(), supplierID, ids)
	if err != nil {
		return err
	}
	return printJSON(cmd, dropshipapp.ToMaterializeResponse(report))
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
