package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/customer"
	"github.com/lodge-admin/backend/internal/storage"
)

func newReconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild customer statistics from bookings once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			reconciler := customer.NewReconciler(
				storage.NewBookingRepository(db),
				storage.NewCustomerRepository(db),
				nil,
				a.logger,
			)
			result, err := reconciler.Run(cmd.Context())
			if err != nil {
				a.logger.Error("reconcile failed", zap.Strings("failed", result.Failed), zap.Error(err))
				return fmt.Errorf("reconcile: %d of %d customers failed: %w", len(result.Failed), result.Customers, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "reconciled %d customers from %d bookings in %s\n",
				result.Updated, result.Bookings, result.Duration)
			return nil
		},
	}
}
