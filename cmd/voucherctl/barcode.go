package main

import (
	"fmt"
	"time"

	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/spf13/cobra"
)

func barcodeIDCmd() *cobra.Command {
	var (
		prefix   string
		year     int
		sequence int
		receipt  string
	)

	cmd := &cobra.Command{
		Use:   "barcode-id",
		Short: "Format a verification identifier",
		Long: `Barcode-id prints the PREFIX-YYYY-NNNNNN identifier printed under the
voucher barcode, either from explicit parts or derived from a receipt number.`,
		Example: `  voucherctl barcode-id --prefix RCP --year 2024 --seq 42
  voucherctl barcode-id --receipt-number REC-2024-000042`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var id string
			if receipt != "" {
				derived, err := voucher.BarcodeIDFromReceiptNumber(receipt, year)
				if err != nil {
					return err
				}
				id = derived
			} else {
				if sequence < 0 || sequence > 999999 {
					return fmt.Errorf("sequence must be between 0 and 999999, got %d", sequence)
				}
				id = voucher.GenerateBarcodeID(prefix, year, sequence)
			}
			if !voucher.IsValidBarcodeID(id) {
				return fmt.Errorf("%s is not a valid verification identifier", id)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", voucher.BarcodePrefix, "identifier prefix (RCP or REC)")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "four digit year")
	cmd.Flags().IntVar(&sequence, "seq", 1, "sequence number")
	cmd.Flags().StringVar(&receipt, "receipt-number", "", "derive the sequence from this receipt number")
	return cmd
}
