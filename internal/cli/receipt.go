package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	receiptLayout string
	receiptOutput string
)

var receiptCmd = &cobra.Command{
	Use:   "receipt <ticket-id>",
	Short: "Render a ticket's printable receipt to a file or stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		rt, err := newRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		doc, err := rt.receipts.Receipt(cmd.Context(), args[0], receiptLayout)
		if err != nil {
			return err
		}
		if receiptOutput == "" || receiptOutput == "-" {
			_, err = cmd.OutOrStdout().Write(doc.HTML)
			return err
		}
		return os.WriteFile(receiptOutput, doc.HTML, 0o644)
	},
}

func init() {
	receiptCmd.Flags().StringVar(&receiptLayout, "layout", "", "receipt layout: a5, thermal80 or thermal58")
	receiptCmd.Flags().StringVarP(&receiptOutput, "output", "o", "", "output file, stdout when empty")
}
