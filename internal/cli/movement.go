package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/eventledger/eventledger/internal/display"
	"github.com/eventledger/eventledger/internal/wallet"
)

type movementKind int

const (
	movementCredit movementKind = iota
	movementDebit
)

func newMovementCmd(rc *RootConfig, kind movementKind) *cobra.Command {
	var txID string

	use, short, verb := "credit", "Add funds to an account", "credited"
	if kind == movementDebit {
		use, short, verb = "debit", "Remove funds from an account", "debited"
	}

	cmd := &cobra.Command{
		Use:   use + " <account> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("bad amount %q: %w", args[1], err)
			}

			s, err := rc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			apply := s.service.Credit
			if kind == movementDebit {
				apply = s.service.Debit
			}
			res, err := apply(cmd.Context(), wallet.MovementInput{
				AccountID:     args[0],
				Amount:        amount,
				TransactionID: txID,
			})
			if err != nil {
				return err
			}

			cur := s.cfg.Currency
			out := cmd.OutOrStdout()
			if res.Duplicate {
				fmt.Fprintf(out, "transaction %s already applied; balance %s\n",
					res.Event.TransactionID, display.Amount(res.Balance, cur))
				return nil
			}
			fmt.Fprintf(out, "%s %s on %s (tx %s); balance %s\n",
				verb, display.Amount(res.Event.Amount, cur), args[0],
				res.Event.TransactionID, display.Amount(res.Balance, cur))
			return nil
		},
	}
	cmd.Flags().StringVar(&txID, "tx", "", "transaction id (generated when empty)")
	return cmd
}
