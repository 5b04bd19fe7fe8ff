package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eventledger/eventledger/internal/display"
	"github.com/eventledger/eventledger/internal/ledger"
)

func newBalanceCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Show the balance derived from an account's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			bal, err := s.service.Balance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(%s)\n",
				bal.AccountID, display.Amount(bal.Amount, s.cfg.Currency), bal.Amount.String())
			return nil
		},
	}
}

func newHistoryCmd(rc *RootConfig) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <account>",
		Short: "List an account's events in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			events, err := s.service.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				records := make([]ledger.Record, 0, len(events))
				for _, evt := range events {
					rec, err := ledger.EncodeRecord(evt)
					if err != nil {
						return err
					}
					records = append(records, rec)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tTIME\tKIND\tTRANSACTION\tAMOUNT")
			for i, evt := range events {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					i+1, evt.Timestamp.Format(time.RFC3339), evt.Kind, evt.TransactionID,
					display.Amount(evt.Amount, s.cfg.Currency))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored record form")
	return cmd
}
