package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-command"
	exolixcommand "github.com/myshadowbank/exolix-sdk/command"
	"github.com/myshadowbank/exolix-sdk/core"
	exolixquery "github.com/myshadowbank/exolix-sdk/query"
	"github.com/spf13/cobra"
)

func newCurrenciesCommand(a *app) *cobra.Command {
	req := core.ListCurrenciesRequest{}
	cmd := &cobra.Command{
		Use:   "currencies",
		Short: "List supported currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := a.facade.Queries().ListCurrencies.Query(cmd.Context(), exolixquery.ListCurrenciesMessage{Request: req})
			if err != nil {
				return err
			}
			return a.printJSON(page)
		},
	}
	cmd.Flags().IntVar(&req.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&req.Size, "size", 0, "page size")
	cmd.Flags().StringVar(&req.Search, "search", "", "filter by code or name")
	cmd.Flags().BoolVar(&req.WithNetworks, "with-networks", false, "include networks per currency")
	cmd.Flags().BoolVar(&req.All, "all", false, "return every currency in one page")
	return cmd
}

func newNetworksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks <code>",
		Short: "List networks for a currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.facade.Queries().ListNetworks.Query(cmd.Context(), exolixquery.ListNetworksMessage{
				Request: core.ListNetworksRequest{Code: args[0]},
			})
			if err != nil {
				return err
			}
			return a.printJSON(page)
		},
	}
}

type pairFlags struct {
	from        string
	networkFrom string
	to          string
	networkTo   string
	amount      string
	withdrawal  string
	rateType    string
}

func (p *pairFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.from, "from", "", "currency to send")
	cmd.Flags().StringVar(&p.networkFrom, "network-from", "", "network of the sent currency")
	cmd.Flags().StringVar(&p.to, "to", "", "currency to receive")
	cmd.Flags().StringVar(&p.networkTo, "network-to", "", "network of the received currency")
	cmd.Flags().StringVar(&p.amount, "amount", "", "amount to send")
	cmd.Flags().StringVar(&p.withdrawal, "withdrawal-amount", "", "amount to receive")
	cmd.Flags().StringVar(&p.rateType, "rate-type", "", "float or fixed")
}

func newRateCommand(a *app) *cobra.Command {
	pair := &pairFlags{}
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Quote an exchange rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rate, err := a.facade.Queries().GetRate.Query(cmd.Context(), exolixquery.GetRateMessage{Request: core.RateRequest{
				CoinFrom:         pair.from,
				NetworkFrom:      pair.networkFrom,
				CoinTo:           pair.to,
				NetworkTo:        pair.networkTo,
				Amount:           pair.amount,
				WithdrawalAmount: pair.withdrawal,
				RateType:         core.RateType(pair.rateType),
			}})
			if err != nil {
				return err
			}
			return a.printJSON(rate)
		},
	}
	pair.bind(cmd)
	return cmd
}

func newCreateCommand(a *app) *cobra.Command {
	pair := &pairFlags{}
	var address, extraID, refundAddress, refundExtraID string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an exchange transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			collector := command.NewResult[core.Transaction]()
			ctx := command.ContextWithResult(cmd.Context(), collector)
			err := a.facade.Commands().CreateTransaction.Execute(ctx, exolixcommand.CreateTransactionMessage{
				Request: core.CreateTransactionRequest{
					CoinFrom:          pair.from,
					NetworkFrom:       pair.networkFrom,
					CoinTo:            pair.to,
					NetworkTo:         pair.networkTo,
					Amount:            pair.amount,
					WithdrawalAmount:  pair.withdrawal,
					WithdrawalAddress: address,
					WithdrawalExtraID: extraID,
					RateType:          core.RateType(pair.rateType),
					RefundAddress:     refundAddress,
					RefundExtraID:     refundExtraID,
				},
			})
			if err != nil {
				return err
			}
			tx, _ := collector.Load()
			return a.printJSON(tx)
		},
	}
	pair.bind(cmd)
	cmd.Flags().StringVar(&address, "address", "", "withdrawal address")
	cmd.Flags().StringVar(&extraID, "extra-id", "", "withdrawal memo or tag")
	cmd.Flags().StringVar(&refundAddress, "refund-address", "", "refund address")
	cmd.Flags().StringVar(&refundExtraID, "refund-extra-id", "", "refund memo or tag")
	return cmd
}

func newTransactionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := a.facade.Queries().GetTransaction.Query(cmd.Context(), exolixquery.GetTransactionMessage{TransactionID: args[0]})
			if err != nil {
				return err
			}
			return a.printJSON(tx)
		},
	}
}

func newTransactionsCommand(a *app) *cobra.Command {
	req := core.ListTransactionsRequest{}
	var from, to, order string
	var statuses []string
	var stored bool
	var limit int
	cmd := &cobra.Command{
		Use:   "txs",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed := make([]core.TransactionStatus, 0, len(statuses))
			for _, status := range statuses {
				parsed = append(parsed, core.TransactionStatus(strings.TrimSpace(status)))
			}
			if stored {
				query := a.facade.Queries().ListStoredTransactions
				if query == nil {
					return fmt.Errorf("--stored needs --ledger-dsn or a ledger config section")
				}
				out, err := query.Query(cmd.Context(), exolixquery.ListStoredTransactionsMessage{Statuses: parsed, Limit: limit})
				if err != nil {
					return err
				}
				return a.printJSON(out)
			}

			var err error
			if req.DateFrom, err = parseDate(from); err != nil {
				return err
			}
			if req.DateTo, err = parseDate(to); err != nil {
				return err
			}
			req.Statuses = parsed
			req.Order = core.SortOrder(order)
			page, err := a.facade.Queries().ListTransactions.Query(cmd.Context(), exolixquery.ListTransactionsMessage{Request: req})
			if err != nil {
				return err
			}
			return a.printJSON(page)
		},
	}
	cmd.Flags().IntVar(&req.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&req.Size, "size", 0, "page size")
	cmd.Flags().StringVar(&req.Search, "search", "", "filter by id or address")
	cmd.Flags().StringVar(&req.Sort, "sort", "", "sort field")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc")
	cmd.Flags().StringVar(&from, "date-from", "", "RFC 3339 lower bound")
	cmd.Flags().StringVar(&to, "date-to", "", "RFC 3339 upper bound")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "status filter, repeatable")
	cmd.Flags().BoolVar(&stored, "stored", false, "read the local ledger instead of the API")
	cmd.Flags().IntVar(&limit, "limit", 0, "ledger row limit")
	return cmd
}

func newRefreshCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <id>",
		Short: "Fetch a transaction and record it in the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh := a.facade.Commands().RefreshTransaction
			if refresh == nil {
				return fmt.Errorf("refresh needs --ledger-dsn or a ledger config section")
			}
			if err := refresh.Execute(cmd.Context(), exolixcommand.RefreshTransactionMessage{TransactionID: args[0]}); err != nil {
				return err
			}
			out, err := a.store.Transactions().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(out)
		},
	}
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed, nil
}
