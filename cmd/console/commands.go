package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/opencustody/consolekit/api"
	"github.com/opencustody/consolekit/filters"
	"github.com/opencustody/consolekit/table"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = prompt("email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt("password"); err != nil {
					return err
				}
			}

			result, err := a.console.Auth.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if result.RequiresSecondFactor {
				code, err := prompt("one-time code")
				if err != nil {
					return err
				}
				if err := a.console.Auth.SubmitCode(cmd.Context(), code); err != nil {
					return err
				}
			}

			fmt.Printf("logged in as %s (%s)\n", email, a.store.Snapshot().Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "staff email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.console.Auth.Logout(cmd.Context()); err != nil {
				a.log.Warn().Err(err).Msg("server logout failed, local session cleared")
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			snap := a.store.Snapshot()
			fmt.Printf("role: %s\nvalidating: %v\n", snap.Role, snap.IsValidating)
			return nil
		},
	}
}

// listFlags are the shared pagination/sort flags for list commands.
type listFlags struct {
	page    int
	limit   int
	orderBy string
	order   string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 0, "page number (0 keeps the saved page)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "page size (0 keeps the saved size)")
	cmd.Flags().StringVar(&f.orderBy, "order-by", "", "sort column")
	cmd.Flags().StringVar(&f.order, "order", "", "sort direction (asc|desc)")
}

func (f *listFlags) apply(c interface {
	SetPage(int)
	SetLimit(int)
	SetOrder(string, string)
}) {
	if f.page > 0 {
		c.SetPage(f.page)
	}
	if f.limit > 0 {
		c.SetLimit(f.limit)
	}
	if f.orderBy != "" {
		c.SetOrder(f.orderBy, f.order)
	}
}

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage platform clients",
	}

	var flags listFlags
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			a.filterStore.Bind("clients-table", "/clients")
			a.navigator.Navigate("/clients")

			ctrl, err := table.New(table.Config{
				TableKey:  "clients-table",
				BasePath:  "/clients",
				Defaults:  filters.Values{"page": "1", "limit": "25"},
				Filters:   a.filterStore,
				Navigator: a.navigator,
			}, func(ctx context.Context, v filters.Values) (api.Page[api.Client], error) {
				return a.console.Clients.List(ctx, api.ParamsFromValues(v))
			})
			if err != nil {
				return err
			}
			flags.apply(ctrl)
			if status != "" {
				ctrl.SetFilters(filters.Values{"status": status})
			}

			page, err := ctrl.Load(cmd.Context())
			if err != nil {
				return err
			}
			_ = ctrl.NavigateWithSavedFilters("/clients")

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tRISK")
			for _, c := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Status, c.RiskLevel)
			}
			w.Flush() //nolint:errcheck
			fmt.Printf("page %d of %s (total %d)\n", page.Page, pageCount(page.Total, page.Limit), page.Total)
			return nil
		},
	}
	flags.register(list)
	list.Flags().StringVar(&status, "status", "", "filter by status")

	cmd.AddCommand(list)
	return cmd
}

func newTransactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect transactions",
	}

	var flags listFlags
	var txType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			a.filterStore.Bind("transactions-table", "/transactions")
			a.navigator.Navigate("/transactions")

			ctrl, err := table.New(table.Config{
				TableKey:  "transactions-table",
				BasePath:  "/transactions",
				Defaults:  filters.Values{"page": "1", "limit": "25", "orderBy": "createdAt", "order": "desc"},
				Filters:   a.filterStore,
				Navigator: a.navigator,
			}, func(ctx context.Context, v filters.Values) (api.Page[api.Transaction], error) {
				return a.console.Transactions.List(ctx, api.ParamsFromValues(v))
			})
			if err != nil {
				return err
			}
			flags.apply(ctrl)
			if txType != "" {
				ctrl.SetFilters(filters.Values{"type": txType})
			}

			page, err := ctrl.Load(cmd.Context())
			if err != nil {
				return err
			}
			_ = ctrl.NavigateWithSavedFilters("/transactions")

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tAMOUNT\tCURRENCY\tSTATUS")
			for _, tx := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.Type, tx.Amount, tx.Currency, tx.Status)
			}
			w.Flush() //nolint:errcheck
			fmt.Printf("page %d of %s (total %d)\n", page.Page, pageCount(page.Total, page.Limit), page.Total)
			return nil
		},
	}
	flags.register(list)
	list.Flags().StringVar(&txType, "type", "", "filter by type (deposit|withdrawal|transfer)")

	cmd.AddCommand(list)
	return cmd
}

func pageCount(total, limit int) string {
	if limit <= 0 {
		return "?"
	}
	pages := (total + limit - 1) / limit
	return strconv.Itoa(pages)
}
