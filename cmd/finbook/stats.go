package main

import (
	"fmt"
	"os"

	"github.com/akulov/finbook/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ledger statistics for a user",
		RunE:  runStats,
	}

	cmd.Flags().StringP("email", "u", "", "email of the owning user")
	_ = viper.BindPFlag("stats.email", cmd.Flags().Lookup("email"))

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	email := viper.GetString("stats.email")
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	transactionCount, err := store.CountTransactions(ctx, user.ID)
	if err != nil {
		return err
	}
	accounts, err := store.ListAccounts(ctx, user.ID)
	if err != nil {
		return err
	}
	counterparties, err := store.ListCounterparties(ctx, user.ID)
	if err != nil {
		return err
	}
	groups, err := store.ListGroups(ctx, user.ID)
	if err != nil {
		return err
	}

	out := os.Stdout
	fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("Ledger statistics for %s", email)))
	fmt.Fprintf(out, "%s %d\n", cli.BoldStyle.Render("Transactions:"), transactionCount)
	fmt.Fprintf(out, "%s %d\n", cli.BoldStyle.Render("Accounts:"), len(accounts))
	fmt.Fprintf(out, "%s %d\n", cli.BoldStyle.Render("Counterparties:"), len(counterparties))
	fmt.Fprintf(out, "%s %d\n", cli.BoldStyle.Render("Groups:"), len(groups))

	if len(accounts) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.BoldStyle.Render("Accounts:"))
		for _, account := range accounts {
			balance, err := store.AccountBalance(ctx, account.ID, user.ID)
			if err != nil {
				return err
			}
			line := fmt.Sprintf("- %s (%s): %s", account.Name, account.Type, balance.String())
			if balance.IsNegative() {
				fmt.Fprintln(out, cli.ErrorStyle.Render(line))
			} else {
				fmt.Fprintln(out, line)
			}
		}
	}

	if len(groups) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.BoldStyle.Render("Groups:"))
		for _, group := range groups {
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("- %s (%s)", group.Name, group.Type)))
		}
	}

	return nil
}
