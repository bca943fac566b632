package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "makhzone-cli",
		Short:         "Makhzone CLI tool",
		Long:          `A command line interface for the makhzone inventory and receivables API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the makhzone API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	traderCmd := &cobra.Command{
		Use:   "trader",
		Short: "Trader operations",
	}
	traderCmd.AddCommand(traderBalanceCmd())

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Dashboard operations",
	}
	dashboardCmd.AddCommand(dashboardStatsCmd())

	saleCmd := &cobra.Command{
		Use:   "sale",
		Short: "Sale operations",
	}
	saleCmd.AddCommand(deleteCmd("sale", "/api/v1/sales/"))

	purchaseCmd := &cobra.Command{
		Use:   "purchase",
		Short: "Purchase operations",
	}
	purchaseCmd.AddCommand(deleteCmd("purchase", "/api/v1/purchases/"))

	rootCmd.AddCommand(traderCmd, dashboardCmd, saleCmd, purchaseCmd, reconcileCmd())

	return rootCmd
}

func traderBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <trader-id>",
		Short: "Show a trader's outstanding balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balance struct {
				TraderID      string `json:"trader_id"`
				Name          string `json:"name"`
				Balance       string `json:"balance"`
				TotalSales    string `json:"total_sales"`
				TotalPayments string `json:"total_payments"`
			}
			if err := getJSON(cmd.Context(), "/api/v1/traders/"+args[0]+"/balance", &balance); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trader:         %s (%s)\n", truncate(balance.Name, 40), balance.TraderID)
			fmt.Fprintf(out, "Total sales:    %s\n", balance.TotalSales)
			fmt.Fprintf(out, "Total payments: %s\n", balance.TotalPayments)
			fmt.Fprintf(out, "Balance:        %s\n", balance.Balance)
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [trader-id]",
		Short: "Replay trader history and compare it with the recorded balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var result map[string]any
				if err := getJSON(cmd.Context(), "/api/v1/traders/"+args[0]+"/reconciliation", &result); err != nil {
					return err
				}
				printJSON(cmd.OutOrStdout(), result)
				if reconciled, ok := result["is_reconciled"].(bool); ok && !reconciled {
					return fmt.Errorf("trader %s is not reconciled", args[0])
				}
				return nil
			}

			var report struct {
				TotalTraders      int              `json:"total_traders"`
				ReconciledTraders int              `json:"reconciled_traders"`
				Discrepancies     []map[string]any `json:"discrepancies"`
			}
			if err := getJSON(cmd.Context(), "/api/v1/reconciliation", &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reconciled %d of %d traders\n", report.ReconciledTraders, report.TotalTraders)
			if len(report.Discrepancies) == 0 {
				return nil
			}

			printJSON(out, report.Discrepancies)
			return fmt.Errorf("%d trader(s) drifted", len(report.Discrepancies))
		},
	}
}

func dashboardStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats map[string]any
			if err := getJSON(cmd.Context(), "/api/v1/dashboard/stats", &stats); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func deleteCmd(what, path string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <" + what + "-id>",
		Short: "Delete a " + what + " and reverse its effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := do(cmd.Context(), http.MethodDelete, path+args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(bytes.TrimSpace(body)) == 0 {
				fmt.Fprintf(out, "Deleted %s %s\n", what, args[0])
				return nil
			}

			var result any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printJSON(out, result)
			return nil
		},
	}
}

func do(ctx context.Context, method, path string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

func getJSON(ctx context.Context, path string, v any) error {
	body, err := do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
