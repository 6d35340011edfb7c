package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/giftlist/internal/app"
	"github.com/MrSnakeDoc/giftlist/internal/registry"
	"github.com/MrSnakeDoc/giftlist/internal/version"
)

const commandTimeout = 2 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("❌ giftlist: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "giftlist",
		Short:         "Wedding gift registry API",
		Version:       fmt.Sprintf("%s (commit=%s, built=%s)", version.Version, version.Commit, version.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		// Bare invocation serves, like the container entrypoint expects.
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Bulk add gifts from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.NewOffline()
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			n, err := a.Import(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d gifts from %s\n", n, args[0])
			return nil
		},
	})

	var asJSON bool
	claims := &cobra.Command{
		Use:   "claims",
		Short: "Print the received-claims report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.NewOffline()
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			report, err := a.Claims(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printClaims(cmd, report)
		},
	}
	claims.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	root.AddCommand(claims)

	return root
}

func serve() error {
	return app.New().Run()
}

func printClaims(cmd *cobra.Command, report []registry.Claim) error {
	if len(report) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No gifts claimed yet")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GUEST\tPHONE\tGIFT")
	for _, c := range report {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ClaimantName, c.ClaimantPhone, c.GiftName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d gifts claimed\n", len(report))
	return nil
}
