package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"civiclink/pkg/api/elapse"
	"civiclink/pkg/api/service"
	"civiclink/pkg/client"
	"civiclink/pkg/models"

	"github.com/spf13/cobra"
)

func claimsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "List and submit claims through the API",
	}

	cmd.AddCommand(claimsListCommand(opts), claimsSubmitCommand(opts))
	return cmd
}

func claimsListCommand(opts *options) *cobra.Command {
	var (
		query    client.ClaimQuery
		status   string
		verdict  string
		language string
		since    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			query.Status = models.ClaimStatus(status)
			query.Verdict = models.Verdict(verdict)
			query.Language = models.Language(language)

			if len(since) > 0 {
				maxAge, err := elapse.ParseDuration(since)
				if err != nil {
					return err
				}
				return listRecentClaims(cmd, opts.client(), query, since, maxAge)
			}

			page, err := opts.client().Claims(cmd.Context(), query)
			if err != nil {
				return err
			}

			now := time.Now()
			out := cmd.OutOrStdout()
			for _, c := range page.Claims {
				printClaim(out, c, now)
			}
			fmt.Fprintf(out, "page %d of %d, %d claims\n", page.Pagination.Page, page.Pagination.Pages, page.Pagination.Total)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&status, "status", "", "pending, in-progress, verified or rejected")
	flags.StringVar(&verdict, "verdict", "", "true, false, misleading or unverified")
	flags.StringVar(&language, "language", "", "claim language")
	flags.StringVar(&query.Community, "community", "", "community")
	flags.StringVar(&query.Search, "search", "", "search terms")
	flags.StringVar(&since, "since", "", "list every claim submitted within this long, e.g. 36h or 2w, starting at --page")
	flags.IntVar(&query.Page, "page", 0, "page number")
	flags.IntVar(&query.Limit, "limit", 0, "claims per page")

	return cmd
}

// listRecentClaims walks the newest-first listing page by page until it reaches a claim older
// than maxAge
func listRecentClaims(cmd *cobra.Command, c *client.Client, query client.ClaimQuery, since string, maxAge time.Duration) error {
	now := time.Now()
	out := cmd.OutOrStdout()
	if query.Page < 1 {
		query.Page = 1
	}

	shown := 0
	for {
		page, err := c.Claims(cmd.Context(), query)
		if err != nil {
			return err
		}

		for _, claim := range page.Claims {
			if now.Sub(claim.CreatedAt) > maxAge {
				fmt.Fprintf(out, "%d claims submitted in the last %s\n", shown, since)
				return nil
			}
			printClaim(out, claim, now)
			shown++
		}

		if len(page.Claims) == 0 || page.Pagination.Page >= page.Pagination.Pages {
			break
		}
		query.Page = page.Pagination.Page + 1
	}

	fmt.Fprintf(out, "%d claims submitted in the last %s\n", shown, since)
	return nil
}

func printClaim(out io.Writer, c *service.ClaimView, now time.Time) {
	fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, elapse.Ago(c.CreatedAt, now), c.Language, c.Status, c.Verdict, c.Text)
}

func claimsSubmitCommand(opts *options) *cobra.Command {
	var req service.SubmitClaimRequest

	cmd := &cobra.Command{
		Use:   "submit <claim text>",
		Short: "Submit a claim for review",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Claim = strings.Join(args, " ")

			claim, err := opts.client().SubmitClaim(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "submitted %s (%s)\n", claim.ID, claim.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Language, "language", string(models.LanguageEnglish), "claim language")
	cmd.Flags().StringVar(&req.Community, "community", "", "community")

	return cmd
}
