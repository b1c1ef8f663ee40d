package main

import (
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/spf13/cobra"
)

var (
	flagJobsOffice      string
	flagJobsTransaction string
	flagJobsStatus      string
	flagJobsLimit       int
	flagJobsOffset      int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recorded user role jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		actor, err := actorFromFlags()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		app, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer app.Close()

		page, err := app.service.Queries().JobList.Query(ctx, types.JobFilter{
			Actor:         actor,
			OfficeID:      optionalID(flagJobsOffice),
			TransactionID: flagJobsTransaction,
			Status:        types.ParseJobStatus(flagJobsStatus),
			Pagination:    types.Pagination{Limit: flagJobsLimit, Offset: flagJobsOffset},
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), page)
	},
}

func init() {
	jobsCmd.Flags().StringVar(&flagJobsOffice, "target-office", "", "Filter by target office id")
	jobsCmd.Flags().StringVar(&flagJobsTransaction, "transaction", "", "Filter by transaction id")
	jobsCmd.Flags().StringVar(&flagJobsStatus, "status", "", "Filter by status: pending, processing, completed, failed")
	jobsCmd.Flags().IntVar(&flagJobsLimit, "limit", 50, "Page size")
	jobsCmd.Flags().IntVar(&flagJobsOffset, "offset", 0, "Page offset")
}
