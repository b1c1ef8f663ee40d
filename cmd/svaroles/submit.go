package main

import (
	"github.com/goliatone/go-svaroles/command"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/spf13/cobra"
)

var (
	flagAction  string
	flagRoles   string
	flagTargets []string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record grant/revoke jobs for tagged users",
	Example: `  svaroles submit --office 5 --user 100 --action fromRoleActionAdd \
    --roles 12,58 --target 5_100 --target 7_200`,
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

		var result command.SubmitRoleJobsResult
		err = app.service.Commands().SubmitRoleJobs.Execute(ctx, command.SubmitRoleJobsInput{
			Actor:      actor,
			ActionType: flagAction,
			Roles:      flagRoles,
			Targets:    flagTargets,
			Result:     &result,
		})
		if err != nil {
			return err
		}
		cmd.Printf("transaction %s: %d %s jobs recorded\n", result.TransactionID, len(result.Jobs), result.Action)
		for _, skipped := range result.Skipped {
			cmd.Printf("  skipped %q (%s)\n", skipped.Token, skipped.Reason)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&flagAction, "action", types.ActionTypeGrant, "Action type flag; "+types.ActionTypeGrant+" grants, anything else revokes")
	submitCmd.Flags().StringVar(&flagRoles, "roles", "", "Comma separated role ids, stored verbatim")
	submitCmd.Flags().StringArrayVar(&flagTargets, "target", nil, "Target token <officeId>_<userId> (repeatable)")
}
