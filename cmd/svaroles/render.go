package main

import (
	"fmt"

	"github.com/goliatone/go-svaroles/query"
	"github.com/goliatone/go-svaroles/rolegraph"
	"github.com/spf13/cobra"
)

var flagRenderOutput string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the role graph visible to the acting user",
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

		model, err := app.service.Queries().RoleGraph.Query(ctx, query.RoleGraphInput{Actor: actor})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch flagRenderOutput {
		case "script":
			_, err = fmt.Fprint(out, model.Script.String())
			return err
		case "json":
			return printJSON(out, model)
		default:
			printGrid(cmd, "User roles", model.Bucket(rolegraph.BucketAdmin))
			printGrid(cmd, "Module licenses", model.Bucket(rolegraph.BucketOther))
			return nil
		}
	},
}

func init() {
	renderCmd.Flags().StringVarP(&flagRenderOutput, "output", "o", "table", "Output format: table, json, script")
}

func printGrid(cmd *cobra.Command, title string, rows []rolegraph.Row) {
	cmd.Printf("%s (%d)\n", title, len(rows))
	for _, row := range rows {
		cmd.Printf("  %-8d %-40s %s\n", row.RoleID, row.Label, row.Group)
	}
}
