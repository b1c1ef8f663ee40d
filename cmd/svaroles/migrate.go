package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded role directory and job migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer app.Close()
		cmd.Println("migrations applied, schema valid")
		return nil
	},
}
