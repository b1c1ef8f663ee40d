package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/spf13/cobra"
)

// seedDocument is the role directory import format.
type seedDocument struct {
	Groups []seedGroup `json:"groups"`
	Roles  []seedRole  `json:"roles"`
}

type seedGroup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Admin       bool   `json:"admin"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
}

type seedRole struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Hidden       bool     `json:"hidden"`
	Group        string   `json:"group"`
	Dependencies []int64  `json:"dependencies"`
	Parents      []int64  `json:"parents"`
	Conditions   []string `json:"conditions"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Import role groups and roles into the role directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var doc seedDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		ctx := cmd.Context()
		app, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer app.Close()

		for _, group := range doc.Groups {
			if err := app.directory.AddGroup(ctx, types.RoleGroup(group)); err != nil {
				return fmt.Errorf("group %q: %w", group.Name, err)
			}
		}
		for _, role := range doc.Roles {
			record := types.Role{
				ID:                role.ID,
				Name:              role.Name,
				Hidden:            role.Hidden,
				Dependencies:      role.Dependencies,
				Parents:           role.Parents,
				RuntimeConditions: role.Conditions,
			}
			if role.Group != "" {
				record.Group = &types.RoleGroup{Name: role.Group}
			}
			if err := app.directory.AddRole(ctx, record); err != nil {
				return fmt.Errorf("role %d: %w", role.ID, err)
			}
		}
		cmd.Printf("imported %d groups and %d roles\n", len(doc.Groups), len(doc.Roles))
		return nil
	},
}
