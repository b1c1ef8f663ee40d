package main

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagDSN     string
	flagVerbose bool
	flagOffice  string
	flagUser    string
	flagLocale  string
)

var rootCmd = &cobra.Command{
	Use:   "svaroles",
	Short: "Role graph rendering and user role job submission",
	Long: `svaroles renders the role dependency graph visible to a viewer and
records grant/revoke jobs for a processor to apply.

Configuration is read from the environment (see DB_SERVER, SERVER_PORT,
SVA_ROLES_RESOURCE, SVA_ROLES_SUBMIT_ENABLED).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "Override database DSN (env: DB_SERVER)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagOffice, "office", "", "Acting office id")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Acting user id")
	rootCmd.PersistentFlags().StringVar(&flagLocale, "locale", "", "Viewer locale")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(serveCmd)
}

func actorFromFlags() (types.ActorRef, error) {
	officeID, err := parseID("office", strings.TrimSpace(flagOffice))
	if err != nil {
		return types.ActorRef{}, err
	}
	userID, err := parseID("user", strings.TrimSpace(flagUser))
	if err != nil {
		return types.ActorRef{}, err
	}
	return types.ActorRef{OfficeID: officeID, UserID: userID, Locale: flagLocale}, nil
}

func optionalID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
