package migrations

import (
	"io/fs"

	svaroles "github.com/goliatone/go-svaroles"
)

func init() {
	core, err := fs.Sub(svaroles.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		panic(err)
	}
	if err := Register(CoreSource, core); err != nil {
		panic(err)
	}
}
