package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// DBOptions is the [db] section of §6: the SQLite storage location.
type DBOptions struct {
	Path string `json:"path" mapstructure:"path"`
}

func NewDBOptions() *DBOptions {
	return &DBOptions{
		Path: "./vpncore.db",
	}
}

func (o *DBOptions) Validate() []error {
	var errs []error
	if o.Path == "" {
		errs = append(errs, fmt.Errorf("db.path is required"))
	}
	return errs
}

func (o *DBOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Path, "db.path", o.Path, "Path to the SQLite database file")
}
