// Command izposoja runs the community lending and selling service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/izposoja/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	db         string
	addr       string
	adminUser  string
	logPath    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "izposoja",
		Short:         "Community lending and selling service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	def := config.Default()
	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&f.db, "db", "d", def.DB, "SQLite database path")
	pf.StringVarP(&f.addr, "addr", "a", def.Addr, "listen address")
	pf.StringVarP(&f.adminUser, "user", "u", def.AdminUser, "admin username on first run")
	pf.StringVarP(&f.logPath, "log", "l", "", "log file path (default: stdout/stderr only)")
	pf.StringVar(&f.logLevel, "log-level", def.Log.Level, "log level (trace, debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", def.Log.Format, "log format (console, json)")

	root.AddCommand(
		newServeCmd(f),
		newInitCmd(f),
		newMigrateCmd(f),
	)
	return root
}

// load reads the configuration file, if any, and applies flags the user set
// explicitly on top of it.
func (f *flags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}

	set := cmd.Flags().Changed
	if set("db") {
		cfg.DB = f.db
	}
	if set("addr") {
		cfg.Addr = f.addr
	}
	if set("user") {
		cfg.AdminUser = f.adminUser
	}
	if set("log") {
		cfg.Log.Path = f.logPath
	}
	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}
