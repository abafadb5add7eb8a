package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vk/routecost/internal/app"
	"github.com/vk/routecost/internal/hcl_adapter"
)

// Environment variables consulted for flags the user did not set.
const (
	envLogLevel  = "ROUTECOST_LOG_LEVEL"
	envLogFormat = "ROUTECOST_LOG_FORMAT"
	envFormat    = "ROUTECOST_FORMAT"
	envDB        = "ROUTECOST_DB"
	envPrices    = "ROUTECOST_PRICES"
	envAddr      = "ROUTECOST_ADDR"
)

const defaultEnvFile = ".env"

// Execute runs the command tree for args. Reports go to outW, logs and
// usage errors to errW. The returned error, if any, is an *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return exitError(err)
	}
	return nil
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	logLevel  string
	logFormat string
	format    string
	db        string
	envFile   string
}

// NewRootCommand builds the routecost command tree.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "routecost",
		Short: "Cost a multi-step synthesis route from raw-material prices",
		Long: `routecost rolls raw-material prices up through a synthetic route, step by
step, accounting for yields, stoichiometry and compounds shared between
branches, and reports the cost of the target compound.

Route files are HCL with material, step and route blocks. Prices come from
the route files, TOML price lists and an optional SQL price store.

Settings not given as flags are read from ROUTECOST_* environment variables,
which may also be placed in a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError("unknown command %q for %q\nRun '%s --help' for usage.", args[0], cmd.CommandPath(), cmd.CommandPath())
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(g.envFile, cmd.Flags().Changed("env-file"))
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError("%s\nRun '%s --help' for usage.", err, cmd.CommandPath())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn' or 'error'. ($"+envLogLevel+")")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log output format: 'text' or 'json'. ($"+envLogFormat+")")
	pf.StringVarP(&g.format, "output", "o", "table", "Report format: 'table', 'csv' or 'json'. ($"+envFormat+")")
	pf.StringVar(&g.db, "db", "", "Price store DSN: a SQLite path or a postgres:// URL. ($"+envDB+")")
	pf.StringVar(&g.envFile, "env-file", defaultEnvFile, "File of ROUTECOST_* defaults to load.")

	root.AddCommand(
		newCalcCommand(g, outW, errW),
		newScanCommand(g, outW, errW),
		newPricesCommand(g, outW, errW),
		newServeCommand(g, outW, errW),
	)
	return root
}

// loadEnvFile loads KEY=value defaults without overriding the real
// environment. A missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return usageError("loading env file %s: %v", path, err)
	}
	slog.Debug("Environment defaults loaded.", "path", path)
	return nil
}

// setting returns the flag value when the user set it, else the
// environment value when present, else the flag default.
func setting(flags *pflag.FlagSet, name, envKey string) string {
	f := flags.Lookup(name)
	if f == nil {
		return os.Getenv(envKey)
	}
	if !f.Changed {
		if v, ok := os.LookupEnv(envKey); ok && v != "" {
			return v
		}
	}
	return f.Value.String()
}

// baseConfig collects the settings shared by all commands.
func (g *globalFlags) baseConfig(cmd *cobra.Command) app.Config {
	flags := cmd.Flags()
	return app.Config{
		LogLevel:  strings.ToLower(setting(flags, "log-level", envLogLevel)),
		LogFormat: strings.ToLower(setting(flags, "log-format", envLogFormat)),
		Format:    strings.ToLower(setting(flags, "output", envFormat)),
		PriceDSN:  setting(flags, "db", envDB),
	}
}

// newApp validates cfg and builds the App. Invalid configuration is a usage
// error.
func newApp(cfg app.Config, outW, errW io.Writer) (*app.App, error) {
	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%v", err)
	}
	slog.Debug("CLI parser finished successfully.", "config", appConfig)
	return app.NewApp(outW, errW, appConfig, hcl_adapter.NewLoader()), nil
}
