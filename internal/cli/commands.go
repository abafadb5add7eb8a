package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/routecost/internal/app"
	"github.com/vk/routecost/internal/costing"
)

// routeFlags are shared by the commands that load a route.
type routeFlags struct {
	route           string
	target          string
	quantity        float64
	prices          []string
	overrides       []string
	allowDuplicates bool
}

func (r *routeFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&r.route, "route", "r", "", "Name of the route block to cost. Required when the files define several.")
	f.StringVarP(&r.target, "target", "t", "", "Target compound, overriding the route block.")
	f.Float64VarP(&r.quantity, "quantity", "q", 0, "Quantity of target to produce, overriding the route block.")
	f.StringSliceVarP(&r.prices, "prices", "p", nil, "TOML price list files or directories, applied in order. ($"+envPrices+", comma separated)")
	f.StringArrayVar(&r.overrides, "set", nil, "What-if override, e.g. 'R.price=12' or 'I[T].equivalents=1.1'. Repeatable.")
	f.BoolVar(&r.allowDuplicates, "allow-duplicate-materials", false, "Let later material definitions replace earlier ones instead of failing.")
}

// config merges the route flags into base.
func (r *routeFlags) config(cmd *cobra.Command, base app.Config, paths []string) (app.Config, error) {
	base.RoutePaths = paths
	base.RouteName = r.route
	base.Target = r.target
	if cmd.Flags().Changed("quantity") {
		q := r.quantity
		base.Quantity = &q
	}
	base.AllowDuplicateMaterials = r.allowDuplicates

	base.PriceFiles = r.prices
	if !cmd.Flags().Changed("prices") {
		if v := os.Getenv(envPrices); v != "" {
			base.PriceFiles = strings.Split(v, ",")
		}
	}

	for _, s := range r.overrides {
		o, err := costing.ParseOverride(s)
		if err != nil {
			return app.Config{}, usageError("--set %s: %v", s, err)
		}
		base.Overrides = append(base.Overrides, o)
	}
	return base, nil
}

// usageArgs reports positional argument errors as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError("%s: %v\nRun '%s --help' for usage.", cmd.CommandPath(), err, cmd.CommandPath())
		}
		return nil
	}
}

func requireRoutePaths(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError("%s: at least one ROUTE_PATH is required\nRun '%s --help' for usage.", cmd.CommandPath(), cmd.CommandPath())
	}
	return nil
}

func newCalcCommand(g *globalFlags, outW, errW io.Writer) *cobra.Command {
	rf := &routeFlags{}
	var steps bool

	cmd := &cobra.Command{
		Use:   "calc ROUTE_PATH...",
		Short: "Cost the target of a route",
		Long: `Cost the target of a route and print one row per compound: required mass,
unit cost, contribution and depth below the target.

ROUTE_PATH is a .hcl file or a directory searched recursively for .hcl files.

Examples:
  routecost calc routes/                      # the only route block
  routecost calc routes/ -r api -q 25 -o csv  # 25 units of route "api"
  routecost calc routes/ --set R.price=12     # what-if price change`,
		Args: requireRoutePaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.config(cmd, g.baseConfig(cmd), args)
			if err != nil {
				return err
			}
			cfg.ShowSteps = steps
			a, err := newApp(cfg, outW, errW)
			if err != nil {
				return err
			}
			return a.Calc(cmd.Context())
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&steps, "steps", false, "Add the per-step cost breakdown.")
	return cmd
}

func newScanCommand(g *globalFlags, outW, errW io.Writer) *cobra.Command {
	rf := &routeFlags{}
	var (
		vary    string
		values  []float64
		from    float64
		to      float64
		points  int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "scan ROUTE_PATH... --vary COMPOUND.FIELD",
		Short: "Sweep one input and report the target unit cost",
		Long: `Sweep one price, equivalents, yield or fixed cost over a list or range of
values and print the target unit cost for each. Evaluations run in parallel.

Examples:
  routecost scan routes/ --vary R.price --values 8,10,12
  routecost scan routes/ --vary T.yield --from 0.5 --to 0.95 --points 10
  routecost scan routes/ --vary 'I[T].equivalents' --values 1,1.2,1.5`,
		Args: requireRoutePaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vary == "" {
				return usageError("--vary is required")
			}
			if _, err := costing.ParseTarget(vary); err != nil {
				return usageError("--vary %s: %v", vary, err)
			}
			switch {
			case len(values) > 0 && (cmd.Flags().Changed("points") || cmd.Flags().Changed("from") || cmd.Flags().Changed("to")):
				return usageError("--values and --from/--to/--points are mutually exclusive")
			case len(values) == 0:
				if points < 1 {
					return usageError("either --values or --points >= 1 is required")
				}
				values = costing.Linspace(from, to, points)
			}

			cfg, err := rf.config(cmd, g.baseConfig(cmd), args)
			if err != nil {
				return err
			}
			cfg.ScanWorkers = workers
			a, err := newApp(cfg, outW, errW)
			if err != nil {
				return err
			}
			return a.Scan(cmd.Context(), vary, values)
		},
	}
	rf.register(cmd)
	f := cmd.Flags()
	f.StringVar(&vary, "vary", "", "Value to sweep: COMPOUND.FIELD or COMPOUND[STEP].equivalents.")
	f.Float64SliceVar(&values, "values", nil, "Explicit values to evaluate.")
	f.Float64Var(&from, "from", 0, "First value of an evenly spaced range.")
	f.Float64Var(&to, "to", 0, "Last value of an evenly spaced range.")
	f.IntVar(&points, "points", 0, "Number of values in the range.")
	f.IntVar(&workers, "workers", 0, "Concurrent evaluations. 0 uses all CPUs.")
	return cmd
}

func newPricesCommand(g *globalFlags, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Manage the SQL price store",
		Long: `Import TOML price lists into the price store and list stored prices.
The store is chosen with --db or ROUTECOST_DB.`,
	}

	importCmd := &cobra.Command{
		Use:   "import PRICE_LIST...",
		Short: "Save the prices of TOML price lists into the store",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g.baseConfig(cmd), outW, errW)
			if err != nil {
				return err
			}
			return a.ImportPrices(cmd.Context(), args...)
		},
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every stored price",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g.baseConfig(cmd), outW, errW)
			if err != nil {
				return err
			}
			return a.ListPrices(cmd.Context())
		},
	}
	cmd.AddCommand(importCmd, listCmd)
	return cmd
}

func newServeCommand(g *globalFlags, outW, errW io.Writer) *cobra.Command {
	rf := &routeFlags{}
	var addr string

	cmd := &cobra.Command{
		Use:   "serve ROUTE_PATH...",
		Short: "Serve cost requests over HTTP",
		Long: `Load a route once and serve it over HTTP:

  GET /health                               liveness
  GET /metrics                              Prometheus metrics
  GET /v1/cost?target=T&quantity=10&steps=1 JSON cost report`,
		Args: requireRoutePaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.config(cmd, g.baseConfig(cmd), args)
			if err != nil {
				return err
			}
			cfg.ListenAddr = setting(cmd.Flags(), "addr", envAddr)
			a, err := newApp(cfg, outW, errW)
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context())
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address. ($"+envAddr+")")
	return cmd
}
