// Command lowrank runs the low-rank kernel ridge regression benchmark.
//
//	lowrank run [dataset]            sweep methods × ranks × lambdas, write CSV
//	lowrank tune [dataset]           TPE search over rank and lambda per method
//	lowrank plot <results.csv>       plot test RMSE against rank
//	lowrank version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/lowrank/experiment"
	"github.com/YuminosukeSato/lowrank/pkg/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var v = experiment.NewViper()

var rootCommand = &cobra.Command{
	Use:           "lowrank",
	Short:         "Benchmark low-rank kernel ridge regression (ICD, Nystrom, RFF).",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCommand = &cobra.Command{
	Use:   "run [dataset]",
	Short: "Sweep methods, ranks and regularization strengths and write a results CSV.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(args)
		if err != nil {
			return err
		}
		runner := experiment.NewRunner(cfg, experiment.WithProgressWriter(os.Stderr))
		path, results, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "results: %s (%d rows)\n", path, len(results))
		return experiment.RenderSummary(cmd.OutOrStdout(), experiment.Summarize(results))
	},
}

var tuneCommand = &cobra.Command{
	Use:   "tune [dataset]",
	Short: "Search rank and lambda per method with TPE, minimizing validation RMSE.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(args)
		if err != nil {
			return err
		}
		results, err := experiment.NewRunner(cfg).Tune(cmd.Context())
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Method", "Rank", "Lambda", "RMSE_va", "RMSE", "Trials")
		for _, r := range results {
			if err := table.Append([]string{
				r.Method,
				strconv.Itoa(r.Rank),
				strconv.FormatFloat(r.Lambda, 'g', 4, 64),
				strconv.FormatFloat(r.RMSEValidation, 'f', 6, 64),
				strconv.FormatFloat(r.RMSETest, 'f', 6, 64),
				strconv.Itoa(r.Trials),
			}); err != nil {
				return err
			}
		}
		return table.Render()
	},
}

var plotCommand = &cobra.Command{
	Use:   "plot <results.csv>",
	Short: "Plot test RMSE against rank for each method.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := setup(nil); err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		results, err := experiment.ReadResults(f)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
		}
		title := filepath.Base(args[0])
		if len(results) > 0 {
			title = results[0].Dataset
		}
		if err := experiment.PlotCurves(experiment.RMSECurves(results), title, out); err != nil {
			return err
		}
		log.GetLogger().Info("Plot saved", log.OutputPathKey, out)
		return nil
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print the version.",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

// setup loads the configuration, applies the optional dataset argument and
// installs the loggers at the configured level.
func setup(args []string) (*experiment.Config, error) {
	if len(args) > 0 {
		v.Set("dataset", args[0])
	}
	path, _ := rootCommand.PersistentFlags().GetString("config")
	cfg, err := experiment.LoadConfig(v, path)
	if err != nil {
		return nil, err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLogger(log.NewConsoleLogger(os.Stderr, level))
	if err := log.SetupLogger(os.Stderr, cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.StringP("config", "c", "", "configuration file (yaml, toml or json)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("output-dir", "output", "directory for dated result files")
	flags.String("data-dir", "data", "directory holding <dataset>.csv files")
	flags.IntSlice("n", nil, "sample sizes to load (overrides n_range)")
	flags.StringSlice("methods", nil, "methods to evaluate: ICD, Nystrom, RFF")
	for key, name := range map[string]string{
		"log_level":  "log-level",
		"output_dir": "output-dir",
		"data_dir":   "data-dir",
		"n_range":    "n",
		"methods":    "methods",
	} {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(name)))
	}

	tuneCommand.Flags().Int("trials", 50, "trials per method")
	cobra.CheckErr(v.BindPFlag("tune.trials", tuneCommand.Flags().Lookup("trials")))
	plotCommand.Flags().StringP("out", "o", "", "output image (default: <results>.png)")

	rootCommand.AddCommand(runCommand, tuneCommand, plotCommand, versionCommand)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCommand.ExecuteContext(ctx); err != nil {
		slog.Error("lowrank failed", log.ErrAttr(err))
		stop()
		os.Exit(1)
	}
}
