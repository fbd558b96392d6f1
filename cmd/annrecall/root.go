package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/annrecall"
)

const envPrefix = "ANNRECALL"

// newRootCmd builds the command tree. Every call returns fresh flag and
// config state.
func newRootCmd() *cobra.Command {
	conf := viper.New()

	root := &cobra.Command{
		Use:   "annrecall",
		Short: "Measure ANN index recall against exact ground truth",
		Long: `annrecall runs independent trials against an approximate nearest-neighbor
index. Each trial picks a query from the dataset, computes the exact top-k by
brute force and scores the index's answer at every recall level.

Flags may also be set through ANNRECALL_* environment variables (dashes become
underscores) or a config file given with --config. Flags take precedence over
the environment, which takes precedence over the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(conf, cmd.Flags())
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Configuration file (yaml, toml or json).")
	pf.String("log-level", "info", "Log level, one of [debug, info, warn, error].")
	pf.String("log-format", "text", "Log format, one of [text, json].")
	pf.Int("dim", 0, "Vector dimensionality; required for .mat datasets.")
	pf.Int("limit", 10000, "Maximum vectors read from a text dataset; 0 reads all.")

	root.AddCommand(newEvalCmd(conf), newImportCmd(conf))
	return root
}

func loadConfig(conf *viper.Viper, flags *pflag.FlagSet) error {
	if err := conf.BindPFlags(flags); err != nil {
		return err
	}
	conf.SetEnvPrefix(envPrefix)
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()

	if file := conf.GetString("config"); file != "" {
		conf.SetConfigFile(file)
		if err := conf.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func newLogger(conf *viper.Viper, w io.Writer) (*annrecall.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.GetString("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format := conf.GetString("log-format"); format {
	case "text":
		return annrecall.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return annrecall.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log-format %q", format)
	}
}
