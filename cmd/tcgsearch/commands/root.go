package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tcgsearch/internal/config"
	"tcgsearch/internal/telemetry"
	"tcgsearch/lib/cardsearch"
	"tcgsearch/lib/restyutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	baseUrl    string
	output     string
	dumpHttp   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file, defaults to the nearest tcgsearch.json5.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	rootCmd.PersistentFlags().StringVar(&baseUrl, "base-url", "", "Overrides the base url of the card api.")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format, json or table.")
	rootCmd.PersistentFlags().StringVar(&dumpHttp, "dump-http", "", "Writes every http exchange to a file in this directory.")
}

var rootCmd = &cobra.Command{
	Use:   "tcgsearch",
	Short: "tcgsearch is a CLI for searching trading card prices.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if baseUrl != "" {
			cfg.BaseUrl = baseUrl
		}
		if output != "" {
			cfg.Output = output
		}

		format, err := cfg.Format()
		if err != nil {
			return err
		}
		policy, err := cfg.Policy()
		if err != nil {
			return err
		}

		tel, err := telemetry.SetupFromEnv(cmd.Context(), "tcgsearch")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		opts := cfg.ClientOptions()
		if dumpHttp != "" {
			dump, err := restyutil.NewFilesystemOutput(dumpHttp)
			if err != nil {
				return fmt.Errorf("create http dump directory: %w", err)
			}
			opts.Dump = dump
		}

		client, err := cardsearch.NewClient(opts, telemetry.SlogAPI{})
		if err != nil {
			return err
		}

		v := get(cmd.Context())
		v.tel = tel
		v.client = client
		v.policy = policy
		v.renderer = cardsearch.NewWriterRenderer(cmd.OutOrStdout(), format, telemetry.SlogAPI{})
		return nil
	},
}

// execute runs root and shuts telemetry down afterwards, cobra skips post run
// hooks when a command fails so this cannot live in PersistentPostRunE.
func execute(ctx context.Context, root *cobra.Command) error {
	v := &value{}
	err := root.ExecuteContext(set(ctx, v))
	shutdownErr := v.tel.Shutdown(context.Background())
	if shutdownErr != nil {
		shutdownErr = fmt.Errorf("shutdown telemetry: %w", shutdownErr)
	}
	return errors.Join(err, shutdownErr)
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx, rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
