package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/queries"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/querygen"
	"github.com/DjordjeVuckovic/searchbench/pkg/config/env"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "searchbench",
		Short:         "Benchmark latency of web search APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return env.LoadDotEnv(".env")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(
		newLocalCmd(&cliConfig{}),
		newGenCmd(&cliConfig{}),
		newDatasetCmd(&cliConfig{}),
		newSchemaCmd(),
	)
	return root
}

func newLocalCmd(cfg *cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Benchmark queries loaded from a .json or .jsonl file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cfg.resolve(cmd)
			if err != nil {
				return err
			}
			if p.Queries.File == "" {
				return apperr.NewConfig("a query file is required (--file or queries.file in the profile)")
			}

			qs, err := loadQueries(p)
			if err != nil {
				return err
			}

			sess, err := prepare(cmd.Context(), cfg, p, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer sess.Close()
			return sess.run(cmd.Context(), qs)
		},
	}

	bindBenchFlags(cmd, cfg)
	cmd.Flags().StringVar(&cfg.File, "file", "", "Path to the queries file (.json or .jsonl)")
	cmd.Flags().IntVar(&cfg.NumQueries, "num-queries", 0, "Randomly sample this many queries, 0 uses all")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 0, "Seed for query sampling, 0 picks one at random")
	return cmd
}

func newGenCmd(cfg *cliConfig) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate queries with an LLM and benchmark them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return apperr.NewConfig(fmt.Sprintf("count must be positive, got %d", count))
			}
			p, err := cfg.resolve(cmd)
			if err != nil {
				return err
			}

			gen, err := querygen.NewFromEnv()
			if err != nil {
				return err
			}

			sess, err := prepare(cmd.Context(), cfg, p, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer sess.Close()

			qs, err := gen.Generate(cmd.Context(), count)
			if err != nil {
				return err
			}
			return sess.run(cmd.Context(), qs)
		},
	}

	bindBenchFlags(cmd, cfg)
	cmd.Flags().IntVar(&count, "count", 0, "Number of queries to generate")
	_ = cmd.MarkFlagRequired("count")
	return cmd
}

func newDatasetCmd(cfg *cliConfig) *cobra.Command {
	var req queries.DatasetRequest

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Benchmark queries read from a HuggingFace dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Name) == "" {
				return apperr.NewConfig("a dataset is required (--name)")
			}
			p, err := cfg.resolve(cmd)
			if err != nil {
				return err
			}
			req.Limit = cfg.NumQueries

			sess, err := prepare(cmd.Context(), cfg, p, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer sess.Close()

			set, err := queries.NewDatasetSourceFromEnv().Load(cmd.Context(), req)
			if err != nil {
				return err
			}
			return sess.run(cmd.Context(), set.Queries)
		},
	}

	bindBenchFlags(cmd, cfg)
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "HuggingFace dataset name, e.g. microsoft/ms_marco")
	f.StringVar(&req.Config, "config", "", "Dataset configuration, default is the first one with the split")
	f.StringVar(&req.Split, "split", queries.DefaultSplit, "Dataset split")
	f.StringVar(&req.QueryField, "query-field", queries.DefaultQueryField, "Row field holding the query text")
	f.IntVar(&cfg.NumQueries, "num-queries", 0, "Read at most this many queries, 0 reads the whole split")
	return cmd
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, apperr.NewConfigWrap("invalid log level", err)
	}
	return level, nil
}

func logFailure(err error) {
	if apperr.IsConfig(err) {
		slog.Error("Configuration error", "error", err)
		return
	}
	slog.Error("searchbench failed", "error", err)
}
