package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DjordjeVuckovic/searchbench/internal/bench/profile"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/runner"
	"github.com/DjordjeVuckovic/searchbench/pkg/schema"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write JSON schemas for result files and bench profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			targets := []struct {
				file string
				gen  *schema.Generator
				v    any
			}{
				{"benchmark-run-v1.json", schema.NewGenerator(), runner.BenchmarkRun{}},
				{"profile-v1.json", schema.NewGenerator(schema.WithTagName("yaml")), profile.Profile{}},
			}

			for _, target := range targets {
				out, err := target.gen.GenerateJSONSchema(target.v)
				if err != nil {
					return fmt.Errorf("generate %s: %w", target.file, err)
				}

				path := filepath.Join(outputDir, target.file)
				if err := os.WriteFile(path, []byte(out+"\n"), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated JSON schema: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "schemas", "Output directory for generated schemas")
	return cmd
}
