package main

import (
	"context"
	"fmt"

	"github.com/fidde/fprime_openmct/internal/convert"
	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var (
		input      string
		outDir     string
		name       string
		sqlitePath string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an F´ topology dictionary into the dictionary document",
		Long: `Convert an F´ topology dictionary (*TopologyAppDictionary.xml) or a
channel catalog (YAML or JSON) into FPrimeDeploymentTopologyAppDictionary.json
and initial_states.json.
With --sqlite the dictionary is also written to a SQLite database usable by
the sqlite dictionary backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := convert.LoadCatalog(input)
			if err != nil {
				return err
			}
			if name != "" {
				catalog.Name = name
			}

			res, err := convert.Convert(catalog)
			if err != nil {
				return err
			}
			if err := res.WriteFiles(outDir); err != nil {
				return err
			}

			if sqlitePath != "" {
				if err := writeSQLite(cmd.Context(), sqlitePath, res); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d measurements for %s to %s\n",
				len(res.Dictionary.Measurements), res.Dictionary.Name, outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "topology dictionary XML or channel catalog (YAML or JSON)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "javascript", "output directory")
	cmd.Flags().StringVar(&name, "name", "", "deployment name (defaults to the input file name)")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also write the dictionary to this SQLite database")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func writeSQLite(ctx context.Context, path string, res *convert.Result) error {
	db, err := dictionary.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := dictionary.WriteSQLite(ctx, db, res.Dictionary); err != nil {
		return fmt.Errorf("writing SQLite dictionary: %w", err)
	}
	return nil
}
