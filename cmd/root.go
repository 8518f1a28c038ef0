// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benchmerge/benchmerge/cmd/flags"
	"github.com/benchmerge/benchmerge/pkg/combine"
)

const defaultOutput = "combined_results.csv"

// Prepare the root command: `benchmerge <directory>` combines the run
// CSVs and counter dumps found in the directory into one results CSV.
func Prepare() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "benchmerge <directory>",
		Short:        "Combine benchmark timing CSVs and perf counter dumps into one results CSV",
		Example:      "benchmerge ./results/nodeA_clang18 -o combined_results.csv --append",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		ValidArgs:    []string{"directory"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCombine(args[0], flags.Output(), flags.Append())
		},
	}

	viper.SetEnvPrefix("BENCHMERGE")
	viper.AutomaticEnv()

	rootCmd.Flags().StringP("output", "o", defaultOutput, "output CSV path")
	rootCmd.Flags().BoolP("append", "a", false, "append to the output CSV if it already exists")

	viper.BindPFlag("OUTPUT", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("APPEND", rootCmd.Flags().Lookup("append"))

	rootCmd.AddCommand(chartCmd())

	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	return Prepare().Execute()
}

// runCombine scans the directory, optionally merges the result with a
// previously written output file, sorts and persists.
func runCombine(dir, output string, appendExisting bool) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %q", dir)
	}

	parsed, err := combine.Scan(dir, combine.NewLogger())
	if err != nil {
		return err
	}
	if parsed.Len() == 0 {
		pterm.Warning.Println("No valid file pairs found")
		return nil
	}

	final := combine.NewTable()
	if appendExisting {
		if _, err := os.Stat(output); err == nil {
			existing, err := combine.ReadCSVFile(output)
			if err != nil {
				return err
			}
			final.Concat(existing)
		}
	}
	final.Concat(parsed)
	final.Sort()

	if err := final.WriteCSVFile(output); err != nil {
		return err
	}

	pterm.Success.Printfln("Exported %d new rows to %s. Total rows in file: %d", parsed.Len(), output, final.Len())
	return nil
}
