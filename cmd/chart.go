// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/benchmerge/benchmerge/pkg/combine"
)

func chartCmd() *cobra.Command {
	chartCmd := &cobra.Command{
		Use:       "chart <inputfile> <outputfile>",
		Short:     "Render a combined results CSV as HTML line charts",
		Example:   "benchmerge chart combined_results.csv results.html",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"inputfile", "outputfile"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildCharts(args[0], args[1])
		},
	}

	return chartCmd
}

// buildCharts renders line charts of execution time over thread count,
// one chart per machine and query, with a series per engine.
func buildCharts(inputFile, outputFile string) error {
	table, err := combine.ReadCSVFile(inputFile)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.SetPageTitle("benchmark results")
	page.SetLayout("flex")

	for _, c := range generateCharts(table) {
		page.AddCharts(c)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering charts: %w", err)
	}
	return f.Close()
}

type dataKey struct {
	machine string
	query   string
	engine  string
	threads int
}

type chartKey struct {
	machine string
	query   string
}

// generateCharts groups rows by machine and query with one series per
// engine. Duplicate (machine, query, engine, threads) keys keep the last
// row's time; rows without a time are left out. Thread counts an engine
// never ran at become null points so its series stays aligned with the
// shared x-axis.
func generateCharts(table *combine.Table) []*charts.Line {
	groupedData := make(map[dataKey]float64)
	engines := make(map[string]struct{})

	for _, row := range table.Rows() {
		seconds, ok := cellFloat(row[combine.ColTime])
		if !ok {
			continue
		}
		threads, ok := cellInt(row[combine.ColThreads])
		if !ok {
			continue
		}
		key := dataKey{
			machine: cellString(row[combine.ColMachine]),
			query:   cellString(row[combine.ColQuery]),
			engine:  cellString(row[combine.ColEngine]),
			threads: threads,
		}
		groupedData[key] = seconds
		engines[key.engine] = struct{}{}
	}

	// Thread counts on the x-axis of each chart
	xs := make(map[chartKey][]int)
	for d := range groupedData {
		ck := chartKey{machine: d.machine, query: d.query}
		xs[ck] = append(xs[ck], d.threads)
	}
	for key, x := range xs {
		slices.Sort(x)
		xs[key] = slices.Compact(x)
	}

	sortedEngines := slices.Collect(maps.Keys(engines))
	slices.Sort(sortedEngines)

	allCharts := make([]*charts.Line, 0, len(xs))

	for ck, threadCounts := range xs {
		chart := charts.NewLine()
		chart.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title: fmt.Sprintf("%s query %s", ck.machine, ck.query),
			}),
			charts.WithAnimation(false))

		xValues := make([]string, len(threadCounts))
		for i, tc := range threadCounts {
			xValues[i] = strconv.Itoa(tc)
		}
		chart.SetXAxis(xValues)

		for _, engine := range sortedEngines {
			data := make([]opts.LineData, 0, len(threadCounts))
			hasValue := false
			for _, tc := range threadCounts {
				dk := dataKey{machine: ck.machine, query: ck.query, engine: engine, threads: tc}
				if seconds, ok := groupedData[dk]; ok {
					data = append(data, opts.LineData{Value: seconds})
					hasValue = true
				} else {
					// null point keeps the series aligned with the shared x-axis
					data = append(data, opts.LineData{})
				}
			}
			if hasValue {
				chart.AddSeries(engine, data)
			}
		}

		allCharts = append(allCharts, chart)
	}

	sort.Slice(allCharts, func(i, j int) bool {
		return allCharts[i].Title.Title < allCharts[j].Title.Title
	})

	return allCharts
}

func cellString(v any) string {
	s, _ := v.(string)
	return s
}

func cellFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func cellInt(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
