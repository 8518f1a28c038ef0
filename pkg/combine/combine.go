// SPDX-License-Identifier: Apache-2.0

// Package combine scans a benchmark output directory for timing CSVs and
// their companion performance-counter dumps and assembles them into a
// single sparse table.
package combine

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/benchmerge/benchmerge/pkg/metrics"
)

// Engine names the two benchmark execution engines, keyed in filenames by
// a single letter.
const (
	EngineHyper      = "hyper"
	EngineVectorwise = "vectorwise"
)

// Run files are named r<repetition>_<query><engine>_t<threads>.csv, with
// engine being `h` or `v`.
var runFilePattern = regexp.MustCompile(`^r(\d+)_(\d+)([hv])_t(\d+)$`)

// Scan reads all run file pairs directly inside dir and returns one row
// per pair. The final path segment of dir must be underscore-delimited
// with the machine name first and the compiler second; further segments
// are ignored. CSV files whose name does not match the run pattern are
// skipped, as are files whose run numbers do not fit in an int. A missing
// or unreadable companion .data file degrades to an
// empty counter report for that row, never to a failed scan.
//
// Row order follows the directory listing; callers sort before writing.
func Scan(dir string, logger Logger) (*Table, error) {
	base, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving directory: %w", err)
	}

	machine, compiler, err := parseDirName(filepath.Base(base))
	if err != nil {
		return nil, err
	}
	logger.LogScanStart(base, machine, compiler)

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	t := NewTable()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), ".csv")
		m := runFilePattern.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		repetition, query, threads, ok := runNumbers(m)
		if !ok {
			continue
		}

		row := Row{
			ColMachine:    machine,
			ColCompiler:   compiler,
			ColRepetition: repetition,
			ColQuery:      query,
			ColEngine:     engineName(m[3]),
			ColThreads:    threads,
		}

		label, time := readTiming(filepath.Join(base, entry.Name()))
		row[ColQueryLabel] = label
		row[ColTime] = time

		dataPath := filepath.Join(base, stem+".data")
		if _, err := os.Stat(dataPath); err == nil {
			report, err := metrics.ParseFile(dataPath)
			if err != nil {
				logger.LogMetricsReadError(dataPath, err)
			}
			for name, value := range report {
				if value.IsNull() {
					row[name] = nil
				} else {
					row[name] = value.MustGet()
				}
			}
		}

		t.Append(row)
	}

	return t, nil
}

// parseDirName extracts the machine and compiler names from the final
// path segment of the scanned directory.
func parseDirName(name string) (machine, compiler string, err error) {
	pieces := strings.Split(name, "_")
	if len(pieces) < 2 {
		return "", "", fmt.Errorf("directory name %q must be <machine>_<compiler>[_...]", name)
	}
	return pieces[0], pieces[1], nil
}

// readTiming pulls the query label and execution time out of a run CSV:
// the first line is a header to discard, the first record after it holds
// the label in column 0 and the time in column 1. Any failure yields nil
// for both values.
func readTiming(path string) (label, time any) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	if _, err := r.Read(); err != nil {
		return nil, nil
	}
	record, err := r.Read()
	if err != nil || len(record) < 2 {
		return nil, nil
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return nil, nil
	}

	return strings.TrimSpace(record[0]), seconds
}

func engineName(code string) string {
	if code == "v" {
		return EngineVectorwise
	}
	return EngineHyper
}

// runNumbers converts the digit captures of a run filename match. A digit
// run too large for int makes the file behave as non-matching.
func runNumbers(m []string) (repetition, query, threads int, ok bool) {
	var err error
	if repetition, err = strconv.Atoi(m[1]); err != nil {
		return 0, 0, 0, false
	}
	if query, err = strconv.Atoi(m[2]); err != nil {
		return 0, 0, 0, false
	}
	if threads, err = strconv.Atoi(m[4]); err != nil {
		return 0, 0, 0, false
	}
	return repetition, query, threads, true
}
