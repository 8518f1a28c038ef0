// SPDX-License-Identifier: Apache-2.0

// Package metrics parses the semicolon-delimited performance-counter dumps
// written alongside each benchmark run.
package metrics

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oapi-codegen/nullable"
)

// Report maps a counter name to its recorded value. Counters the kernel or
// hardware could not provide are present with a null value.
type Report map[string]nullable.Nullable[float64]

// Value returned by perf when a counter is unavailable on the host.
const notSupported = "<not supported>"

// ParseFile reads one counter dump. Each line is a `;`-delimited record
// whose first field is the raw value and third field is the counter name;
// fields may be single-quoted or padded with whitespace. Lines with fewer
// than three fields are skipped. Values that are empty, unparseable or
// marked "<not supported>" are recorded as null rather than failing the
// file. When a name repeats, the last occurrence wins.
//
// A read failure returns whatever was parsed up to that point together
// with the error, so callers can log and continue with a partial report.
func ParseFile(path string) (report Report, err error) {
	report = Report{}

	f, err := os.Open(path)
	if err != nil {
		return report, fmt.Errorf("opening counter file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		report[name] = value
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("reading counter file: %w", err)
	}

	return report, nil
}

func parseLine(line string) (string, nullable.Nullable[float64], bool) {
	parts := strings.Split(line, ";")
	for i, p := range parts {
		parts[i] = cleanField(p)
	}
	if len(parts) < 3 {
		return "", nullable.Nullable[float64]{}, false
	}

	name := parts[2]
	raw := parts[0]
	if raw == notSupported || raw == "" {
		return name, nullable.NewNullNullable[float64](), true
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return name, nullable.NewNullNullable[float64](), true
	}
	return name, nullable.NewNullableWithValue(v), true
}

func cleanField(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "'", "")
}
