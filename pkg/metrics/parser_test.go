// SPDX-License-Identifier: Apache-2.0

package metrics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchmerge/benchmerge/pkg/metrics"
)

func TestParseFile(t *testing.T) {
	tests := []struct {
		Name     string
		Contents string
		Expected map[string]*float64
	}{
		{
			Name:     "plain value line",
			Contents: "12.5;unit;metric_x\n",
			Expected: map[string]*float64{"metric_x": ptr(12.5)},
		},
		{
			Name:     "unsupported counter becomes null",
			Contents: "<not supported>;unit;metric_y\n",
			Expected: map[string]*float64{"metric_y": nil},
		},
		{
			Name:     "empty value becomes null",
			Contents: ";unit;metric_z\n",
			Expected: map[string]*float64{"metric_z": nil},
		},
		{
			Name:     "unparseable value becomes null",
			Contents: "abc;unit;metric_z\n",
			Expected: map[string]*float64{"metric_z": nil},
		},
		{
			Name:     "short line is skipped",
			Contents: "12.5;unit\n",
			Expected: map[string]*float64{},
		},
		{
			Name:     "quotes and padding are stripped",
			Contents: "  '42.0' ; 'ns' ; 'cycles' \n",
			Expected: map[string]*float64{"cycles": ptr(42.0)},
		},
		{
			Name:     "last occurrence wins",
			Contents: "1;unit;metric_x\n2;unit;metric_x\n",
			Expected: map[string]*float64{"metric_x": ptr(2)},
		},
		{
			Name:     "mixed lines",
			Contents: "100;;instructions\ngarbage\n<not supported>;;stalled-cycles\n",
			Expected: map[string]*float64{
				"instructions":   ptr(100),
				"stalled-cycles": nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.data")
			require.NoError(t, os.WriteFile(path, []byte(tt.Contents), 0o644))

			report, err := metrics.ParseFile(path)
			require.NoError(t, err)

			assert.Len(t, report, len(tt.Expected))
			for name, want := range tt.Expected {
				value, ok := report[name]
				require.True(t, ok, "missing metric %q", name)
				if want == nil {
					assert.True(t, value.IsNull())
				} else {
					require.False(t, value.IsNull())
					assert.Equal(t, *want, value.MustGet())
				}
			}
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	report, err := metrics.ParseFile(filepath.Join(t.TempDir(), "nope.data"))

	assert.Error(t, err)
	assert.Empty(t, report)
}

func ptr(f float64) *float64 {
	return &f
}
