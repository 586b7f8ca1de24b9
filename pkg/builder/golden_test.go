package builder_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pseudomuto/pgmigrate/pkg/builder"
	"github.com/pseudomuto/pgmigrate/pkg/operations"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"gotest.tools/v3/golden"
)

// TestGoldenFiles replays testdata/<name>.yaml forward and in reverse and
// compares the output with <name>.up.sql and <name>.down.sql.
func TestGoldenFiles(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "No *.yaml files found in testdata directory")

	for _, input := range matches {
		name := strings.TrimSuffix(filepath.Base(input), ".yaml")

		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(input)
			require.NoError(t, err)

			var script struct {
				Up []map[string]yaml.Node `yaml:"up"`
			}
			require.NoError(t, yaml.Unmarshal(data, &script))

			for suffix, b := range map[string]*builder.Builder{
				".up.sql":   builder.New(nil, operations.Options{}),
				".down.sql": builder.NewReverse(nil, operations.Options{}),
			} {
				for _, step := range script.Up {
					for op, args := range step {
						require.NoError(t, b.Apply(op, &args))
					}
				}

				golden.Assert(t, b.SQL(), name+suffix)
			}
		})
	}
}
