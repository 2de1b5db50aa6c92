package evaluator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goformula/pkg/evaluator"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/types"
)

// conformanceCase is one row of the YAML-driven semantics table.
type conformanceCase struct {
	Name    string                 `yaml:"name"`
	Formula string                 `yaml:"formula"`
	Context map[string]interface{} `yaml:"context"`
	Want    interface{}            `yaml:"want"`
	Error   string                 `yaml:"error"`
}

type conformanceSuite struct {
	Cases []conformanceCase `yaml:"cases"`
}

func TestConformance(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "conformance.yaml"))
	require.NoError(t, err)

	var suite conformanceSuite
	require.NoError(t, yaml.Unmarshal(data, &suite))
	require.NotEmpty(t, suite.Cases)

	for _, tc := range suite.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			expr, err := parser.Parse(tc.Formula)
			require.NoError(t, err, "parse %q", tc.Formula)

			state := evaluator.NewState(normalizeYAML(tc.Context), nil)
			result, err := evaluator.New().Eval(expr, state)

			if tc.Error != "" {
				require.Error(t, err)
				var fe *types.Error
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, types.ErrorCode(tc.Error), fe.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, normalizeValue(tc.Want), result)
		})
	}
}

// normalizeYAML converts YAML-decoded integers to float64 so contexts and
// expectations match the evaluator's numeric model.
func normalizeYAML(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case map[string]interface{}:
		return normalizeYAML(t)
	case []interface{}:
		for i, item := range t {
			t[i] = normalizeValue(item)
		}
		return t
	default:
		return v
	}
}
