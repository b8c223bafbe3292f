package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propgraph/internal/ir"
)

func TestLoadFilter_Inline(t *testing.T) {
	filter, err := LoadFilter(`{"b": 1, "a": {"$gt": 2}}`, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, filter.Keys())

	filter, err = LoadFilter("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, filter.Len())
}

func TestLoadFilter_Files(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "f.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("labels: Person\nage:\n  $gte: 18\n"), 0644))
	filter, err := LoadFilter("", yamlPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"labels", "age"}, filter.Keys())

	cuePath := filepath.Join(dir, "f.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte(`z: 1
a: "$in": ["x", "y"]
`), 0644))
	filter, err = LoadFilter("", cuePath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, filter.Keys())

	listPath := filepath.Join(dir, "list.cue")
	require.NoError(t, os.WriteFile(listPath, []byte(`[1, 2]`), 0644))
	_, err = LoadFilter("", listPath, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errLoad)
	assert.Contains(t, err.Error(), "filter must be an object")
}

func TestLoadFilter_Stdin(t *testing.T) {
	filter, err := LoadFilter("", "-", strings.NewReader(`{"x": 1}`))
	require.NoError(t, err)
	v, _ := filter.Get("x")
	assert.Equal(t, ir.Int(1), v)
}

func TestLoadFilter_Errors(t *testing.T) {
	_, err := LoadFilter("", filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.ErrorIs(t, err, errLoad)

	_, err = LoadFilter(`[1]`, "", nil)
	assert.ErrorIs(t, err, errLoad)
	assert.Contains(t, err.Error(), "filter:")
}

func TestLoadData(t *testing.T) {
	data, err := LoadData("")
	require.NoError(t, err)
	assert.Equal(t, 0, data.Len())

	data, err = LoadData(`{"age": 3}`)
	require.NoError(t, err)
	v, _ := data.Get("age")
	assert.Equal(t, ir.Int(3), v)

	_, err = LoadData("nope: [")
	assert.ErrorIs(t, err, errLoad)
}
