package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propgraph/internal/ir"
)

func TestMarshalData_Canonical(t *testing.T) {
	got, err := marshalData(ir.Obj(ir.M("b", 1), ir.M("a", "<x>")))
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<x>","b":1}`, got)

	got, err = marshalData(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestUnmarshalData(t *testing.T) {
	obj, err := unmarshalData(`{"a":[1,2],"b":{"c":true}}`)
	require.NoError(t, err)
	assert.Equal(t, ir.Obj(
		ir.M("a", ir.Array{ir.Int(1), ir.Int(2)}),
		ir.M("b", ir.Obj(ir.M("c", true))),
	), obj)

	obj, err = unmarshalData("")
	require.NoError(t, err)
	assert.Equal(t, ir.Object{}, obj)

	_, err = unmarshalData("[1]")
	assert.Error(t, err)
}

func TestJoinLabels(t *testing.T) {
	got, err := joinLabels([]string{"Person", "Hobbit", "Person", ""})
	require.NoError(t, err)
	assert.Equal(t, "Hobbit,Person", got)

	got, err = joinLabels(nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = joinLabels([]string{"a,b"})
	assert.Error(t, err)
}

func TestSplitLabels(t *testing.T) {
	assert.Equal(t, []string{}, splitLabels(""))
	assert.Equal(t, []string{"Hobbit", "Person"}, splitLabels("Hobbit,Person"))
}
