package structs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/structs"
	"github.com/dana-lang/dana/internal/values"
)

func TestNewInstanceValidField(t *testing.T) {
	typ, err := structs.NewType("Point", []structs.Field{{Name: "x", Type: "int"}, {Name: "y", Type: "int"}})
	require.NoError(t, err)

	inst, err := structs.NewInstance(typ, map[string]values.Value{"x": values.Int(1), "y": values.Int(2)})
	require.NoError(t, err)
	require.Equal(t, "Point", inst.TypeName())

	v, ok := inst.Field("x")
	require.True(t, ok)
	n, _ := v.AsInt()
	require.Equal(t, int64(1), n)
}

func TestNewInstanceReportsMissingAndExtraTogether(t *testing.T) {
	typ, err := structs.NewType("Point", []structs.Field{{Name: "x", Type: "int"}, {Name: "y", Type: "int"}})
	require.NoError(t, err)

	_, err = structs.NewInstance(typ, map[string]values.Value{"x": values.Int(1), "z": values.Int(9)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required field")
	require.Contains(t, err.Error(), "unexpected field")
	require.Contains(t, err.Error(), "valid fields")
	require.Contains(t, err.Error(), "[x y]")
}

func TestSetFieldRejectsUnknownField(t *testing.T) {
	typ, _ := structs.NewType("Point", []structs.Field{{Name: "x", Type: "int"}})
	inst, err := structs.NewInstance(typ, map[string]values.Value{"x": values.Int(1)})
	require.NoError(t, err)

	require.False(t, inst.SetField("nope", values.Int(2)))
	require.True(t, inst.SetField("x", values.Int(5)))
	v, _ := inst.Field("x")
	n, _ := v.AsInt()
	require.Equal(t, int64(5), n)
}

func TestNewTypeRejectsDuplicateFields(t *testing.T) {
	_, err := structs.NewType("Bad", []structs.Field{{Name: "x"}, {Name: "x"}})
	require.Error(t, err)
}

func TestRegistryPreventsDuplicateTypeNames(t *testing.T) {
	reg := structs.NewRegistry()
	typ, _ := structs.NewType("Point", []structs.Field{{Name: "x"}})
	require.NoError(t, reg.Register(typ))
	require.Error(t, reg.Register(typ))
}

func TestRegistryCreateInstance(t *testing.T) {
	reg := structs.NewRegistry()
	typ, _ := structs.NewType("Point", []structs.Field{{Name: "x"}})
	require.NoError(t, reg.Register(typ))

	inst, err := reg.CreateInstance("Point", map[string]values.Value{"x": values.Int(7)})
	require.NoError(t, err)
	v, _ := inst.Field("x")
	n, _ := v.AsInt()
	require.Equal(t, int64(7), n)

	_, err = reg.CreateInstance("Missing", nil)
	require.Error(t, err)
}
