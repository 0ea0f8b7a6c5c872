package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_Stable(t *testing.T) {
	rows := List{List{Int(0), Text("a"), Text("b")}}

	first, err := ResultDigest(rows)
	require.NoError(t, err)
	second, err := ResultDigest(List{List{Int(0), Text("a"), Text("b")}})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestDigest_DomainSeparation(t *testing.T) {
	v := List{Text("x")}
	result, err := Digest(DomainResult, v)
	require.NoError(t, err)
	trace, err := Digest(DomainTrace, v)
	require.NoError(t, err)
	assert.NotEqual(t, result, trace)
}

func TestDigest_SensitiveToOrder(t *testing.T) {
	a, err := ResultDigest(List{Text("x"), Text("y")})
	require.NoError(t, err)
	b, err := ResultDigest(List{Text("y"), Text("x")})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDigest_KeyOrderIrrelevant(t *testing.T) {
	a, err := Digest(DomainTrace, map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	b, err := Digest(DomainTrace, Object{"b": Int(2), "a": Int(1)})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDigest_RejectsFloat(t *testing.T) {
	_, err := Digest(DomainTrace, 0.5)
	require.Error(t, err)
}
