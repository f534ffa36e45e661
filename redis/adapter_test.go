package redis_test

import (
	"testing"

	"github.com/mrcece/aedis/redis"
	"github.com/mrcece/aedis/resp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerAdapterDecodesNumber(t *testing.T) {
	a := redis.NewIntegerAdapter(1)
	var errp error
	a.Invoke(0, resp.Node{Type: resp.TypeNumber, Data: []byte("42")}, &errp)
	require.NoError(t, errp)
	v, err := a.Value(0)
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)
}

func TestIntegerAdapterRejectsWrongShape(t *testing.T) {
	a := redis.NewIntegerAdapter(1)
	var errp error
	a.Invoke(0, resp.Node{Type: resp.TypeSimpleString, Data: []byte("OK")}, &errp)
	require.Error(t, errp)
	_, err := a.Value(0)
	require.Error(t, err)
}

func TestIntegerAdapterCapturesResultError(t *testing.T) {
	a := redis.NewIntegerAdapter(1)
	var errp error
	a.Invoke(0, resp.Node{Type: resp.TypeSimpleError, Data: []byte("ERR wrong type")}, &errp)
	require.Error(t, errp)
}

func TestDecimalAdapterPreservesExactDigits(t *testing.T) {
	a := redis.NewDecimalAdapter(1)
	var errp error
	a.Invoke(0, resp.Node{Type: resp.TypeDouble, Data: []byte("10.5")}, &errp)
	require.NoError(t, errp)
	v, err := a.Value(0)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(10.5).Equal(v))
}

func TestCollectorAdapterGroupsByIndex(t *testing.T) {
	a := redis.NewCollectorAdapter(2)
	var errp error
	a.Invoke(0, resp.Node{Type: resp.TypeSimpleString, Data: []byte("a")}, &errp)
	a.Invoke(1, resp.Node{Type: resp.TypeSimpleString, Data: []byte("b")}, &errp)
	require.NoError(t, errp)
	require.Len(t, a.Nodes, 2)
	assert.Equal(t, "a", string(a.Nodes[0][0].Data))
	assert.Equal(t, "b", string(a.Nodes[1][0].Data))
}

func TestBulkStringAdapterHandlesNull(t *testing.T) {
	a := redis.NewBulkStringAdapter(1)
	var errp error
	a.Invoke(0, resp.Node{Type: resp.TypeNull}, &errp)
	require.NoError(t, errp)
	v, err := a.Value(0)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestBooleanAdapterDecodesBoth(t *testing.T) {
	a := redis.NewBooleanAdapter(2)
	var errp error
	a.Invoke(0, resp.Node{Type: resp.TypeBoolean, Data: []byte("t")}, &errp)
	a.Invoke(1, resp.Node{Type: resp.TypeBoolean, Data: []byte("f")}, &errp)
	require.NoError(t, errp)
	v0, _ := a.Value(0)
	v1, _ := a.Value(1)
	assert.True(t, v0)
	assert.False(t, v1)
}
