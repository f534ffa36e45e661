package redis_test

import (
	"testing"

	"github.com/mrcece/aedis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIsHello(t *testing.T) {
	req := redis.NewRequest()
	require.NoError(t, req.Push("hello", 3))
	assert.True(t, req.IsHello())

	req2 := redis.NewRequest()
	require.NoError(t, req2.Push("PING"))
	assert.False(t, req2.IsHello())
}

func TestRequestPayloadEncodesEveryCommand(t *testing.T) {
	req := redis.NewRequest()
	require.NoError(t, req.Push("PING", "req1"))
	require.NoError(t, req.Push("QUIT"))
	assert.Equal(t, "*2\r\n$4\r\nPING\r\n$4\r\nreq1\r\n*1\r\n$4\r\nQUIT\r\n", string(req.Payload()))
	assert.Equal(t, 2, req.CommandCount())
	assert.Equal(t, 2, req.TotalFrames())
}

func TestRequestPushNAccountsCardinality(t *testing.T) {
	req := redis.NewRequest()
	require.NoError(t, req.PushN(2, "EXEC"))
	assert.Equal(t, 1, req.CommandCount())
	assert.Equal(t, 2, req.TotalFrames())
}

func TestRequestPushPropagatesEncodeError(t *testing.T) {
	req := redis.NewRequest()
	err := req.Push("CMD", make(chan int))
	assert.Error(t, err)
}
