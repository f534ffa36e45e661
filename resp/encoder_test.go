package resp_test

import (
	"testing"

	"github.com/mrcece/aedis/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCommandScalars(t *testing.T) {
	buf, err := resp.AppendCommand(nil, "CMD", int(0))
	require.NoError(t, err)
	assert.Equal(t, []byte("*2\r\n$3\r\nCMD\r\n$1\r\n0\r\n"), buf)

	buf, err = resp.AppendCommand(nil, "CMD", int8(-31))
	require.NoError(t, err)
	assert.Equal(t, []byte("*2\r\n$3\r\nCMD\r\n$3\r\n-31\r\n"), buf)

	buf, err = resp.AppendCommand(nil, "CMD", int64(9223372036854775807))
	require.NoError(t, err)
	assert.Equal(t, []byte("*2\r\n$3\r\nCMD\r\n$19\r\n9223372036854775807\r\n"), buf)
}

func TestAppendCommandStringsAndFloats(t *testing.T) {
	buf, err := resp.AppendCommand(nil, "SET", "key", []byte("val"))
	require.NoError(t, err)
	assert.Equal(t, []byte("*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$3\r\nval\r\n"), buf)

	buf, err = resp.AppendCommand(nil, "CMD", float64(-10000.25))
	require.NoError(t, err)
	assert.Equal(t, []byte("*2\r\n$3\r\nCMD\r\n$9\r\n-10000.25\r\n"), buf)

	buf, err = resp.AppendCommand(nil, "CMD", true, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("*3\r\n$3\r\nCMD\r\n$1\r\n1\r\n$1\r\n0\r\n"), buf)
}

func TestAppendCommandRejectsUnsupportedType(t *testing.T) {
	_, err := resp.AppendCommand(nil, "CMD", make(chan int))
	require.Error(t, err)
}

func TestAppendCommandNoArgs(t *testing.T) {
	buf, err := resp.AppendCommand(nil, "PING")
	require.NoError(t, err)
	assert.Equal(t, []byte("*1\r\n$4\r\nPING\r\n"), buf)
}
