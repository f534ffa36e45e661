package resp_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/mrcece/aedis/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, wire string, maxReadSize int64) ([]resp.Node, resp.Type) {
	t.Helper()
	d := resp.NewDecoder(bufio.NewReader(bytes.NewBufferString(wire)), maxReadSize)
	var nodes []resp.Node
	root, err := d.DecodeFrame(func(n resp.Node) error {
		nodes = append(nodes, n)
		return nil
	})
	require.NoError(t, err)
	return nodes, root
}

func TestDecodeFrameSimpleString(t *testing.T) {
	nodes, root := decodeAll(t, "+OK\r\n", 0)
	require.Len(t, nodes, 1)
	assert.Equal(t, resp.TypeSimpleString, root)
	assert.Equal(t, []byte("OK"), nodes[0].Data)
}

func TestDecodeFrameBlobString(t *testing.T) {
	nodes, root := decodeAll(t, "$5\r\nhello\r\n", 0)
	require.Len(t, nodes, 1)
	assert.Equal(t, resp.TypeBlobString, root)
	assert.Equal(t, "hello", string(nodes[0].Data))
	assert.EqualValues(t, 5, nodes[0].Size)
}

func TestDecodeFrameNestedArray(t *testing.T) {
	wire := "*2\r\n:1\r\n*1\r\n+x\r\n"
	nodes, root := decodeAll(t, wire, 0)
	require.Len(t, nodes, 4)
	assert.Equal(t, resp.TypeArray, root)

	assert.Equal(t, resp.TypeArray, nodes[0].Type)
	assert.EqualValues(t, 0, nodes[0].Depth)
	assert.EqualValues(t, 2, nodes[0].Size)

	assert.Equal(t, resp.TypeNumber, nodes[1].Type)
	assert.EqualValues(t, 1, nodes[1].Depth)

	assert.Equal(t, resp.TypeArray, nodes[2].Type)
	assert.EqualValues(t, 1, nodes[2].Depth)
	assert.EqualValues(t, 1, nodes[2].Size)

	assert.Equal(t, resp.TypeSimpleString, nodes[3].Type)
	assert.EqualValues(t, 2, nodes[3].Depth)
}

func TestDecodeFrameMapMultiplicity(t *testing.T) {
	wire := "%1\r\n+k\r\n+v\r\n"
	nodes, root := decodeAll(t, wire, 0)
	require.Len(t, nodes, 3)
	assert.Equal(t, resp.TypeMap, root)
	assert.EqualValues(t, 1, nodes[0].Size) // reported size is entry count, not frame count
}

func TestDecodeFrameAttributeIsTransparentPrefix(t *testing.T) {
	// an attribute frame precedes the real value at the same depth
	wire := "|1\r\n+ttl\r\n:10\r\n:42\r\n"
	nodes, root := decodeAll(t, wire, 0)
	require.Len(t, nodes, 4)
	assert.Equal(t, resp.TypeNumber, root) // the real value's type, not attribute

	assert.Equal(t, resp.TypeAttribute, nodes[0].Type)
	assert.EqualValues(t, 0, nodes[0].Depth)

	assert.Equal(t, resp.TypeSimpleString, nodes[1].Type)
	assert.EqualValues(t, 1, nodes[1].Depth)
	assert.Equal(t, resp.TypeNumber, nodes[2].Type)
	assert.EqualValues(t, 1, nodes[2].Depth)

	assert.Equal(t, resp.TypeNumber, nodes[3].Type)
	assert.EqualValues(t, 0, nodes[3].Depth) // real value, back at attribute's depth
	assert.Equal(t, "42", string(nodes[3].Data))
}

func TestDecodeFrameStreamedArray(t *testing.T) {
	wire := "*?\r\n:1\r\n:2\r\n;0\r\n"
	nodes, root := decodeAll(t, wire, 0)
	require.Len(t, nodes, 4)
	assert.Equal(t, resp.TypeArray, root)
	assert.True(t, nodes[0].IsStreamed())
	assert.Equal(t, resp.TypeStreamedStringPart, nodes[3].Type)
	assert.EqualValues(t, 0, nodes[3].Size)
}

func TestDecodeFramePushIsClassifiedByRootType(t *testing.T) {
	wire := ">2\r\n+message\r\n+hello\r\n"
	_, root := decodeAll(t, wire, 0)
	assert.Equal(t, resp.TypePush, root)
}

func TestDecodeFrameUnknownSigil(t *testing.T) {
	d := resp.NewDecoder(bufio.NewReader(bytes.NewBufferString("^oops\r\n")), 0)
	_, err := d.DecodeFrame(func(resp.Node) error { return nil })
	assert.ErrorIs(t, err, resp.ErrUnknownType)
}

func TestDecodeFrameNotANumber(t *testing.T) {
	d := resp.NewDecoder(bufio.NewReader(bytes.NewBufferString("$abc\r\n")), 0)
	_, err := d.DecodeFrame(func(resp.Node) error { return nil })
	assert.ErrorIs(t, err, resp.ErrNotANumber)
}

func TestDecodeFrameExceedsMaxReadSize(t *testing.T) {
	d := resp.NewDecoder(bufio.NewReader(bytes.NewBufferString("$1000\r\n")), 16)
	_, err := d.DecodeFrame(func(resp.Node) error { return nil })
	assert.ErrorIs(t, err, resp.ErrExceedsMaxReadSize)
}

func TestDecodeFrameEmitAbortsDecoding(t *testing.T) {
	stop := assert.AnError
	d := resp.NewDecoder(bufio.NewReader(bytes.NewBufferString("*2\r\n:1\r\n:2\r\n")), 0)
	seen := 0
	_, err := d.DecodeFrame(func(resp.Node) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}
