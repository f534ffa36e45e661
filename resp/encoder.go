package resp

import (
	"fmt"
	"strconv"
)

// AppendCommand appends the RESP3 wire encoding of a single command array
// (command name plus args) to buf and returns the grown slice. Every
// argument is encoded as a blob_string; integers and floats are formatted
// without going through an intermediate allocation.
func AppendCommand(buf []byte, name string, args ...interface{}) ([]byte, error) {
	buf = appendHead(buf, '*', int64(len(args)+1))
	buf = appendBulkString(buf, name)
	for _, val := range args {
		var err error
		buf, err = appendArg(buf, val)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendArg(buf []byte, val interface{}) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return appendBulkString(buf, v), nil
	case []byte:
		buf = appendHead(buf, '$', int64(len(v)))
		buf = append(buf, v...)
		return append(buf, '\r', '\n'), nil
	case int:
		return appendBulkInt(buf, int64(v)), nil
	case int8:
		return appendBulkInt(buf, int64(v)), nil
	case int16:
		return appendBulkInt(buf, int64(v)), nil
	case int32:
		return appendBulkInt(buf, int64(v)), nil
	case int64:
		return appendBulkInt(buf, v), nil
	case uint:
		return appendBulkInt(buf, int64(v)), nil
	case uint8:
		return appendBulkInt(buf, int64(v)), nil
	case uint16:
		return appendBulkInt(buf, int64(v)), nil
	case uint32:
		return appendBulkInt(buf, int64(v)), nil
	case uint64:
		return appendBulkInt(buf, int64(v)), nil
	case float32:
		return appendBulkFloat(buf, float64(v), 32), nil
	case float64:
		return appendBulkFloat(buf, v, 64), nil
	case bool:
		if v {
			return appendBulkString(buf, "1"), nil
		}
		return appendBulkString(buf, "0"), nil
	default:
		return nil, fmt.Errorf("resp: AppendCommand: unsupported argument type %T", val)
	}
}

func appendBulkString(buf []byte, s string) []byte {
	buf = appendHead(buf, '$', int64(len(s)))
	buf = append(buf, s...)
	return append(buf, '\r', '\n')
}

func appendBulkFloat(buf []byte, f float64, bitSize int) []byte {
	var scratch [32]byte
	s := strconv.AppendFloat(scratch[:0], f, 'f', -1, bitSize)
	buf = appendHead(buf, '$', int64(len(s)))
	buf = append(buf, s...)
	return append(buf, '\r', '\n')
}

// appendBulkInt writes i as a blob_string, formatting the digits directly
// into the destination buffer to avoid an intermediate string allocation --
// the same technique the teacher's request encoder uses, adapted to compute
// the header length from the actual formatted width rather than assuming a
// fixed digit budget.
func appendBulkInt(buf []byte, i int64) []byte {
	var scratch [20]byte
	s := strconv.AppendInt(scratch[:0], i, 10)
	buf = appendHead(buf, '$', int64(len(s)))
	buf = append(buf, s...)
	return append(buf, '\r', '\n')
}

func appendHead(buf []byte, sigil byte, n int64) []byte {
	buf = append(buf, sigil)
	buf = appendInt(buf, n)
	return append(buf, '\r', '\n')
}

func appendInt(buf []byte, i int64) []byte {
	var scratch [20]byte
	s := strconv.AppendInt(scratch[:0], i, 10)
	return append(buf, s...)
}
