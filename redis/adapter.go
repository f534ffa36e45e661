package redis

import (
	"strconv"

	"github.com/mrcece/aedis/resp"
	"github.com/shopspring/decimal"
)

// Adapter consumes the node stream produced for one request's replies.
// Invoke is called once per node, in wire order, for every top-level
// command the request submitted; index is the 0-based ordinal of the
// top-level command the node belongs to. An adapter reports a decode
// failure by setting *errp; the core does not inspect node contents
// itself, so shape validation is entirely the adapter's responsibility.
type Adapter interface {
	Invoke(index int, node resp.Node, errp *error)
	SupportedResponseSize() int
}

// unboundedResponseSize is returned by adapters that don't care how many
// top-level commands a request carries.
const unboundedResponseSize = -1

// DiscardAdapter ignores every node. It is the default choice for
// fire-and-forget commands such as SELECT or QUIT.
type DiscardAdapter struct{}

func (DiscardAdapter) Invoke(int, resp.Node, *error) {}
func (DiscardAdapter) SupportedResponseSize() int    { return unboundedResponseSize }

// CollectorAdapter buffers every node it sees, grouped by command index.
// It makes no attempt to interpret the nodes; useful for tests and for
// ad-hoc inspection of a reply's raw shape.
type CollectorAdapter struct {
	Nodes [][]resp.Node
}

// NewCollectorAdapter preallocates room for exactly n command replies. A
// non-positive n leaves growth unbounded.
func NewCollectorAdapter(n int) *CollectorAdapter {
	if n <= 0 {
		return &CollectorAdapter{}
	}
	return &CollectorAdapter{Nodes: make([][]resp.Node, n)}
}

func (c *CollectorAdapter) Invoke(index int, node resp.Node, errp *error) {
	for len(c.Nodes) <= index {
		c.Nodes = append(c.Nodes, nil)
	}
	c.Nodes[index] = append(c.Nodes[index], node)
}

func (c *CollectorAdapter) SupportedResponseSize() int {
	if len(c.Nodes) == 0 {
		return unboundedResponseSize
	}
	return len(c.Nodes)
}

// singleValueAdapter is the shared shape behind the typed single-value
// adapters below: each command index expects exactly one leaf node, and a
// simple_error/blob_error reply for that index becomes a Result error
// instead of a shape mismatch.
type singleValueAdapter struct {
	n      int
	decode func(node resp.Node) (interface{}, error)
	values []interface{}
	errs   []error
}

func newSingleValueAdapter(n int, decode func(resp.Node) (interface{}, error)) *singleValueAdapter {
	return &singleValueAdapter{n: n, decode: decode, values: make([]interface{}, n), errs: make([]error, n)}
}

func (a *singleValueAdapter) Invoke(index int, node resp.Node, errp *error) {
	if index < 0 || index >= a.n {
		*errp = IncompatibleSize.New("adapter received index %d, wants at most %d", index, a.n)
		return
	}
	if node.Depth != 0 {
		return // nested node of an aggregate reply the caller isn't expecting; ignore
	}
	if node.Type == resp.TypeAttribute {
		return // attribute header preceding the real value; the value follows at the same depth
	}
	if node.Type == resp.TypeSimpleError || node.Type == resp.TypeBlobError {
		err := NewResultError(string(node.Data))
		a.errs[index] = err
		*errp = err
		return
	}
	v, err := a.decode(node)
	if err != nil {
		a.errs[index] = err
		*errp = err
		return
	}
	a.values[index] = v
}

func (a *singleValueAdapter) SupportedResponseSize() int { return a.n }

// SimpleStringAdapter decodes n replies expected to be simple_string
// (e.g. the "OK" from SET, or a subscribe confirmation).
type SimpleStringAdapter struct{ *singleValueAdapter }

func NewSimpleStringAdapter(n int) *SimpleStringAdapter {
	return &SimpleStringAdapter{newSingleValueAdapter(n, func(node resp.Node) (interface{}, error) {
		if node.Type != resp.TypeSimpleString {
			return nil, NotANumber.New("expected simple_string, got %s", node.Type)
		}
		return string(node.Data), nil
	})}
}

func (a *SimpleStringAdapter) Value(index int) (string, error) {
	if err := a.errs[index]; err != nil {
		return "", err
	}
	s, _ := a.values[index].(string)
	return s, nil
}

// BulkStringAdapter decodes n replies expected to be blob_string or null.
type BulkStringAdapter struct{ *singleValueAdapter }

func NewBulkStringAdapter(n int) *BulkStringAdapter {
	return &BulkStringAdapter{newSingleValueAdapter(n, func(node resp.Node) (interface{}, error) {
		switch node.Type {
		case resp.TypeBlobString, resp.TypeVerbatimString:
			return append([]byte(nil), node.Data...), nil
		case resp.TypeNull:
			return []byte(nil), nil
		default:
			return nil, NotANumber.New("expected blob_string, got %s", node.Type)
		}
	})}
}

func (a *BulkStringAdapter) Value(index int) ([]byte, error) {
	if err := a.errs[index]; err != nil {
		return nil, err
	}
	b, _ := a.values[index].([]byte)
	return b, nil
}

// IntegerAdapter decodes n replies expected to be number.
type IntegerAdapter struct{ *singleValueAdapter }

func NewIntegerAdapter(n int) *IntegerAdapter {
	return &IntegerAdapter{newSingleValueAdapter(n, func(node resp.Node) (interface{}, error) {
		if node.Type != resp.TypeNumber {
			return nil, NotANumber.New("expected number, got %s", node.Type)
		}
		v, err := strconv.ParseInt(string(node.Data), 10, 64)
		if err != nil {
			return nil, NotANumber.Wrap(err, "malformed number")
		}
		return v, nil
	})}
}

func (a *IntegerAdapter) Value(index int) (int64, error) {
	if err := a.errs[index]; err != nil {
		return 0, err
	}
	v, _ := a.values[index].(int64)
	return v, nil
}

// BooleanAdapter decodes n replies expected to be boolean.
type BooleanAdapter struct{ *singleValueAdapter }

func NewBooleanAdapter(n int) *BooleanAdapter {
	return &BooleanAdapter{newSingleValueAdapter(n, func(node resp.Node) (interface{}, error) {
		if node.Type != resp.TypeBoolean {
			return nil, NotANumber.New("expected boolean, got %s", node.Type)
		}
		switch string(node.Data) {
		case "t":
			return true, nil
		case "f":
			return false, nil
		default:
			return nil, NotANumber.New("malformed boolean %q", node.Data)
		}
	})}
}

func (a *BooleanAdapter) Value(index int) (bool, error) {
	if err := a.errs[index]; err != nil {
		return false, err
	}
	v, _ := a.values[index].(bool)
	return v, nil
}

// DecimalAdapter decodes n replies expected to be doublean or big_number
// into decimal.Decimal, preserving the exact digits the server sent
// instead of rounding through float64 -- needed for commands whose reply
// must round-trip precisely, such as INCRBYFLOAT or ZSCORE.
type DecimalAdapter struct{ *singleValueAdapter }

func NewDecimalAdapter(n int) *DecimalAdapter {
	return &DecimalAdapter{newSingleValueAdapter(n, func(node resp.Node) (interface{}, error) {
		switch node.Type {
		case resp.TypeDouble, resp.TypeBigNumber, resp.TypeBlobString, resp.TypeSimpleString:
			d, err := decimal.NewFromString(string(node.Data))
			if err != nil {
				return nil, NotANumber.Wrap(err, "malformed decimal")
			}
			return d, nil
		default:
			return nil, NotANumber.New("expected doublean or big_number, got %s", node.Type)
		}
	})}
}

func (a *DecimalAdapter) Value(index int) (decimal.Decimal, error) {
	if err := a.errs[index]; err != nil {
		return decimal.Decimal{}, err
	}
	d, _ := a.values[index].(decimal.Decimal)
	return d, nil
}
