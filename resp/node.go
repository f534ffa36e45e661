package resp

import "fmt"

// Node is one entry in the depth-first linearization of a decoded RESP3
// frame. Aggregate headers carry Size (child count for arrays/sets/pushes,
// entry count for maps/attributes) and empty Data; leaves carry Data and
// report their byte length in Size.
type Node struct {
	Type  Type
	Depth int
	Size  int64
	Data  []byte
}

// IsAggregate reports whether the node is a container header rather than a
// leaf value.
func (n Node) IsAggregate() bool { return isAggregate(n.Type) }

// IsStreamed reports whether the node is an aggregate header whose true
// size is unknown (wire size "?"), to be discovered by consuming children
// until the terminator described at StreamedSize.
func (n Node) IsStreamed() bool { return n.IsAggregate() && n.Size == StreamedSize }

func (n Node) String() string {
	if n.IsAggregate() {
		return fmt.Sprintf("%s(depth=%d, size=%d)", n.Type, n.Depth, n.Size)
	}
	return fmt.Sprintf("%s(depth=%d, %q)", n.Type, n.Depth, n.Data)
}
