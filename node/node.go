package node

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Func is a compiled mapping routine. The src value is read, dst must be settable.
type Func func(src, dst reflect.Value, env *Env) error

// ConvertFunc converts one scalar value into the destination type of its node.
type ConvertFunc func(src reflect.Value) (reflect.Value, error)

// Node is one step of a mapping routine.
// Which fields are meaningful depends on Kind.
type Node struct {
	Kind     Kind
	Src, Dst reflect.Type

	// KindScalar
	Convert  ConvertFunc
	Strategy string

	// KindDefault and KindPointer: value stored when the source is nil.
	// The invalid value means the zero value of Dst.
	Default reflect.Value

	// KindPointer
	Track bool // identity map lookups and records
	Reuse bool // populate a non-nil destination in place

	// KindStruct
	Members []Member

	// KindCall
	Sub *Sub

	// KindCollection
	Shape Shape
	// ExactLength makes a ShapeArray destination reject sources of another length
	// instead of truncating them or zero-filling the rest.
	ExactLength bool

	// KindMap uses Key and Elem; KindPointer, KindDefault and KindCollection use Elem.
	Key  *Node
	Elem *Node
}

// Member populates one destination field.
type Member struct {
	Name   string // destination field
	Source string // source field, empty for overrides
	Dst    []int
	Src    []int
	Node   *Node

	// Override computes the field from the whole source struct instead of Node.
	Override ConvertFunc
}

// Sub is a named routine shared by every place that maps the same type pair.
// Calls are resolved at run time, so a Sub may call itself.
type Sub struct {
	Name     string
	Src, Dst reflect.Type
	Root     *Node

	fn Func
}

// Define sets the body of the routine.
func (s *Sub) Define(root *Node) {
	s.Root = root
	s.fn = nil
}

// Compile compiles the body once. Calling an undefined Sub panics.
func (s *Sub) Compile() {
	if s.fn != nil {
		return
	}

	if s.Root == nil {
		panic(fmt.Sprintf("sub %s is not defined", s.Name))
	}

	s.fn = Compile(s.Root)
}

func (s *Sub) String() string {
	return s.Name + "(" + typeStr(s.Src) + " -> " + typeStr(s.Dst) + ")"
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}

	head := fmt.Sprintf("%s %s -> %s", n.Kind, typeStr(n.Src), typeStr(n.Dst))

	switch n.Kind {
	case KindScalar:
		if n.Strategy != "" {
			head += " via " + n.Strategy
		}
	case KindPointer:
		if n.Track {
			head += " track"
		}
		if n.Reuse {
			head += " reuse"
		}
	case KindCall:
		if n.Sub != nil {
			head += " " + n.Sub.Name
		}
	case KindCollection:
		head += " " + n.Shape.String()
	}

	if n.Default.IsValid() && n.Default.CanInterface() && !n.Default.IsZero() {
		head += " default=" + spew.Sprint(n.Default.Interface())
	}

	return head
}

// Dump renders the tree, one node per line.
func (n *Node) Dump() string {
	return strings.Join(n.lines(), "\n")
}

func (n *Node) lines() []string {
	if n == nil {
		return []string{"<nil>"}
	}

	out := []string{n.String()}

	switch n.Kind {
	case KindStruct:
		for _, m := range n.Members {
			if m.Override != nil {
				out = append(out, "\t"+m.Name+" <- override")
				continue
			}

			out = append(out, "\t"+m.Name+" <- "+m.Source)
			out = append(out, indentAll(m.Node.lines(), 2)...)
		}
	case KindMap:
		out = append(out, indentAll(n.Key.lines(), 1)...)
		out = append(out, indentAll(n.Elem.lines(), 1)...)
	case KindPointer, KindDefault, KindCollection:
		out = append(out, indentAll(n.Elem.lines(), 1)...)
	}

	return out
}
