package node_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"caster/node"
)

func TestStemForPairs(t *testing.T) {
	t.Parallel()

	st := node.NewStem("sub")

	a := node.StructPair{Src: reflect.TypeFor[int](), Dst: reflect.TypeFor[string]()}
	b := node.StructPair{Src: reflect.TypeFor[string](), Dst: reflect.TypeFor[int]()}

	assert.Equal(t, "sub1", st.For(a))
	assert.Equal(t, "sub2", st.For(b))
	assert.Equal(t, "sub1", st.For(a))
	assert.Equal(t, "sub3", st.Next())
}

func ExampleStem() {
	st := node.NewStem("val", "val2")
	fmt.Println(st.Next(), st.Next(), st.For("x"), st.For("x"))

	// Output:
	// val1 val3 val4 val4
}
