package binarysearchtree

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type AVLTreeTestSuite struct {
	suite.Suite
	tree *AVLTree[uint32, string]
}

func TestAVLTreeTestSuite(t *testing.T) {
	suite.Run(t, new(AVLTreeTestSuite))
}

func (st *AVLTreeTestSuite) SetupTest() {
	st.tree = new(AVLTree[uint32, string])
	for _, k := range []uint32{8, 4, 10, 2, 6, 1, 3, 5, 7, 9} {
		st.tree.Insert(k, string(rune('a'+k)))
	}
}

func (st *AVLTreeTestSuite) keys() []uint32 {
	var result []uint32
	st.tree.InOrderTraverse(func(k uint32, _ string) {
		result = append(result, k)
	})
	return result
}

func (st *AVLTreeTestSuite) TestInsert() {
	st.tree.Insert(11, "l")
	st.Equal(11, st.tree.Size())
	st.Equal([]uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, st.keys())

	st.tree.Insert(11, "replaced")
	st.Equal(11, st.tree.Size())
	st.Equal("replaced", st.tree.Search(11).Value())
}

func (st *AVLTreeTestSuite) TestBalanced() {
	tree := new(AVLTree[int, int])
	for i := 0; i < 1024; i++ {
		tree.Insert(i, i)
	}
	st.LessOrEqual(tree.root.height, 14)
	st.Equal(1024, tree.Size())
}

func (st *AVLTreeTestSuite) TestMinMax() {
	st.Equal(uint32(1), st.tree.Min().Key())
	st.Equal(uint32(10), st.tree.Max().Key())

	empty := new(AVLTree[uint32, string])
	st.True(empty.Min().End())
	st.True(empty.Max().End())
}

func (st *AVLTreeTestSuite) TestSearch() {
	it := st.tree.Search(1)
	st.False(it.End())
	st.Equal(uint32(1), it.Key())

	it = st.tree.Search(8)
	st.False(it.End())
	st.Equal("i", it.Value())

	st.True(st.tree.Search(11).End())
}

func (st *AVLTreeTestSuite) TestRemove() {
	st.True(st.tree.Remove(1))
	st.False(st.tree.Remove(1))
	st.Equal(uint32(2), st.tree.Min().Key())

	st.True(st.tree.Remove(8))
	st.Equal([]uint32{2, 3, 4, 5, 6, 7, 9, 10}, st.keys())
	st.Equal(8, st.tree.Size())
}

func (st *AVLTreeTestSuite) TestIterate() {
	var forward []uint32
	for it := st.tree.Min(); !it.End(); it = it.Next() {
		forward = append(forward, it.Key())
	}
	st.Equal([]uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, forward)

	var backward []uint32
	for it := st.tree.Max(); !it.End(); it = it.Prev() {
		backward = append(backward, it.Key())
	}
	st.Equal([]uint32{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, backward)
}

func (st *AVLTreeTestSuite) TestFloorCeil() {
	st.tree.Insert(20, "u")
	st.tree.Remove(1)
	st.tree.Insert(15, "p")

	f, c := st.tree.FloorCeil(1)
	st.True(f.End())
	st.Equal(uint32(2), c.Key())

	f, c = st.tree.FloorCeil(4)
	st.Equal(uint32(4), f.Key())
	st.Equal(uint32(4), c.Key())

	f, c = st.tree.FloorCeil(12)
	st.Equal(uint32(10), f.Key())
	st.Equal(uint32(15), c.Key())

	f, c = st.tree.FloorCeil(22)
	st.Equal(uint32(20), f.Key())
	st.True(c.End())
}

func (st *AVLTreeTestSuite) TestLowerBound() {
	it := st.tree.LowerBound(0)
	st.Equal(uint32(1), it.Key())

	it = it.Prev()
	st.True(it.End())

	it = st.tree.LowerBound(9)
	st.Equal(uint32(9), it.Key())
	it = it.Next()
	st.Equal(uint32(10), it.Key())

	st.True(st.tree.LowerBound(11).End())
}
