package trainqueue

import "fmt"

// Block is a unit of work for a training worker: grow every tree number in
// TreeNums. The queue carries only the tree numbers, not the grown trees.
// Grouping by block, rather than by single node, matches a training
// driver's block-wise consume boundary.
type Block struct {
	BlockID  string
	TreeNums []int
}

// ID identifies the block for Complete/Drop.
func (b *Block) ID() string { return b.BlockID }

func (b *Block) String() string {
	return fmt.Sprintf("{Block %s trees:%v}", b.BlockID, b.TreeNums)
}
