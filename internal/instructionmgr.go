package internal

import (
	"github.com/firodj/soramap/binarysearchtree"
)

// instructionSize is the width of a PowerPC instruction word.
const instructionSize = 4

type SoraInstruction struct {
	Address uint32 `yaml:"address"`
}

type InstructionManager struct {
	doc *SoraDocument

	instructions binarysearchtree.AVLTree[uint32, *SoraInstruction]
}

func NewInstructionManager(doc *SoraDocument) *InstructionManager {
	return &InstructionManager{
		doc: doc,
	}
}

// Create returns nil for an unaligned address or an existing instruction.
func (mgr *InstructionManager) Create(addr uint32) *SoraInstruction {
	if addr%instructionSize != 0 {
		return nil
	}
	if mgr.Get(addr) != nil {
		return nil
	}
	instr := &SoraInstruction{
		Address: addr,
	}
	mgr.instructions.Insert(addr, instr)
	return instr
}

func (mgr *InstructionManager) Get(addr uint32) *SoraInstruction {
	it := mgr.instructions.Search(addr)
	if it.End() {
		return nil
	}
	return it.Value()
}

func (mgr *InstructionManager) DeleteRange(addr uint32, end uint64) int {
	var removed []uint32
	for it := mgr.instructions.LowerBound(addr); !it.End() && uint64(it.Key()) < end; it = it.Next() {
		removed = append(removed, it.Key())
	}
	for _, a := range removed {
		mgr.instructions.Remove(a)
	}
	return len(removed)
}

func (mgr *InstructionManager) Size() int {
	return mgr.instructions.Size()
}
