package internal

import (
	"fmt"

	"github.com/firodj/soramap/binarysearchtree"
)

type SoraFunction struct {
	Name    string `yaml:"name"`
	Address uint32 `yaml:"address"`
	// Size 0 means the end of the function is unknown.
	Size uint32 `yaml:"size"`
}

func (fun *SoraFunction) LastAddress() uint32 {
	if fun.Size == 0 {
		return fun.Address
	}
	return fun.Address + fun.Size - 4
}

func (fun *SoraFunction) SetLastAddress(last_addr uint32) {
	fun.Size = last_addr - fun.Address + 4
}

func (fun *SoraFunction) End() uint64 {
	return regionEnd(fun.Address, fun.Size)
}

func (fun *SoraFunction) Contains(addr uint32) bool {
	return addr >= fun.Address && uint64(addr) < fun.End()
}

type FunctionManager struct {
	doc           *SoraDocument
	functions     binarysearchtree.AVLTree[uint32, *SoraFunction]
	mapNameToFunc map[string][]uint32
}

func NewFunctionManager(doc *SoraDocument) *FunctionManager {
	return &FunctionManager{
		doc:           doc,
		mapNameToFunc: make(map[string][]uint32),
	}
}

// RegisterExistingFunction got fun from yaml and store it, its name becomes
// the label unless the address is already labelled.
func (funmgr *FunctionManager) RegisterExistingFunction(fun *SoraFunction) {
	if funmgr.doc.SymMap.GetLabel(fun.Address) == nil {
		funmgr.doc.SymMap.SetLabel(fun.Address, fun.Name, NameNoCheck|NamePublic|NameNonAuto)
	}
	funmgr.CreateNewFunction(fun.Address, fun.Size)
}

func (funmgr *FunctionManager) RegisterNameFunction(fun *SoraFunction) {
	for _, ex_addr := range funmgr.mapNameToFunc[fun.Name] {
		if ex_addr == fun.Address {
			return
		}
	}

	funmgr.mapNameToFunc[fun.Name] = append(funmgr.mapNameToFunc[fun.Name], fun.Address)
}

func (funmgr *FunctionManager) unregisterNameFunction(fun *SoraFunction) {
	addrs := funmgr.mapNameToFunc[fun.Name]
	for i, ex_addr := range addrs {
		if ex_addr == fun.Address {
			addrs = append(addrs[:i], addrs[i+1:]...)
			break
		}
	}
	if len(addrs) == 0 {
		delete(funmgr.mapNameToFunc, fun.Name)
	} else {
		funmgr.mapNameToFunc[fun.Name] = addrs
	}
}

// CreateNewFunction returns nil when addr already belongs to a function.
func (funmgr *FunctionManager) CreateNewFunction(addr uint32, size uint32) *SoraFunction {
	if funmgr.GetContaining(addr) != nil {
		return nil
	}

	add_sym := false
	name := funmgr.doc.SymMap.GetLabelName(addr)
	if name == nil {
		name = new(string)
		*name = fmt.Sprintf("z_un_%08x", addr)

		add_sym = true
	}

	fun := &SoraFunction{
		Address: addr,
		Name:    *name,
		Size:    size,
	}
	funmgr.functions.Insert(addr, fun)
	funmgr.RegisterNameFunction(fun)

	if add_sym {
		funmgr.doc.SymMap.SetLabel(fun.Address, fun.Name, NameNoCheck|NameAuto)
	}

	return fun
}

// Rename follows a label change at the start of a function.
func (funmgr *FunctionManager) Rename(addr uint32, name string) {
	fun := funmgr.Get(addr)
	if fun == nil || fun.Name == name {
		return
	}
	funmgr.unregisterNameFunction(fun)
	fun.Name = name
	funmgr.RegisterNameFunction(fun)
}

func (funmgr *FunctionManager) Get(addr uint32) *SoraFunction {
	it := funmgr.functions.Search(addr)
	if it.End() {
		return nil
	}
	return it.Value()
}

// GetContaining returns the function whose range holds addr.
func (funmgr *FunctionManager) GetContaining(addr uint32) *SoraFunction {
	f, _ := funmgr.functions.FloorCeil(addr)
	if f.End() {
		return nil
	}
	if fun := f.Value(); fun.Contains(addr) {
		return fun
	}
	return nil
}

func (funmgr *FunctionManager) GetByName(name string) []*SoraFunction {
	funs := make([]*SoraFunction, 0)
	for _, addr := range funmgr.mapNameToFunc[name] {
		if fun := funmgr.Get(addr); fun != nil {
			funs = append(funs, fun)
		}
	}
	return funs
}

// Overlaps reports whether any function intersects [addr, end).
func (funmgr *FunctionManager) Overlaps(addr uint32, end uint64) bool {
	if funmgr.GetContaining(addr) != nil {
		return true
	}
	_, c := funmgr.functions.FloorCeil(addr)
	return !c.End() && uint64(c.Key()) < end
}

// DeleteRange removes every function intersecting [addr, end).
func (funmgr *FunctionManager) DeleteRange(addr uint32, end uint64) []*SoraFunction {
	var removed []*SoraFunction
	if fun := funmgr.GetContaining(addr); fun != nil && fun.Address < addr {
		removed = append(removed, fun)
	}
	for it := funmgr.functions.LowerBound(addr); !it.End() && uint64(it.Key()) < end; it = it.Next() {
		removed = append(removed, it.Value())
	}
	for _, fun := range removed {
		funmgr.functions.Remove(fun.Address)
		funmgr.unregisterNameFunction(fun)
	}
	return removed
}

func (funmgr *FunctionManager) Size() int {
	return funmgr.functions.Size()
}

func (funmgr *FunctionManager) Functions() []*SoraFunction {
	funs := make([]*SoraFunction, 0, funmgr.functions.Size())
	funmgr.functions.InOrderTraverse(func(_ uint32, fun *SoraFunction) {
		funs = append(funs, fun)
	})
	return funs
}

func regionEnd(addr uint32, size uint32) uint64 {
	if size == 0 {
		size = 1
	}
	return uint64(addr) + uint64(size)
}
