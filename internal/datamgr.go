package internal

import (
	"github.com/firodj/soramap/binarysearchtree"
)

type SoraData struct {
	Address uint32   `yaml:"address"`
	Size    uint32   `yaml:"size"`
	Kind    DataKind `yaml:"kind"`
}

func (item *SoraData) LastAddress() uint32 {
	return item.Address + item.Size - 1
}

type DataManager struct {
	doc *SoraDocument

	items binarysearchtree.AVLTree[uint32, *SoraData]
}

func NewDataManager(doc *SoraDocument) *DataManager {
	return &DataManager{
		doc: doc,
	}
}

// Get returns the data item holding addr.
func (datamgr *DataManager) Get(addr uint32) (item *SoraData) {
	f, c := datamgr.items.FloorCeil(addr)

	if !c.End() && c.Key() == addr {
		item = c.Value()
	} else if !f.End() {
		item = f.Value()
	}

	if item != nil && addr > item.LastAddress() {
		item = nil
	}

	return
}

// Create returns nil for an empty item or when [addr, addr+size) is already
// taken by code or data.
func (datamgr *DataManager) Create(addr uint32, kind DataKind, size uint32) *SoraData {
	if size == 0 {
		return nil
	}
	end := uint64(addr) + uint64(size)
	if end > uint64(BadAddr)+1 {
		return nil
	}
	if datamgr.overlaps(addr, end) {
		return nil
	}
	if datamgr.doc != nil && datamgr.doc.FunManager.Overlaps(addr, end) {
		return nil
	}

	item := &SoraData{
		Address: addr,
		Size:    size,
		Kind:    kind,
	}
	datamgr.items.Insert(addr, item)
	return item
}

func (datamgr *DataManager) overlaps(addr uint32, end uint64) bool {
	if datamgr.Get(addr) != nil {
		return true
	}
	_, c := datamgr.items.FloorCeil(addr)
	return !c.End() && uint64(c.Key()) < end
}

// DeleteRange removes every data item intersecting [addr, end).
func (datamgr *DataManager) DeleteRange(addr uint32, end uint64) []*SoraData {
	var removed []*SoraData
	if item := datamgr.Get(addr); item != nil && item.Address < addr {
		removed = append(removed, item)
	}
	for it := datamgr.items.LowerBound(addr); !it.End() && uint64(it.Key()) < end; it = it.Next() {
		removed = append(removed, it.Value())
	}
	for _, item := range removed {
		datamgr.items.Remove(item.Address)
	}
	return removed
}

func (datamgr *DataManager) Size() int {
	return datamgr.items.Size()
}

func (datamgr *DataManager) Items() []*SoraData {
	items := make([]*SoraData, 0, datamgr.items.Size())
	datamgr.items.InOrderTraverse(func(_ uint32, item *SoraData) {
		items = append(items, item)
	})
	return items
}
