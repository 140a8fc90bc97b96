package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataCreate(t *testing.T) {
	datamgr := NewDataManager(nil)

	addr := uint32(0x800001)
	item := datamgr.Create(addr, DataByte, 4)
	assert.NotNil(t, item)

	item2 := datamgr.Create(addr, DataByte, 4)
	assert.Nil(t, item2)

	assert.Nil(t, datamgr.Create(addr+2, DataByte, 4), "overlaps the tail")
	assert.Nil(t, datamgr.Create(addr-2, DataByte, 4), "overlaps the head")
	assert.Nil(t, datamgr.Create(0x900000, DataByte, 0))
	assert.Nil(t, datamgr.Create(0xFFFFFFF0, DataByte, 0x20))
	assert.NotNil(t, datamgr.Create(0xFFFFFFF0, DataByte, 0x10))
}

func TestDataGet(t *testing.T) {
	datamgr := NewDataManager(nil)

	datamgr.Create(0x800020, DataByte, 0x10)
	datamgr.Create(0x800010, DataByte, 0x10)

	assert.Nil(t, datamgr.Get(0x800000))

	item := datamgr.Get(0x800010)
	assert.NotNil(t, item)
	assert.Equal(t, uint32(0x800010), item.Address)

	item = datamgr.Get(0x800018)
	assert.NotNil(t, item)
	assert.Equal(t, uint32(0x800010), item.Address)

	item = datamgr.Get(0x80002F)
	assert.NotNil(t, item)
	assert.Equal(t, uint32(0x800020), item.Address)

	assert.Nil(t, datamgr.Get(0x800030))
}

func TestDataDeleteRange(t *testing.T) {
	datamgr := NewDataManager(nil)

	datamgr.Create(0x800000, DataByte, 0x10)
	datamgr.Create(0x800010, DataByte, 0x10)
	datamgr.Create(0x800020, DataByte, 0x10)
	datamgr.Create(0x800030, DataByte, 0x10)

	removed := datamgr.DeleteRange(0x800008, 0x800021)
	assert.Len(t, removed, 3)
	assert.Equal(t, 1, datamgr.Size())
	assert.Equal(t, uint32(0x800030), datamgr.Items()[0].Address)
}
