package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Import is one applied map file.
type Import struct {
	bun.BaseModel `bun:"table:imports"`

	ID        string `bun:",pk"`
	MapFile   string
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	Functions int
	Data      int
	Failed    int
	Skipped   int
}

const (
	KindFunction = "function"
	KindData     = "data"
	KindLabel    = "label"
)

type Symbol struct {
	bun.BaseModel `bun:"table:symbols"`

	ID       int64  `bun:",pk,autoincrement"`
	ImportID string `bun:",notnull"`
	Kind     string `bun:",notnull"`
	Address  uint32
	Size     uint32
	Name     string
	Flags    uint32
}
