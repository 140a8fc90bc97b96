package internal

import "strings"

// Host is the analysis environment symbols are applied to. Calls are made
// from a single goroutine in map file order.
type Host interface {
	// ClearRegion undefines any item in [addr, addr+size).
	ClearRegion(addr uint32, size uint32)
	// DecodeInstructionAt marks an instruction boundary at addr.
	DecodeInstructionAt(addr uint32)
	// CreateFunction creates a function [start, end), end may be BadAddr
	// when the bounds are unknown.
	CreateFunction(start uint32, end uint32) bool
	CreateData(addr uint32, kind DataKind, size uint32) bool
	SetName(addr uint32, name string, flags NameFlags) bool
	// Report is the non fatal diagnostic channel.
	Report(msg string)
}

type DataKind uint8

const (
	DataByte DataKind = iota + 1
)

func (kind DataKind) String() string {
	switch kind {
	case DataByte:
		return "byte"
	}
	return "unknown"
}

type NameFlags uint32

const (
	NameNoCheck NameFlags = 1 << iota // do not validate the name syntax
	NamePublic
	NameNonPublic
	NameWeak
	NameNonWeak
	NameAuto
	NameNonAuto
)

var nameFlagNames = []struct {
	flag NameFlags
	name string
}{
	{NameNoCheck, "nocheck"},
	{NamePublic, "public"},
	{NameNonPublic, "nonpublic"},
	{NameWeak, "weak"},
	{NameNonWeak, "nonweak"},
	{NameAuto, "auto"},
	{NameNonAuto, "nonauto"},
}

func (flags NameFlags) Has(f NameFlags) bool {
	return flags&f == f
}

func (flags NameFlags) String() string {
	parts := make([]string, 0, len(nameFlagNames))
	for _, fn := range nameFlagNames {
		if flags.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// compilerGeneratedPrefix marks linker synthesized names.
const compilerGeneratedPrefix = "zz_"

// NameFlagsFor returns the flags a map symbol name is registered with.
// Generated names are weak so a real name at the same address wins later.
func NameFlagsFor(name string) NameFlags {
	flags := NameNoCheck | NamePublic
	if strings.HasPrefix(name, compilerGeneratedPrefix) {
		flags |= NameAuto | NameWeak
	} else {
		flags |= NameNonAuto
	}
	return flags
}
