package internal

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// BadAddr marks an unknown or open ended address.
const BadAddr uint32 = 0xFFFFFFFF

var ErrMalformedSymbol = errors.New("malformed symbol")

type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolData     SymbolKind = "data"
)

// codeSections are the sections whose symbols are executable code.
var codeSections = map[string]bool{
	".init": true,
	".text": true,
}

// SymbolEntry is one record line of a symbol map, numeric fields are kept as
// written in the file.
type SymbolEntry struct {
	Section        string `yaml:"section"`
	Address        string `yaml:"address"`
	Size           string `yaml:"size"`
	VirtualAddress string `yaml:"vaddr"`
	Alignment      string `yaml:"align"`
	Name           string `yaml:"name"`
	Line           int    `yaml:"line"`
}

func (entry *SymbolEntry) Kind() SymbolKind {
	return SectionKind(entry.Section)
}

// Symbol converts the entry into a typed symbol.
func (entry *SymbolEntry) Symbol() (*SoraSymbol, error) {
	return NewSoraSymbol(entry)
}

type SoraSymbol struct {
	Section        string `yaml:"section"`
	Address        uint32 `yaml:"address"`
	Size           uint32 `yaml:"size"`
	VirtualAddress uint32 `yaml:"vaddr"`
	Alignment      uint32 `yaml:"align"`
	Name           string `yaml:"name"`
}

// NewSoraSymbol parses the hexadecimal fields of entry. Non hex or out of range
// numbers and empty names are rejected with ErrMalformedSymbol.
func NewSoraSymbol(entry *SymbolEntry) (*SoraSymbol, error) {
	sym := &SoraSymbol{
		Section: entry.Section,
		Name:    entry.Name,
	}

	fields := []struct {
		name string
		text string
		dst  *uint32
	}{
		{"address", entry.Address, &sym.Address},
		{"size", entry.Size, &sym.Size},
		{"vaddr", entry.VirtualAddress, &sym.VirtualAddress},
		{"align", entry.Alignment, &sym.Alignment},
	}
	for _, f := range fields {
		v, err := parseHex32(f.text)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedSymbol, "line %d: %s %q: %v", entry.Line, f.name, f.text, err)
		}
		*f.dst = v
	}

	if sym.Name == "" {
		return nil, errors.Wrapf(ErrMalformedSymbol, "line %d: empty name", entry.Line)
	}

	return sym, nil
}

func parseHex32(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, errors.New("empty number")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func SectionKind(section string) SymbolKind {
	if codeSections[section] {
		return SymbolFunction
	}
	return SymbolData
}

func (sym *SoraSymbol) Kind() SymbolKind {
	return SectionKind(sym.Section)
}

// End returns the exclusive end address, BadAddr when the size is unknown.
func (sym *SoraSymbol) End() uint32 {
	if sym.Size == 0 {
		return BadAddr
	}
	return sym.VirtualAddress + sym.Size
}
