package internal

import (
	"regexp"

	"github.com/firodj/soramap/binarysearchtree"
)

type SoraLabel struct {
	Address uint32    `yaml:"address"`
	Name    string    `yaml:"name"`
	Flags   NameFlags `yaml:"flags"`
}

func (label *SoraLabel) IsWeak() bool {
	return label.Flags.Has(NameWeak)
}

func (label *SoraLabel) IsAuto() bool {
	return label.Flags.Has(NameAuto)
}

var invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_:.$@?<>]`)

// SymbolMap holds the name of each labelled address.
type SymbolMap struct {
	labels binarysearchtree.AVLTree[uint32, *SoraLabel]
}

func CreateSymbolMap() *SymbolMap {
	return &SymbolMap{}
}

// SetLabel names addr. An auto name never replaces a name that is not auto,
// otherwise the latest name wins. Names are sanitized unless NameNoCheck is
// set. Returns false when the existing name was kept.
func (symmap *SymbolMap) SetLabel(addr uint32, name string, flags NameFlags) bool {
	if name == "" {
		return symmap.labels.Remove(addr)
	}
	if !flags.Has(NameNoCheck) {
		name = invalidNameChars.ReplaceAllString(name, "_")
	}

	if existing := symmap.GetLabel(addr); existing != nil {
		if flags.Has(NameAuto) && !existing.IsAuto() {
			return false
		}
	}

	symmap.labels.Insert(addr, &SoraLabel{
		Address: addr,
		Name:    name,
		Flags:   flags,
	})
	return true
}

func (symmap *SymbolMap) GetLabel(addr uint32) *SoraLabel {
	it := symmap.labels.Search(addr)
	if it.End() {
		return nil
	}
	return it.Value()
}

func (symmap *SymbolMap) GetLabelName(addr uint32) *string {
	label := symmap.GetLabel(addr)
	if label == nil {
		return nil
	}
	return &label.Name
}

func (symmap *SymbolMap) Size() int {
	return symmap.labels.Size()
}

func (symmap *SymbolMap) Labels() []*SoraLabel {
	labels := make([]*SoraLabel, 0, symmap.labels.Size())
	symmap.labels.InOrderTraverse(func(_ uint32, label *SoraLabel) {
		labels = append(labels, label)
	})
	return labels
}
