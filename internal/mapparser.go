package internal

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const maxMapLine = 1024 * 1024

// LoadSymbolMap reads the whole map file at filename and parses it.
func LoadSymbolMap(filename string) ([]SymbolEntry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseSymbolMap(bytes.NewReader(data))
}

// ParseSymbolMap parses a Dolphin symbol map:
//
//	.text section layout
//	00000000 000114 80003100  4 __start
//
// Header lines set the current section, record lines need exactly five
// fields split on single spaces where the last one keeps any remaining text.
// Every other line is skipped.
func ParseSymbolMap(r io.Reader) ([]SymbolEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMapLine)

	section := ""
	entries := make([]SymbolEntry, 0)

	for lineno := 1; scanner.Scan(); lineno++ {
		t := strings.SplitN(strings.TrimSpace(scanner.Text()), " ", 5)

		if len(t) == 3 && t[1] == "section" && t[2] == "layout" {
			section = t[0]
			continue
		}
		if section == "" || len(t) != 5 {
			continue
		}

		entries = append(entries, SymbolEntry{
			Section:        section,
			Address:        t[0],
			Size:           t[1],
			VirtualAddress: t[2],
			Alignment:      t[3],
			Name:           t[4],
			Line:           lineno,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	return entries, nil
}

type SectionStat struct {
	Name  string
	Kind  SymbolKind
	Count int
}

// SectionSummary counts entries per section in order of first appearance.
type SectionSummary struct {
	sections *orderedmap.OrderedMap[string, *SectionStat]
}

func SummarizeSections(entries []SymbolEntry) *SectionSummary {
	summary := &SectionSummary{
		sections: orderedmap.New[string, *SectionStat](),
	}
	for i := range entries {
		stat, ok := summary.sections.Get(entries[i].Section)
		if !ok {
			stat = &SectionStat{
				Name: entries[i].Section,
				Kind: entries[i].Kind(),
			}
			summary.sections.Set(stat.Name, stat)
		}
		stat.Count++
	}
	return summary
}

func (summary *SectionSummary) Len() int {
	return summary.sections.Len()
}

func (summary *SectionSummary) Get(section string) *SectionStat {
	stat, _ := summary.sections.Get(section)
	return stat
}

func (summary *SectionSummary) Stats() []SectionStat {
	stats := make([]SectionStat, 0, summary.sections.Len())
	for pair := summary.sections.Oldest(); pair != nil; pair = pair.Next() {
		stats = append(stats, *pair.Value)
	}
	return stats
}
