package internal

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type ApplyResult struct {
	Functions int `yaml:"functions"`
	Data      int `yaml:"data"`
	Failed    int `yaml:"failed"`
	Skipped   int `yaml:"skipped"`
}

func (res ApplyResult) Applied() int {
	return res.Functions + res.Data
}

type SymbolApplier struct {
	host   Host
	logger log.Logger
}

func NewSymbolApplier(host Host, logger log.Logger) *SymbolApplier {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &SymbolApplier{
		host:   host,
		logger: logger,
	}
}

// Apply walks entries in order and applies each one to the host. Only a
// cancelled ctx before the first entry stops the run, per symbol failures
// are reported and skipped.
func (applier *SymbolApplier) Apply(ctx context.Context, entries []SymbolEntry) (ApplyResult, error) {
	var res ApplyResult
	if err := ctx.Err(); err != nil {
		return res, err
	}

	for i := range entries {
		sym, err := entries[i].Symbol()
		if err != nil {
			applier.host.Report(fmt.Sprintf("Can't parse symbol: %v", err))
			res.Skipped++
			continue
		}

		if applier.ApplySymbol(sym) {
			if sym.Kind() == SymbolFunction {
				res.Functions++
			} else {
				res.Data++
			}
		} else {
			res.Failed++
		}
	}

	level.Debug(applier.logger).Log("msg", "symbols applied",
		"functions", res.Functions, "data", res.Data, "failed", res.Failed, "skipped", res.Skipped)
	return res, nil
}

// ApplySymbol clears the symbol range, creates a function or a data item and
// names it. The name is set even when the creation fails.
func (applier *SymbolApplier) ApplySymbol(sym *SoraSymbol) bool {
	host := applier.host
	addr := sym.VirtualAddress

	host.ClearRegion(addr, sym.Size)

	var success bool
	switch sym.Kind() {
	case SymbolFunction:
		host.DecodeInstructionAt(addr)
		success = host.CreateFunction(addr, sym.End())
	default:
		success = host.CreateData(addr, DataByte, sym.Size)
	}

	if !success {
		host.Report(fmt.Sprintf("Can't apply properties for symbol: %08x - %s", addr, sym.Name))
	}

	host.SetName(addr, sym.Name, NameFlagsFor(sym.Name))
	return success
}
