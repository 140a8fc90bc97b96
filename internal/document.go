package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type SoraYaml struct {
	MapFile   string         `yaml:"map_file,omitempty"`
	Functions []SoraFunction `yaml:"functions"`
	Data      []SoraData     `yaml:"data"`
	Labels    []SoraLabel    `yaml:"labels"`
}

// SoraDocument is an in-memory analysis database. It implements Host.
type SoraDocument struct {
	MapFile string

	SymMap       *SymbolMap
	FunManager   *FunctionManager
	DataManager  *DataManager
	InstrManager *InstructionManager

	reporter *Reporter
	logger   log.Logger
}

var _ Host = (*SoraDocument)(nil)

// NewSoraDocument creates an empty document, diagnostics go to out.
func NewSoraDocument(out io.Writer, logger log.Logger) *SoraDocument {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	doc := &SoraDocument{
		SymMap:   CreateSymbolMap(),
		reporter: NewReporter(out),
		logger:   logger,
	}

	doc.FunManager = NewFunctionManager(doc)
	doc.DataManager = NewDataManager(doc)
	doc.InstrManager = NewInstructionManager(doc)

	return doc
}

func (doc *SoraDocument) ClearRegion(addr uint32, size uint32) {
	end := regionEnd(addr, size)

	funs := doc.FunManager.DeleteRange(addr, end)
	items := doc.DataManager.DeleteRange(addr, end)
	instrs := doc.InstrManager.DeleteRange(addr, end)

	if len(funs)+len(items)+instrs > 0 {
		level.Debug(doc.logger).Log("msg", "cleared region", "addr", hex32(addr), "size", size,
			"functions", len(funs), "data", len(items), "instructions", instrs)
	}
}

func (doc *SoraDocument) DecodeInstructionAt(addr uint32) {
	doc.InstrManager.Create(addr)
}

func (doc *SoraDocument) CreateFunction(start uint32, end uint32) bool {
	if doc.InstrManager.Get(start) == nil {
		level.Debug(doc.logger).Log("msg", "no instruction at function start", "addr", hex32(start))
		return false
	}
	if doc.DataManager.Get(start) != nil {
		return false
	}

	size := uint32(0)
	if end != BadAddr {
		if end <= start {
			return false
		}
		size = end - start
	}

	fun := doc.FunManager.CreateNewFunction(start, size)
	if fun == nil {
		return false
	}
	level.Debug(doc.logger).Log("msg", "created function", "addr", hex32(start), "size", size, "name", fun.Name)
	return true
}

func (doc *SoraDocument) CreateData(addr uint32, kind DataKind, size uint32) bool {
	item := doc.DataManager.Create(addr, kind, size)
	if item == nil {
		return false
	}
	level.Debug(doc.logger).Log("msg", "created data", "addr", hex32(addr), "size", size, "kind", kind)
	return true
}

func (doc *SoraDocument) SetName(addr uint32, name string, flags NameFlags) bool {
	if !doc.SymMap.SetLabel(addr, name, flags) {
		return false
	}
	if label := doc.SymMap.GetLabel(addr); label != nil {
		doc.FunManager.Rename(addr, label.Name)
	}
	return true
}

func (doc *SoraDocument) Report(msg string) {
	doc.reporter.Report(msg)
}

func (doc *SoraDocument) Diagnostics() []string {
	return doc.reporter.Messages()
}

func (doc *SoraDocument) GetLabelName(addr uint32) string {
	if label := doc.SymMap.GetLabel(addr); label != nil {
		return label.Name
	}
	if fun := doc.FunManager.GetContaining(addr); fun != nil {
		return fun.Name
	}
	return ""
}

func (doc *SoraDocument) Yaml() *SoraYaml {
	y := &SoraYaml{
		MapFile:   doc.MapFile,
		Functions: make([]SoraFunction, 0, doc.FunManager.Size()),
		Data:      make([]SoraData, 0, doc.DataManager.Size()),
		Labels:    make([]SoraLabel, 0, doc.SymMap.Size()),
	}
	for _, fun := range doc.FunManager.Functions() {
		y.Functions = append(y.Functions, *fun)
	}
	for _, item := range doc.DataManager.Items() {
		y.Data = append(y.Data, *item)
	}
	for _, label := range doc.SymMap.Labels() {
		y.Labels = append(y.Labels, *label)
	}
	return y
}

func (doc *SoraDocument) SaveYaml(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(doc.Yaml()); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return errors.WithStack(err)
	}
	return file.Close()
}

// LoadYaml restores a document previously written by SaveYaml.
func (doc *SoraDocument) LoadYaml(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	var y SoraYaml
	if err := yaml.NewDecoder(file).Decode(&y); err != nil {
		return errors.Wrapf(err, "decode %s", filename)
	}

	doc.MapFile = y.MapFile
	for _, label := range y.Labels {
		doc.SymMap.SetLabel(label.Address, label.Name, label.Flags|NameNoCheck)
	}
	for idx := range y.Functions {
		doc.FunManager.RegisterExistingFunction(&y.Functions[idx])
	}
	for _, item := range y.Data {
		doc.DataManager.Create(item.Address, item.Kind, item.Size)
	}

	level.Info(doc.logger).Log("msg", "loaded document", "file", filename,
		"functions", doc.FunManager.Size(), "data", doc.DataManager.Size(), "labels", doc.SymMap.Size())
	return nil
}

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}
