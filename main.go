package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/olekukonko/tablewriter"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/firodj/soramap/internal"
)

type rootConfig struct {
	logLevel string
	logger   log.Logger
}

func (cfg *rootConfig) Logger() log.Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(cfg.logLevel, level.InfoValue())))
	cfg.logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return cfg.logger
}

// resolveMapFile picks the map file from the flag, the first argument or
// asks for it. An empty result means nothing was chosen.
func resolveMapFile(mapFile string, args []string, in io.Reader, out io.Writer) (string, error) {
	if mapFile != "" {
		return mapFile, nil
	}
	if len(args) > 0 {
		return args[0], nil
	}

	fmt.Fprint(out, "Load a Dolphin emulator symbol map (*.map): ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func applyMapFile(ctx context.Context, mapFile string, logger log.Logger) (*internal.SoraDocument, internal.ApplyResult, error) {
	entries, err := internal.LoadSymbolMap(mapFile)
	if err != nil {
		return nil, internal.ApplyResult{}, err
	}
	level.Info(logger).Log("msg", "parsed symbol map", "file", mapFile, "entries", len(entries))

	doc := internal.NewSoraDocument(os.Stdout, logger)
	doc.MapFile = mapFile

	res, err := internal.NewSymbolApplier(doc, logger).Apply(ctx, entries)
	return doc, res, err
}

func loadCommand(cfg *rootConfig) *ffcli.Command {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	var mapFile, yamlFile, dbFile string
	var dbDebug bool
	fs.StringVar(&mapFile, "map", "", "symbol map file")
	fs.StringVar(&yamlFile, "yaml", "", "write the document as yaml")
	fs.StringVar(&dbFile, "db", "", "store the import into a sqlite database")
	fs.BoolVar(&dbDebug, "db.debug", false, "log sql queries")

	return &ffcli.Command{
		Name:       "load",
		ShortUsage: "load [flags] [file.map]",
		ShortHelp:  "apply a symbol map",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			logger := cfg.Logger()

			path, err := resolveMapFile(mapFile, args, os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			if path == "" {
				return nil
			}

			doc, res, err := applyMapFile(ctx, path, logger)
			if err != nil {
				return err
			}
			fmt.Printf("functions=%d data=%d failed=%d skipped=%d\n", res.Functions, res.Data, res.Failed, res.Skipped)

			if yamlFile != "" {
				if err := doc.SaveYaml(yamlFile); err != nil {
					return err
				}
				level.Info(logger).Log("msg", "saved yaml", "file", yamlFile)
			}

			if dbFile != "" {
				repo, err := internal.NewSQLRepository(dbFile, dbDebug)
				if err != nil {
					return err
				}
				defer repo.Close()

				if err := repo.Migrate(ctx); err != nil {
					return err
				}
				imp, err := repo.SaveImport(ctx, doc, res)
				if err != nil {
					return err
				}
				level.Info(logger).Log("msg", "saved import", "db", dbFile, "id", imp.ID)
			}
			return nil
		},
	}
}

func dumpCommand(cfg *rootConfig) *ffcli.Command {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	var mapFile string
	var raw bool
	fs.StringVar(&mapFile, "map", "", "symbol map file")
	fs.BoolVar(&raw, "raw", false, "dump the parsed entries")

	return &ffcli.Command{
		Name:       "dump",
		ShortUsage: "dump [flags] [file.map]",
		ShortHelp:  "print the symbols of a map",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			path, err := resolveMapFile(mapFile, args, os.Stdin, os.Stdout)
			if err != nil || path == "" {
				return err
			}

			entries, err := internal.LoadSymbolMap(path)
			if err != nil {
				return err
			}
			if raw {
				spew.Dump(entries)
				return nil
			}

			writeEntries(os.Stdout, entries)
			writeSummary(os.Stdout, internal.SummarizeSections(entries))
			return nil
		},
	}
}

func writeEntries(w io.Writer, entries []internal.SymbolEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Section", "Kind", "Address", "Size", "VAddr", "Align", "Name"})
	table.SetAutoWrapText(false)
	for _, e := range entries {
		table.Append([]string{
			fmt.Sprint(e.Line),
			e.Section,
			string(e.Kind()),
			e.Address,
			e.Size,
			e.VirtualAddress,
			e.Alignment,
			e.Name,
		})
	}
	table.Render()
}

func writeSummary(w io.Writer, summary *internal.SectionSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Section", "Kind", "Symbols"})
	for _, stat := range summary.Stats() {
		table.Append([]string{stat.Name, string(stat.Kind), fmt.Sprint(stat.Count)})
	}
	table.Render()
}

func main() {
	appName := filepath.Base(os.Args[0])

	cfg := &rootConfig{}
	rootFlagSet := flag.NewFlagSet(appName, flag.ExitOnError)
	rootFlagSet.StringVar(&cfg.logLevel, "log.level", "info", "debug, info, warn or error")
	_ = rootFlagSet.String("config", "", "config file (optional)")

	ctx := context.Background()
	// trap Ctrl+C and call cancel on the context
	ctx, cancel := context.WithCancel(ctx)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	defer func() {
		signal.Stop(quit)
		cancel()
	}()

	go func() {
		<-quit
		cancel()
	}()

	root := &ffcli.Command{
		ShortUsage: appName + " [flags] <subcommand>",
		FlagSet:    rootFlagSet,
		Options: []ff.Option{
			ff.WithEnvVarPrefix("SORAMAP"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
			ff.WithAllowMissingConfigFile(true),
		},
		Subcommands: []*ffcli.Command{
			loadCommand(cfg),
			dumpCommand(cfg),
			serveCommand(cfg),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}

	err := root.ParseAndRun(ctx, os.Args[1:])
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		level.Error(cfg.Logger()).Log("err", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}
