package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/pkg/errors"

	"github.com/firodj/soramap/internal"
)

type symbolResponse struct {
	Address  uint32                 `json:"address"`
	Label    *internal.SoraLabel    `json:"label,omitempty"`
	Function *internal.SoraFunction `json:"function,omitempty"`
	Data     *internal.SoraData     `json:"data,omitempty"`
}

func newServer(doc *internal.SoraDocument) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.GET("/functions", func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc.FunManager.Functions())
	})
	e.GET("/data", func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc.DataManager.Items())
	})
	e.GET("/labels", func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc.SymMap.Labels())
	})
	e.GET("/diagnostics", func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc.Diagnostics())
	})
	e.GET("/symbols/:addr", func(c echo.Context) error {
		raw := strings.TrimPrefix(c.Param("addr"), "0x")
		addr, err := strconv.ParseUint(raw, 16, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid address")
		}

		resp := symbolResponse{
			Address:  uint32(addr),
			Label:    doc.SymMap.GetLabel(uint32(addr)),
			Function: doc.FunManager.GetContaining(uint32(addr)),
			Data:     doc.DataManager.Get(uint32(addr)),
		}
		if resp.Label == nil && resp.Function == nil && resp.Data == nil {
			return echo.NewHTTPError(http.StatusNotFound, "no symbol")
		}
		return c.JSON(http.StatusOK, resp)
	})

	return e
}

func serveCommand(cfg *rootConfig) *ffcli.Command {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var mapFile, yamlFile, addr string
	fs.StringVar(&mapFile, "map", "", "symbol map file")
	fs.StringVar(&yamlFile, "yaml", "", "serve a saved yaml document instead of a map")
	fs.StringVar(&addr, "addr", ":1357", "listen address")

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve [flags] [file.map]",
		ShortHelp:  "serve the applied symbols over http",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			logger := cfg.Logger()

			var doc *internal.SoraDocument
			if yamlFile != "" {
				doc = internal.NewSoraDocument(nil, logger)
				if err := doc.LoadYaml(yamlFile); err != nil {
					return err
				}
			} else {
				path, err := resolveMapFile(mapFile, args, os.Stdin, os.Stdout)
				if err != nil {
					return err
				}
				if path == "" {
					return errors.New("missing map file")
				}
				doc, _, err = applyMapFile(ctx, path, logger)
				if err != nil {
					return err
				}
			}

			e := newServer(doc)
			go func() {
				<-ctx.Done()
				_ = e.Shutdown(context.Background())
			}()

			level.Info(logger).Log("msg", "listening", "addr", addr)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
