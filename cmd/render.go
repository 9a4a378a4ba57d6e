package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/nobeldash/internal/adapters/cache"
	"github.com/okian/nobeldash/internal/adapters/render"
	app "github.com/okian/nobeldash/internal/app"
	"github.com/okian/nobeldash/internal/domain/views"
	"github.com/okian/nobeldash/pkg/logger"
)

// Render output formats.
const (
	formatText = "text"
)

type renderFlags struct {
	year     int
	category string
	start    int
	end      int
	format   string
	out      string
}

func newRenderCmd(root *rootFlags) *cobra.Command {
	rf := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <view>",
		Short: "Render one view to the terminal or a file",
		Long: `Render loads the data once and writes a single view.

Views: map, year, category, gender (or their selector titles).
Formats: text and json for every view, geojson for map, png for gender,
xlsx for year and category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if rf.out != "" {
				var buf bytes.Buffer
				if err := runRender(cmd.Context(), root, rf, cmd, args[0], &buf); err != nil {
					return err
				}
				return os.WriteFile(rf.out, buf.Bytes(), 0o644)
			}
			return runRender(cmd.Context(), root, rf, cmd, args[0], out)
		},
	}
	f := cmd.Flags()
	f.IntVar(&rf.year, "year", 0, "year for the year view")
	f.StringVar(&rf.category, "category", "", "category for the category view")
	f.IntVar(&rf.start, "start", 0, "first year for the category view")
	f.IntVar(&rf.end, "end", 0, "last year for the category view")
	f.StringVarP(&rf.format, "format", "f", formatText, "text, json, geojson, png or xlsx")
	f.StringVarP(&rf.out, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

func runRender(ctx context.Context, root *rootFlags, rf *renderFlags, cmd *cobra.Command, viewArg string, w io.Writer) error {
	kind, err := views.ParseKind(viewArg)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Stdout carries the rendering, so the service logs nowhere.
	svc, err := newService(cfg, logger.Nop(), cache.Nop{}, false)
	if err != nil {
		return err
	}
	if _, err := svc.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	v, err := svc.DefaultView(ctx, kind)
	if err != nil {
		return err
	}
	v = overlay(v, rf, cmd)

	return writeView(ctx, svc, v, strings.ToLower(rf.format), w)
}

// overlay replaces default view parameters with the flags the user set.
func overlay(v views.View, rf *renderFlags, cmd *cobra.Command) views.View {
	changed := cmd.Flags().Changed
	switch dv := v.(type) {
	case views.YearView:
		if changed("year") {
			dv.Year = rf.year
		}
		return dv
	case views.CategoryView:
		if changed("category") {
			dv.Category = rf.category
		}
		if changed("start") {
			dv.Start = rf.start
		}
		if changed("end") {
			dv.End = rf.end
		}
		return dv
	default:
		return v
	}
}

func writeView(ctx context.Context, svc *app.Service, v views.View, format string, w io.Writer) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case formatText, app.FormatJSON:
		res, verr := svc.View(ctx, v)
		if verr != nil {
			return describe(verr)
		}
		if format == formatText {
			return render.Text(w, res)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case app.FormatGeoJSON:
		if v.Kind() != views.KindMap {
			return fmt.Errorf("%w: %s for %s", render.ErrFormat, format, v.Kind())
		}
		b, err = svc.MapGeoJSON(ctx)
	case app.FormatPNG:
		if v.Kind() != views.KindGender {
			return fmt.Errorf("%w: %s for %s", render.ErrFormat, format, v.Kind())
		}
		b, err = svc.GenderChart(ctx)
	case app.FormatXLSX:
		b, err = svc.Export(ctx, v)
	default:
		return fmt.Errorf("%w: %s", render.ErrFormat, format)
	}
	if err != nil {
		return describe(err)
	}
	_, err = w.Write(b)
	return err
}

// describe prefixes validation errors with the message the dashboard shows.
func describe(err error) error {
	if errors.Is(err, views.ErrInvalidYearRange) {
		return fmt.Errorf("%s: %w", views.MsgInvalidYearRange, err)
	}
	return err
}
