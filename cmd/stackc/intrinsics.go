package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"stackc/internal/unit"
)

var (
	intrinsicsFormat string
	intrinsicsFilter string
)

func init() {
	intrinsicsCmd.Flags().StringVar(&intrinsicsFormat, "format", "pretty", "output format (pretty|json)")
	intrinsicsCmd.Flags().StringVar(&intrinsicsFilter, "owner", "", "only list members of this type (e.g. Int)")
}

type intrinsicRow struct {
	Callee string `json:"callee"`
	Method string `json:"method"`
	Result string `json:"result"`
}

var intrinsicsCmd = &cobra.Command{
	Use:   "intrinsics",
	Short: "List the calls lowered by intrinsics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(intrinsicsFormat)
		if format != "pretty" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be pretty or json)", intrinsicsFormat)
		}
		w, err := unit.NewWorld()
		if err != nil {
			return err
		}
		rows := intrinsicRows(w, intrinsicsFilter)
		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		return renderIntrinsics(cmd.OutOrStdout(), rows)
	},
}

func intrinsicRows(w *unit.World, owner string) []intrinsicRow {
	entries := w.Registry.Entries()
	rows := make([]intrinsicRow, 0, len(entries))
	for _, e := range entries {
		sym := w.Symbols.Get(e.Symbol)
		if owner != "" && w.Types.Format(sym.Owner) != owner {
			continue
		}
		rows = append(rows, intrinsicRow{
			Callee: w.Symbols.QualifiedName(e.Symbol),
			Method: e.Method.Name(),
			Result: w.Types.Format(sym.Result),
		})
	}
	return rows
}

func renderIntrinsics(out io.Writer, rows []intrinsicRow) error {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.Callee))
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(out, "%s  %-10s -> %s\n", runewidth.FillRight(r.Callee, width), r.Method, r.Result); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%d intrinsics\n", len(rows))
	return err
}
