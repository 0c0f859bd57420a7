package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"stackc/internal/driver"
	"stackc/internal/unit"
)

var (
	emitFormat string
	emitOutput string
)

func init() {
	emitCmd.Flags().StringVar(&emitFormat, "format", "pretty", "output format (pretty|json|msgpack)")
	emitCmd.Flags().StringVarP(&emitOutput, "output", "o", "", "write to file instead of stdout")
}

var emitCmd = &cobra.Command{
	Use:   "emit [paths...]",
	Short: "Compile units and print the generated code",
	Long:  `Compile unit files (or every *.toml under the given directories) and print one listing per call`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(emitFormat)
		switch format {
		case "pretty", "json", "msgpack":
		default:
			return fmt.Errorf("unsupported format %q (must be pretty, json or msgpack)", emitFormat)
		}
		if format == "msgpack" && emitOutput == "" && isTerminal(os.Stdout) {
			return errors.New("refusing to write msgpack to a terminal; use -o")
		}
		return session(cmd, func(ctx context.Context, cfg *settings) error {
			out, buildErr := buildUnits(ctx, cmd, cfg, args, false)
			if out == nil {
				return buildErr
			}
			if err := writeTo(cmd, emitOutput, func(w io.Writer) error {
				return emitResults(w, format, results(out))
			}); err != nil {
				return err
			}
			return buildErr
		})
	},
}

func results(out *driver.Output) []*unit.Result {
	res := make([]*unit.Result, 0, len(out.Units))
	for i := range out.Units {
		if r := out.Units[i].Result; r != nil {
			res = append(res, r)
		}
	}
	return res
}

func emitResults(w io.Writer, format string, res []*unit.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(res)
	}
	for i, r := range res {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := unit.WriteListing(w, r); err != nil {
			return err
		}
	}
	return nil
}

// writeTo runs fn against path, or stdout when path is empty.
func writeTo(cmd *cobra.Command, path string, fn func(io.Writer) error) (err error) {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(f)
}
