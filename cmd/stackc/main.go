package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stackc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "stackc",
	Short:         "Intrinsic code generator for a typed stack machine",
	Long:          `stackc compiles unit descriptions to stack-machine code, lowering recognized calls on primitive types through intrinsics`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(intrinsicsCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per unit")
	flags.Int("jobs", 0, "parallel compile workers (0 = GOMAXPROCS)")
	flags.Bool("no-cache", false, "do not read or write the compile cache")
	flags.String("ui", "auto", "progress UI (auto|on|off)")

	flags.String("trace", "", "write trace events to file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")

	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("stackc:", err)
		os.Exit(exitCode(err))
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
