package main

import (
	"fmt"
	"os"
	"strings"
)

// switchMode is the auto|on|off value shared by --ui and --color.
type switchMode string

const (
	modeAuto switchMode = "auto"
	modeOn   switchMode = "on"
	modeOff  switchMode = "off"
)

func parseSwitch(flag, value string) (switchMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return modeAuto, nil
	case "on":
		return modeOn, nil
	case "off":
		return modeOff, nil
	}
	return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabled resolves auto against whether f is an interactive terminal.
func (m switchMode) enabled(f *os.File) bool {
	switch m {
	case modeOn:
		return true
	case modeOff:
		return false
	}
	return isTerminal(f)
}

// shouldUseTUI reports whether progress is drawn on stderr. Quiet runs only
// get the live view when it was asked for explicitly.
func shouldUseTUI(mode switchMode, quiet bool) bool {
	if quiet && mode == modeAuto {
		return false
	}
	return mode.enabled(os.Stderr)
}
