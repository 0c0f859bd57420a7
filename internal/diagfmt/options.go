package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   bool // print the source line under the header
	ShowNotes bool
	Max       int // 0 - unlimited
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col
	IncludeNotes     bool
	Max              int // truncates output, not the Bag
}
