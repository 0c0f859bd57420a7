package unit

import (
	"fmt"
	"io"
	"strings"

	"stackc/internal/bytecode"
)

// WriteListing prints res in the human-readable listing format.
func WriteListing(w io.Writer, res *Result) error {
	if _, err := fmt.Fprintf(w, "unit %s (%s)\n", res.Unit, res.Path); err != nil {
		return err
	}
	for i := range res.Calls {
		cr := &res.Calls[i]
		via := "invoke"
		if cr.Intrinsic() {
			via = cr.Method
		}
		if _, err := fmt.Fprintf(w, "call #%d %s via %s -> %s\n", cr.Index+1, cr.Callee, via, cr.Result); err != nil {
			return err
		}
		if err := bytecode.Dump(w, cr.Code); err != nil {
			return err
		}
	}
	return nil
}

// Listing renders res with WriteListing.
func Listing(res *Result) string {
	var sb strings.Builder
	_ = WriteListing(&sb, res)
	return sb.String()
}
