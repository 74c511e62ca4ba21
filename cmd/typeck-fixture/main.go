// Command typeck-fixture loads a YAML fixture describing one function body,
// runs it through the typeck package's facade, and prints every diagnostic
// the pipeline recorded (or "ok" when there are none), followed by the
// resolved HIR as JSON (via internal/apply.Dump) when --dump-json is given,
// whether or not typechecking succeeded. It plays the same role cmd/escalier/build.go plays for
// the teacher: a thin CLI wrapping "read input, run one pipeline stage,
// report the result".
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gorustic/typeck"
	"github.com/gorustic/typeck/internal/apply"
	"github.com/gorustic/typeck/internal/fixture"
)

func main() {
	dumpJSON := flag.Bool("dump-json", false, "also print the resolved HIR as JSON after the diagnostics")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: typeck-fixture [--dump-json] <fixture.yaml>")
		os.Exit(2)
	}

	if err := run(os.Stdout, args[0], *dumpJSON); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(stdout io.Writer, path string, dumpJSON bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("typeck-fixture: %w", err)
	}

	built, err := fixture.Load(raw)
	if err != nil {
		return fmt.Errorf("typeck-fixture: parsing %s: %w", path, err)
	}

	errs := typeck.Typecheck(built.Crate, built.Module, built.Params, built.ReturnType, built.Body, built.Arena)
	for _, e := range errs {
		fmt.Fprintf(stdout, "error: %s\n", e.Error())
	}
	if len(errs) == 0 {
		fmt.Fprintln(stdout, "ok")
	}

	if dumpJSON {
		fmt.Fprintln(stdout, apply.Dump(built.Arena))
	}
	if len(errs) > 0 {
		return fmt.Errorf("typeck-fixture: %d error(s)", len(errs))
	}
	return nil
}
