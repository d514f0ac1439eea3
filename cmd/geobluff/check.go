package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/park285/geobluff/internal/dataset"
	"github.com/park285/geobluff/internal/geobluff"
)

type CheckDataCmd struct {
	Countries  string `type:"path" help:"Countries JSON file (default: embedded deck)"`
	Categories string `type:"path" help:"Category config YAML file (default: embedded config)"`
	Language   string `default:"fr" help:"Language for labels"`
}

func (c *CheckDataCmd) Run() error { return c.run(os.Stdout) }

func (c *CheckDataCmd) run(out io.Writer) error {
	deck, err := dataset.Load(c.Countries, c.Categories)
	if err != nil {
		return err
	}
	lang := geobluff.NormalizeLanguage(c.Language)

	fmt.Fprintf(out, "countries: %d usable, %d skipped\n", deck.Len(), deck.Skipped())
	fmt.Fprintf(out, "categories (%d):\n", len(deck.CategoryIDs()))
	for _, id := range deck.CategoryIDs() {
		fmt.Fprintf(out, "  %-24s %s\n", id, deck.Label(id, lang))
	}
	fmt.Fprintf(out, "category sets (%d):\n", len(deck.Pools()))
	for _, p := range deck.Pools() {
		fmt.Fprintf(out, "  %-24s %s [%s]\n", p.ID, deck.PoolLabel(p.ID, lang), strings.Join(p.Categories, ", "))
	}

	needed := 2*geobluff.MaxHandSize + 1
	if deck.Len() < needed {
		fmt.Fprintf(out, "warning: hand size %d needs %d countries\n", geobluff.MaxHandSize, needed)
	}
	return nil
}
