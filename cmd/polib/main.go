// Command polib inspects and maintains gettext PO catalogs.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/bigabdoul/polib/po"
)

type options struct {
	Verbose bool `short:"v" long:"verbose" description:"enable debug logging"`
}

var opts options

func main() {
	parser := flags.NewParser(&opts, flags.Default)

	_, _ = parser.AddCommand("merge",
		"merge a POT template into a PO catalog",
		"Adds new template entries to the catalog and refreshes entry "+
			"metadata without touching existing translations.",
		&mergeCommand{})
	_, _ = parser.AddCommand("stat",
		"print catalog statistics",
		"Prints header, entry and translation counts for a PO file.",
		&statCommand{})
	_, _ = parser.AddCommand("export",
		"parse and re-serialize a PO catalog",
		"Reads a PO file and writes it back in canonical formatting.",
		&exportCommand{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func logger() *logrus.Logger {
	log := logrus.New()
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

type mergeCommand struct {
	Output string `short:"o" long:"output" value-name:"FILE" description:"write the merged catalog to FILE instead of overwriting the PO file"`
	Backup bool   `short:"b" long:"backup" description:"keep the previous file as .bak"`
	Args   struct {
		PO  string `positional-arg-name:"PO" description:"translated catalog"`
		POT string `positional-arg-name:"POT" description:"reference template"`
	} `positional-args:"true" required:"true"`
}

func (c *mergeCommand) Execute([]string) error {
	log := logger()
	cat, err := po.Merge(c.Args.PO, c.Args.POT)
	if err != nil {
		return err
	}
	out := c.Output
	if out == "" {
		out = c.Args.PO
	}
	writer := po.NewWriter(po.WriteOptions{Backup: c.Backup})
	if err := writer.SaveChanges(cat, out); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"entries": cat.Len(),
		"output":  out,
	}).Debug("catalogs merged")
	return nil
}

type statCommand struct {
	Args struct {
		PO string `positional-arg-name:"PO"`
	} `positional-args:"true" required:"true"`
}

func (c *statCommand) Execute([]string) error {
	cat, err := po.ReadFile(c.Args.PO, po.ReadOptions{})
	if err != nil {
		return err
	}

	translated, fuzzy, plural := 0, 0, 0
	for _, t := range cat.Entries() {
		if t.IsTranslated() {
			translated++
		}
		if t.IsFuzzy() {
			fuzzy++
		}
		if t.IsPlural() {
			plural++
		}
	}

	fmt.Printf("file:         %s\n", cat.FileName)
	if cat.Culture != "" {
		fmt.Printf("culture:      %s\n", cat.Culture)
	}
	fmt.Printf("headers:      %d\n", len(cat.Headers))
	fmt.Printf("entries:      %d\n", cat.Len())
	fmt.Printf("translated:   %d\n", translated)
	fmt.Printf("fuzzy:        %d\n", fuzzy)
	fmt.Printf("plural:       %d\n", plural)
	fmt.Printf("plural forms: %d\n", cat.PluralCount)
	return nil
}

type exportCommand struct {
	Output         string `short:"o" long:"output" value-name:"FILE" description:"write to FILE instead of stdout"`
	ExcludeHeaders bool   `long:"exclude-headers" description:"omit the header pseudo-entry"`
	NoReferences   bool   `long:"no-references" description:"omit #: reference comments"`
	Wrap           int    `long:"wrap" default:"0" value-name:"WIDTH" description:"reference word-wrap width (negative disables)"`
	Args           struct {
		PO string `positional-arg-name:"PO"`
	} `positional-args:"true" required:"true"`
}

func (c *exportCommand) Execute([]string) error {
	cat, err := po.ReadFile(c.Args.PO, po.ReadOptions{})
	if err != nil {
		return err
	}
	writer := po.NewWriter(po.WriteOptions{
		ExcludeHeaders: c.ExcludeHeaders,
		SkipReferences: c.NoReferences,
		WrapWidth:      c.Wrap,
	})
	if c.Output != "" {
		return writer.SaveChanges(cat, c.Output)
	}
	_, err = fmt.Print(writer.Export(cat))
	return err
}
