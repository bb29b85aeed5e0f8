// Command applyedits reads a source file and an <edits> block (from
// stdin or -edits) and prints the file with those edits applied, as a
// minimal end-to-end exercise of package xmledit.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/sourcegraph/fuzzymatch/internal/obs"
	"github.com/sourcegraph/fuzzymatch/xmledit"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "path to the file the <edits> block refers to")
	editsPath := flag.String("edits", "", "path to a file containing the <edits> block; defaults to stdin")
	logLevel := flag.String("log-level", "", "debug|info|warn|error; empty disables logging")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "applyedits: -file is required")
		os.Exit(2)
	}

	xmledit.SetLogger(obs.New("applyedits", *logLevel))

	if err := run(*file, *editsPath); err != nil {
		fmt.Fprintln(os.Stderr, "applyedits:", err)
		os.Exit(1)
	}
}

func run(filePath, editsPath string) error {
	sourceBytes, err := os.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "reading %s", filePath)
	}

	var editsInput []byte
	if editsPath != "" {
		editsInput, err = os.ReadFile(editsPath)
	} else {
		editsInput, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return errors.Wrap(err, "reading edits input")
	}

	buffer := xmledit.NewStringBuffer(string(sourceBytes))
	contextRanges := []xmledit.AnchorRange{{Start: buffer.AnchorBefore(0), End: xmledit.MaxAnchor}}

	_, edits, err := xmledit.ResolveXMLEdits(context.Background(), string(editsInput),
		func(path string) (xmledit.BufferSnapshot, []xmledit.AnchorRange, bool) {
			return buffer, contextRanges, true
		},
	)
	if err != nil {
		return err
	}

	fmt.Print(xmledit.Apply(buffer, edits))
	return nil
}
