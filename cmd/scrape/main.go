// Command scrape converts a saved ClockCaster results page into the payload
// JSON the ingest command accepts with -file.
package main

import (
	"flag"
	"fmt"
	"os"

	sonic "github.com/bytedance/sonic"

	"github.com/openregatta/timing-sync/external/clockcaster"
)

func main() {
	inPath := flag.String("in", "cc.html", "saved results page to parse")
	outPath := flag.String("out", "output.json", "payload file to write, or - for stdout")
	flag.Parse()

	if err := run(*inPath, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "scrape: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open results page: %w", err)
	}
	defer func() { _ = in.Close() }()

	payload, err := clockcaster.ExtractResultsPage(in)
	if err != nil {
		return err
	}

	encoded, err := sonic.ConfigDefault.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "-" {
		_, err = os.Stdout.Write(encoded)
		return err
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write payload file: %w", err)
	}

	return nil
}
