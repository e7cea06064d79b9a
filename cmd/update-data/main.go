// Command update-data regenerates the korloc data files from a KMA
// forecast-grid location export.
//
// Usage:
//
//	go run ./cmd/update-data -in grid_locations.tsv
//
// This writes korloc-data/districts.json and korloc-data/coordinates.json.
// The files are picked up from the working directory before the embedded
// copies, so they can be checked with korloc-server before committing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andreiashu/korloc"
	"github.com/andreiashu/korloc/internal/kma"
)

func main() {
	in := flag.String("in", "", "KMA grid location export (tab-separated)")
	out := flag.String("out", filepath.Dir(korloc.DistrictsFile), "output directory")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Error: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	fmt.Printf("Reading %s...\n", *in)
	if err := run(*in, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Data files regenerated successfully.")
}

func run(in, out string) error {
	fh, err := os.Open(in)
	if err != nil {
		return err
	}
	defer fh.Close()

	rows, err := kma.Parse(fh)
	if err != nil {
		return err
	}
	gazetteer := kma.Gazetteer(rows)
	coords := kma.Coordinates(rows)
	if len(gazetteer) == 0 {
		return korloc.ErrEmptyGazetteer
	}

	if err := os.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeJSON(filepath.Join(out, filepath.Base(korloc.DistrictsFile)), gazetteer); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(out, filepath.Base(korloc.CoordinatesFile)), coords); err != nil {
		return err
	}
	fmt.Printf("      Locations: %d\n", len(gazetteer))
	fmt.Printf("      Coordinates: %d\n", len(coords))
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	return nil
}
