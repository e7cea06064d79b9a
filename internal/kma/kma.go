// Package kma reads the KMA forecast-grid location export (격자 위경도 목록) and
// turns it into the gazetteer and coordinate table korloc ships with.
//
// Expected tab-separated columns:
//
//	구분 행정구역코드 1단계 2단계 3단계 격자X 격자Y 경도(시) 경도(분) 경도(초) 위도(시) 위도(분) 위도(초) 경도(초/100) 위도(초/100)
package kma

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andreiashu/korloc"
)

const (
	colCode   = 1
	colLevel1 = 2
	colLevel3 = 4
	colLon    = 13
	colLat    = 14
	numCols   = 15
)

// Row is one administrative unit from the export.
type Row struct {
	Code string  // 행정구역코드
	Path string  // hyphen-joined 1단계-2단계-3단계, blanks omitted
	Lat  float64 // 위도(초/100), decimal degrees
	Lon  float64 // 경도(초/100), decimal degrees
}

// ParseError reports a malformed data line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ErrShortRow is wrapped by ParseError when a line has too few columns.
var ErrShortRow = errors.New("too few columns")

// Parse reads every data row. Header lines (first column "구분") and blank
// lines are skipped.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading grid export: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) == 0 || strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}
		if strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")) == "구분" {
			continue
		}
		if len(rec) < numCols {
			return nil, &ParseError{Line: line, Err: ErrShortRow}
		}

		var parts []string
		for _, f := range rec[colLevel1 : colLevel3+1] {
			if f = strings.TrimSpace(f); f != "" {
				parts = append(parts, f)
			}
		}
		if len(parts) == 0 {
			continue
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[colLon]), 64)
		if err != nil {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("longitude: %w", err)}
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[colLat]), 64)
		if err != nil {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("latitude: %w", err)}
		}

		rows = append(rows, Row{
			Code: strings.TrimSpace(rec[colCode]),
			Path: strings.Join(parts, korloc.PathSeparator),
			Lat:  lat,
			Lon:  lon,
		})
	}
	return rows, nil
}

// Gazetteer returns the distinct paths of rows in file order.
func Gazetteer(rows []Row) []string {
	out := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if !seen[r.Path] {
			seen[r.Path] = true
			out = append(out, r.Path)
		}
	}
	return out
}

// Coordinates returns a table with the first position seen for each path.
func Coordinates(rows []Row) korloc.CoordinateTable {
	t := make(korloc.CoordinateTable, len(rows))
	for _, r := range rows {
		if _, ok := t[r.Path]; !ok {
			t[r.Path] = korloc.Coordinates{Lat: r.Lat, Lon: r.Lon}
		}
	}
	return t
}
