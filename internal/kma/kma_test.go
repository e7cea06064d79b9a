package kma

import (
	"errors"
	"strings"
	"testing"
)

const sample = "구분\t행정구역코드\t1단계\t2단계\t3단계\t격자 X\t격자 Y\t경도(시)\t경도(분)\t경도(초)\t위도(시)\t위도(분)\t위도(초)\t경도(초/100)\t위도(초/100)\n" +
	"kor\t1100000000\t서울특별시\t\t\t60\t127\t126\t58\t48.03\t37\t33\t48.85\t126.980008333333\t37.5635694444444\n" +
	"kor\t1111000000\t서울특별시\t종로구\t\t60\t127\t126\t58\t51.57\t37\t34\t50.85\t126.981002777777\t37.5807916666666\n" +
	"kor\t1111051500\t서울특별시\t종로구\t청운효자동\t60\t127\t126\t58\t7.99\t37\t35\t2.76\t126.968886111111\t37.5841\n" +
	"\n" +
	"kor\t2729062800\t대구광역시\t달서구\t도원동\t88\t89\t128\t32\t3.84\t35\t48\t16.08\t128.5344\t35.8044666666666\n" +
	"kor\t1111000000\t서울특별시\t종로구\t\t60\t127\t0\t0\t0\t0\t0\t0\t1\t1\n"

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}

	tests := []struct {
		i    int
		path string
		code string
		lat  float64
	}{
		{0, "서울특별시", "1100000000", 37.5635694444444},
		{1, "서울특별시-종로구", "1111000000", 37.5807916666666},
		{2, "서울특별시-종로구-청운효자동", "1111051500", 37.5841},
		{3, "대구광역시-달서구-도원동", "2729062800", 35.8044666666666},
	}
	for _, tt := range tests {
		r := rows[tt.i]
		if r.Path != tt.path || r.Code != tt.code || r.Lat != tt.lat {
			t.Errorf("rows[%d] = %+v, want path=%s code=%s lat=%v", tt.i, r, tt.path, tt.code, tt.lat)
		}
	}
}

func TestGazetteerAndCoordinates(t *testing.T) {
	rows, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}

	g := Gazetteer(rows)
	want := []string{"서울특별시", "서울특별시-종로구", "서울특별시-종로구-청운효자동", "대구광역시-달서구-도원동"}
	if len(g) != len(want) {
		t.Fatalf("Gazetteer() = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Errorf("Gazetteer()[%d] = %q, want %q", i, g[i], want[i])
		}
	}

	c := Coordinates(rows)
	if got := c["서울특별시-종로구"]; got.Lat != 37.5807916666666 {
		t.Errorf("종로구 lat = %v, want first occurrence", got.Lat)
	}
	if got := c["대구광역시-달서구-도원동"]; got.Lon != 128.5344 {
		t.Errorf("도원동 lon = %v, want 128.5344", got.Lon)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"short row", "kor\t1100000000\t서울특별시\n", ErrShortRow},
		{"bad latitude", "kor\t1\t서울특별시\t\t\t60\t127\t0\t0\t0\t0\t0\t0\t126.9\tnorth\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if pe.Line != 1 {
				t.Errorf("line = %d, want 1", pe.Line)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}
