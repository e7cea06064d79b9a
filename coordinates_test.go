package korloc

import (
	"strings"
	"testing"
)

func TestCoordinateTableLookup(t *testing.T) {
	table := CoordinateTable{
		"서울특별시":     {Lat: 37.5665, Lon: 126.978},
		"서울특별시-종로구": {Lat: 37.5735, Lon: 126.9788},
	}

	tests := []struct {
		id     string
		want   Coordinates
		wantOK bool
	}{
		{"서울특별시-종로구", Coordinates{37.5735, 126.9788}, true},
		{"서울특별시-종로구-청운동", Coordinates{37.5735, 126.9788}, true},
		{"서울특별시-종로구-청운동-1통", Coordinates{37.5735, 126.9788}, true},
		{"서울특별시-중구", Coordinates{37.5665, 126.978}, true},
		{"서울특별시", Coordinates{37.5665, 126.978}, true},
		{"부산광역시-중구", Coordinates{}, false},
		{"존재하지않는장소12345", Coordinates{}, false},
		{"", Coordinates{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := table.Lookup(tt.id)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Lookup(%q) = %v, %v, want %v, %v", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCoordinateTableEnrich(t *testing.T) {
	table := CoordinateTable{"서울특별시": {Lat: 37.5665, Lon: 126.978}}

	stale := &Coordinates{Lat: 1, Lon: 2}
	in := NewLocation("부산광역시")
	in.Coordinates = stale

	out := table.Enrich(in)
	if out.Coordinates != nil {
		t.Errorf("Enrich(부산광역시).Coordinates = %v, want nil", out.Coordinates)
	}
	if in.Coordinates != stale || *stale != (Coordinates{1, 2}) {
		t.Error("Enrich modified its input")
	}

	a := table.Enrich(NewLocation("서울특별시-종로구"))
	b := table.Enrich(NewLocation("서울특별시-종로구"))
	if a.Coordinates == nil || b.Coordinates == nil {
		t.Fatal("Enrich(서울특별시-종로구) found no coordinates")
	}
	if a.Coordinates == b.Coordinates {
		t.Error("Enrich shares coordinate pointers between calls")
	}
	a.Coordinates.Lat = 0
	if got, _ := table.Lookup("서울특별시"); got.Lat != 37.5665 {
		t.Error("mutating an enriched location changed the table")
	}
}

func TestCoordinateTableNil(t *testing.T) {
	var table CoordinateTable
	if _, ok := table.Lookup("서울특별시"); ok {
		t.Error("nil table found coordinates")
	}
	if loc := table.Enrich(NewLocation("서울특별시")); loc.Coordinates != nil {
		t.Error("nil table enriched a location")
	}
}

func TestLoadCoordinates(t *testing.T) {
	table, err := LoadCoordinates(strings.NewReader(`{
		"서울특별시": {"lat": 37.5665, "lon": 126.978},
		"서울특별시-종로구": {"lat": 37.5735, "lon": 126.9788}
	}`))
	if err != nil {
		t.Fatalf("LoadCoordinates() error = %v", err)
	}
	if len(table) != 2 {
		t.Errorf("len = %d, want 2", len(table))
	}
	if c, ok := table.Lookup("서울특별시-종로구-청운동"); !ok || c.Lat != 37.5735 {
		t.Errorf("Lookup(청운동) = %v, %v", c, ok)
	}

	if _, err := LoadCoordinates(strings.NewReader(`["서울특별시"]`)); err == nil {
		t.Error("LoadCoordinates(array) succeeded, want error")
	}
}

func TestDefaultCoordinates(t *testing.T) {
	a := DefaultCoordinates()
	if len(a) != len(defaultCoordinates) {
		t.Fatalf("len = %d, want %d", len(a), len(defaultCoordinates))
	}
	for _, city := range []string{"서울특별시", "부산광역시", "세종특별자치시", "제주특별자치도"} {
		if _, ok := a[city]; !ok {
			t.Errorf("missing %s", city)
		}
	}

	a["서울특별시"] = Coordinates{}
	if DefaultCoordinates()["서울특별시"].Lat != 37.5665 {
		t.Error("DefaultCoordinates() returned the shared table")
	}
}
