package korloc

import (
	"encoding/json"
	"fmt"
	"io"
)

// CoordinateTable maps an exact place-name path to its coordinates.
type CoordinateTable map[string]Coordinates

// Lookup returns the coordinates for id. When id has no entry, trailing path
// segments are stripped one at a time and each prefix is tried in turn, so a
// neighborhood without its own entry inherits its district's or city's
// coordinates. ok is false when no prefix matches.
func (t CoordinateTable) Lookup(id string) (c Coordinates, ok bool) {
	for key := id; ; {
		if c, ok := t[key]; ok {
			return c, true
		}
		parent, more := ParentID(key)
		if !more {
			return Coordinates{}, false
		}
		key = parent
	}
}

// Enrich returns loc with Coordinates set from the table, or cleared when
// nothing matches. loc itself is not modified.
func (t CoordinateTable) Enrich(loc Location) Location {
	loc.Coordinates = nil
	if c, ok := t.Lookup(loc.ID); ok {
		loc.Coordinates = &c
	}
	return loc
}

// LoadCoordinates decodes a JSON object of path -> {"lat":..,"lon":..}.
func LoadCoordinates(r io.Reader) (CoordinateTable, error) {
	t := CoordinateTable{}
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding coordinates: %w", err)
	}
	return t, nil
}

// DefaultCoordinates returns a copy of the built-in coordinate table covering
// every 시/도 plus a few districts.
func DefaultCoordinates() CoordinateTable {
	t := make(CoordinateTable, len(defaultCoordinates))
	for k, v := range defaultCoordinates {
		t[k] = v
	}
	return t
}

var defaultCoordinates = CoordinateTable{
	"서울특별시":         {Lat: 37.5665, Lon: 126.978},
	"서울특별시-종로구":     {Lat: 37.5735, Lon: 126.9788},
	"서울특별시-종로구-청운동": {Lat: 37.5892, Lon: 126.9706},
	"부산광역시":         {Lat: 35.1796, Lon: 129.0756},
	"대구광역시":         {Lat: 35.8714, Lon: 128.6014},
	"인천광역시":         {Lat: 37.4563, Lon: 126.7052},
	"광주광역시":         {Lat: 35.1595, Lon: 126.8526},
	"대전광역시":         {Lat: 36.3504, Lon: 127.3845},
	"울산광역시":         {Lat: 35.5384, Lon: 129.3114},
	"세종특별자치시":       {Lat: 36.480, Lon: 127.289},
	"경기도":           {Lat: 37.4138, Lon: 127.5183},
	"강원도":           {Lat: 37.8228, Lon: 128.1555},
	"충청북도":          {Lat: 36.8001, Lon: 127.7002},
	"충청남도":          {Lat: 36.5184, Lon: 126.8},
	"전라북도":          {Lat: 35.7175, Lon: 127.153},
	"전라남도":          {Lat: 34.8679, Lon: 126.991},
	"경상북도":          {Lat: 36.4919, Lon: 128.8889},
	"경상남도":          {Lat: 35.4606, Lon: 128.2132},
	"제주특별자치도":       {Lat: 33.4996, Lon: 126.5312},
}
