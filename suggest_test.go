package korloc

import (
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	idx := builtIndex(t, scenarioGazetteer...)

	tests := []struct {
		name     string
		query    string
		distance int
		limit    int
		want     []string
	}{
		{
			name:     "one typo",
			query:    "종노구",
			distance: 1,
			limit:    DefaultLimit,
			want:     []string{"서울특별시-종로구", "서울특별시-종로구-청운동"},
		},
		{
			name:     "closest first",
			query:    "청운도",
			distance: 3,
			limit:    DefaultLimit,
			want:     []string{"서울특별시-종로구-청운동", "서울특별시-종로구"},
		},
		{
			name:     "distance is capped",
			query:    "청운도",
			distance: 50,
			limit:    DefaultLimit,
			want:     []string{"서울특별시-종로구-청운동", "서울특별시-종로구"},
		},
		{
			name:     "limit",
			query:    "청운도",
			distance: 3,
			limit:    1,
			want:     []string{"서울특별시-종로구-청운동"},
		},
		{
			name:     "exact token",
			query:    "부산광역시",
			distance: 1,
			limit:    DefaultLimit,
			want:     []string{"부산광역시"},
		},
		{name: "too far", query: "대전광역시", distance: 1, limit: DefaultLimit},
		{name: "zero distance", query: "종노구", distance: 0, limit: DefaultLimit},
		{name: "zero limit", query: "종노구", distance: 1, limit: 0},
		{name: "too short", query: "종", distance: 1, limit: DefaultLimit},
		{name: "blank", query: "  ", distance: 1, limit: DefaultLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(idx.Suggest(tt.query, tt.distance, tt.limit))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q, %d, %d) = %v, want %v", tt.query, tt.distance, tt.limit, got, tt.want)
			}
		})
	}
}

func TestSuggest_Unbuilt(t *testing.T) {
	idx := newTestIndex(scenarioGazetteer, nil)
	if got := idx.Suggest("종노구", 1, DefaultLimit); got != nil {
		t.Errorf("Suggest on unbuilt index = %v, want nil", ids(got))
	}
}
