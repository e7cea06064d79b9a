package korloc

import "strings"

// PathSeparator joins the segments of a place-name path,
// e.g. "서울특별시-종로구-청운동".
const PathSeparator = "-"

// splitPath splits a place-name path into its segments.
// An input without separators yields a single segment.
func splitPath(path string) []string {
	return strings.Split(path, PathSeparator)
}

func levelForSegments(n int) Level {
	switch n {
	case 1:
		return LevelCity
	case 2:
		return LevelDistrict
	default:
		return LevelNeighborhood
	}
}

// LevelOf returns the administrative level of a path from its segment count.
// Examples: "서울특별시" -> 시, "서울특별시-종로구" -> 구, "서울특별시-종로구-청운동" -> 동
func LevelOf(path string) Level {
	return levelForSegments(strings.Count(path, PathSeparator) + 1)
}

// ParentID returns the path with its last segment removed.
// Returns false for single-segment paths.
func ParentID(id string) (string, bool) {
	i := strings.LastIndex(id, PathSeparator)
	if i < 0 {
		return "", false
	}
	return id[:i], true
}
