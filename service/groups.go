package service

import (
	"sort"
	"strconv"
	"strings"
)

// ParseGroupIDs turns a comma separated list of group ids into a set.
// Blank entries are skipped, duplicates collapse, and the result is sorted.
// A list that names no group at all is invalid.
func ParseGroupIDs(list string) ([]int, error) {
	seen := make(map[int]struct{})
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, ErrInvalidGroupList
		}
		seen[id] = struct{}{}
	}

	if len(seen) == 0 {
		return nil, ErrInvalidGroupList
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
