package config

import "strconv"

type GraphConfig interface {
	GetMaxQueryComplexity() int
}

type Graph struct{}

var _ GraphConfig = Graph{}

func (Graph) GetMaxQueryComplexity() int {
	value := GetEnv("MAX_QUERY_COMPLEXITY", "")
	if value == "" {
		return 45
	}
	if max, err := strconv.Atoi(value); err == nil && max > 0 {
		return max
	}
	return 45
}
