package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChain(t *testing.T) {
	assert := assert.New(t)

	first := map[string]int{"A": 1}
	second := map[string]int{"B": 2, "C": 3}

	got := map[string]int{}
	for key, value := range Chain(maps.All(first), maps.All(second)) {
		got[key] = value
	}
	assert.Equal(map[string]int{"A": 1, "B": 2, "C": 3}, got)

	count := 0
	for range Chain(maps.All(second), maps.All(first)) {
		count++
		break
	}
	assert.Equal(1, count)

	assert.Empty(maps.Collect(Chain[string, int]()))
}
