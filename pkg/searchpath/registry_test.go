package searchpath

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Add(t *testing.T) {
	tests := []struct {
		name     string
		max      int
		add      []string
		expected []string
	}{
		{name: "most recent first", max: 3, add: []string{"a", "b", "c"}, expected: []string{"c", "b", "a"}},
		{name: "re-add moves to front", max: 3, add: []string{"a", "b", "c", "a"}, expected: []string{"a", "c", "b"}},
		{name: "cap evicts oldest", max: 2, add: []string{"a", "b", "c"}, expected: []string{"c", "b"}},
		{name: "empty path ignored", max: 3, add: []string{"a", "", "b"}, expected: []string{"b", "a"}},
		{name: "zero capacity", max: 0, add: []string{"a"}, expected: nil},
		{name: "negative capacity", max: -1, add: []string{"a"}, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.max)
			for _, p := range tt.add {
				r.Add(p)
			}
			if tt.expected == nil {
				assert.Empty(t, r.List())
				return
			}
			assert.Equal(t, tt.expected, r.List())
		})
	}
}

func TestRegistry_CapKeepsMostRecent(t *testing.T) {
	r := New(DefaultMax)
	for i := 0; i < 30; i++ {
		r.Add(fmt.Sprintf("p%d", i))
	}

	list := r.List()
	assert.Len(t, list, DefaultMax)
	assert.Equal(t, "p29", list[0])
	assert.Equal(t, "p10", list[len(list)-1])
}

func TestRegistry_Remove(t *testing.T) {
	r := New(5)
	r.Add("a")
	r.Add("b")

	r.Remove("a")
	assert.Equal(t, []string{"b"}, r.List())

	r.Remove("missing")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ListIsCopy(t *testing.T) {
	r := New(5)
	r.Add("a")
	list := r.List()
	list[0] = "changed"
	assert.Equal(t, []string{"a"}, r.List())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New(10)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Add(fmt.Sprintf("p%d", i%15))
			r.Remove(fmt.Sprintf("p%d", (i+7)%15))
		}(i)
	}
	wg.Wait()

	list := r.List()
	assert.LessOrEqual(t, len(list), 10)
	seen := map[string]bool{}
	for _, p := range list {
		assert.False(t, seen[p], "duplicate %s", p)
		seen[p] = true
	}
}
