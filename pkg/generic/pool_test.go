package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsValues(t *testing.T) {
	created := 0
	p := NewPool(func() []int {
		created++
		return make([]int, 4)
	}, func(s []int) {
		for i := range s {
			s[i] = -1
		}
	})

	s := p.Get()
	assert.Equal(t, []int{-1, -1, -1, -1}, s, "fresh values are reset too")
	s[2] = 7
	p.Put(s)

	// sync.Pool may drop values, so a recycled or fresh slice is fine as
	// long as it is reset.
	assert.Equal(t, []int{-1, -1, -1, -1}, p.Get())
	assert.GreaterOrEqual(t, created, 1)
}

func TestPoolWithoutReset(t *testing.T) {
	p := NewPool(func() *int { v := 3; return &v }, nil)
	assert.Equal(t, 3, *p.Get())
}
