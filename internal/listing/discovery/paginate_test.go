package discovery

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		page, perPage int
		want          Window
	}{
		{1, 20, Window{Offset: 0, Limit: 20}},
		{3, 10, Window{Offset: 20, Limit: 10}},
		{0, 10, Window{Offset: 0, Limit: 10}},
		{-2, 10, Window{Offset: 0, Limit: 10}},
		{2, 0, Window{Offset: 1, Limit: 1}},
		{2, 500, Window{Offset: 50, Limit: 50}},
		{9999, 20, Window{Offset: 199960, Limit: 20}},
		{math.MaxInt, 50, Window{Offset: math.MaxInt, Limit: 50}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Paginate(tt.page, tt.perPage), "page=%d perPage=%d", tt.page, tt.perPage)
	}
}

func TestResultPage(t *testing.T) {
	p := NewResultPage[int](nil, 3, 9999, 20)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, int64(3), p.Total)
	assert.Equal(t, 9999, p.Page)
	assert.Equal(t, 1, p.LastPage())
	assert.False(t, p.HasMore())

	p = NewResultPage([]int{1, 2}, 45, 1, 20)
	assert.Equal(t, 3, p.LastPage())
	assert.True(t, p.HasMore())

	p = NewResultPage([]int{}, 0, 1, 20)
	assert.Equal(t, 1, p.LastPage())
}
