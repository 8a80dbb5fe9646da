package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)

	p = &PaginationParams{Page: 3, PerPage: 0}
	p.Validate()
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, 50, p.Offset())
}

func TestPaginate(t *testing.T) {
	items := make([]int, 60)
	for i := range items {
		items[i] = i + 1
	}

	t.Run("first page", func(t *testing.T) {
		res := Paginate(items, &PaginationParams{Page: 1, PerPage: 25})
		assert.Len(t, res.Items, 25)
		assert.Equal(t, 1, res.Items[0])
		assert.Equal(t, 3, res.Pagination.TotalPages)
		assert.True(t, res.Pagination.HasNext)
		assert.False(t, res.Pagination.HasPrev)
	})

	t.Run("last partial page", func(t *testing.T) {
		res := Paginate(items, &PaginationParams{Page: 3, PerPage: 25})
		assert.Equal(t, []int{51, 52, 53, 54, 55, 56, 57, 58, 59, 60}, res.Items)
		assert.False(t, res.Pagination.HasNext)
		assert.True(t, res.Pagination.HasPrev)
	})

	t.Run("past the end", func(t *testing.T) {
		res := Paginate(items, &PaginationParams{Page: 9, PerPage: 25})
		assert.Empty(t, res.Items)
		assert.Equal(t, int64(60), res.Pagination.Total)
	})

	t.Run("nil params use defaults", func(t *testing.T) {
		res := Paginate(items, nil)
		assert.Len(t, res.Items, DefaultPerPage)
	})
}
