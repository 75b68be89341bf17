package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("error returns message", func(t *testing.T) {
		err := NewDomainError("SOME_CODE", "something happened")
		assert.Equal(t, "something happened", err.Error())
	})

	t.Run("wrapped error matches sentinel by code", func(t *testing.T) {
		wrapped := fmt.Errorf("%w: supplier ACME", ErrNotFound)
		assert.True(t, errors.Is(wrapped, ErrNotFound))
		assert.False(t, errors.Is(wrapped, ErrInvalidState))
	})

	t.Run("copies with same code compare equal", func(t *testing.T) {
		other := NewDomainError("NOT_FOUND", "supplier not found")
		assert.True(t, errors.Is(other, ErrNotFound))
	})
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 7, 1, 3)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(7), p.Total)

	empty := NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestFilterOffset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}
