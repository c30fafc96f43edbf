package converting_test

import (
	"testing"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/tools/converting"
	"github.com/stretchr/testify/assert"
)

func TestPointers(t *testing.T) {
	t.Run("should unwrap nil to the zero value", func(t *testing.T) {
		var missing *time.Time

		assert.True(t, converting.Unwrap(missing).IsZero())
	})

	t.Run("should unwrap a copy of the value", func(t *testing.T) {
		due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
		pointer := converting.PointerToValue(due)

		due = due.AddDate(0, 0, 1)

		assert.NotEqual(t, due, converting.Unwrap(pointer))
		assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), converting.Unwrap(pointer))
	})
}
