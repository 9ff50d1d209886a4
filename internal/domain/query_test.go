package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBookPage(t *testing.T) {
	q := BookQuery{Page: 2, PageSize: 10}

	page := NewBookPage(nil, q, 25)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrevious)
	assert.NotNil(t, page.Items)

	page = NewBookPage(nil, BookQuery{Page: 1, PageSize: 10}, 0)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)

	page = NewBookPage(nil, BookQuery{Page: 5, PageSize: 10}, 25)
	assert.False(t, page.HasNext, "pages past the end have no next page")
}

func TestBookQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, BookQuery{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, BookQuery{Page: 3, PageSize: 20}.Offset())
}

func TestDateOnly(t *testing.T) {
	in := time.Date(1965, 8, 1, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	assert.Equal(t, time.Date(1965, 8, 2, 0, 0, 0, 0, time.UTC), DateOnly(in))
	assert.True(t, DateOnly(time.Time{}).IsZero())
}

func TestImportSummary_Counts(t *testing.T) {
	var s ImportSummary
	s.Imported()
	s.Skip(SkippedRow{Row: 3, Title: "Dune", Reason: SkipReasonDuplicate})

	assert.Equal(t, 1, s.ImportedCount)
	assert.Equal(t, 1, s.SkippedCount)
	assert.Equal(t, 2, s.TotalProcessed)
	assert.Len(t, s.SkippedRows, 1)
}
