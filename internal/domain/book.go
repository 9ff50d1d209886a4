package domain

import "time"

// Field limits for a book record.
const (
	MaxTitleLength   = 200
	MaxAuthorLength  = 200
	MaxEditionLength = 100
	MaxISBNLength    = 20
	MaxGenresPerBook = 20
	MaxGenreLength   = 50
	MinRating        = 1
	MaxRating        = 5
)

// Book is one entry in a user's collection.
// UserID, ID and CreatedAt never change after creation.
type Book struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	PublishedDate time.Time `json:"publishedDate"` // UTC midnight
	Rating        int       `json:"rating"`
	Edition       string    `json:"edition,omitempty"`
	ISBN          string    `json:"isbn,omitempty"`
	Genres        []string  `json:"genres"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BookFields are the client-supplied, mutable fields of a book.
type BookFields struct {
	Title         string    `json:"title" validate:"required,max=200"`
	Author        string    `json:"author" validate:"required,max=200"`
	PublishedDate time.Time `json:"publishedDate" validate:"required,notfuture"`
	Rating        int       `json:"rating" validate:"gte=1,lte=5"`
	Edition       string    `json:"edition" validate:"max=100"`
	ISBN          string    `json:"isbn" validate:"max=20"`
	Genres        []string  `json:"genres" validate:"max=20,dive,max=50,excludes=0x2C"`
}

// Apply copies the mutable fields onto b.
func (f BookFields) Apply(b *Book) {
	b.Title = f.Title
	b.Author = f.Author
	b.PublishedDate = DateOnly(f.PublishedDate)
	b.Rating = f.Rating
	b.Edition = f.Edition
	b.ISBN = f.ISBN
	b.Genres = f.Genres
}

// DateOnly truncates t to midnight UTC of its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
