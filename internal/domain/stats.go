package domain

// Recent-books limits for collection stats.
const (
	DefaultRecentBooks = 5
	MaxRecentBooks     = 50
)

// GenreStat is one row of the genre distribution.
type GenreStat struct {
	Genre         string  `json:"genre"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

// RatingCount is the number of books holding a given rating.
type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// CollectionSummary is the count and mean rating over a whole collection.
type CollectionSummary struct {
	TotalBooks    int
	AverageRating float64
}

// CollectionStats summarises a user's entire collection, ignoring any
// listing filters.
type CollectionStats struct {
	TotalBooks         int           `json:"totalBooks"`
	AverageRating      float64       `json:"averageRating"`
	GenreDistribution  []GenreStat   `json:"genreDistribution"`
	RatingDistribution []RatingCount `json:"ratingDistribution"`
	RecentBooks        []Book        `json:"recentBooks"`
}
