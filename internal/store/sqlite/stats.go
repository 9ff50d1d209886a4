package sqlite

import (
	"context"
	"fmt"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// CollectionSummary returns the book count and mean rating, 0 when empty.
func (s *Store) CollectionSummary(ctx context.Context, userID string) (domain.CollectionSummary, error) {
	var summary domain.CollectionSummary
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM books WHERE user_id = ?`, userID,
	).Scan(&summary.TotalBooks, &summary.AverageRating)
	if err != nil {
		return domain.CollectionSummary{}, fmt.Errorf("collection summary: %w", err)
	}
	return summary, nil
}

// GenreDistribution counts and averages the user's books per genre.
func (s *Store) GenreDistribution(ctx context.Context, userID string) ([]domain.GenreStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.name, COUNT(*) AS n, AVG(b.rating)
		FROM books b
		JOIN book_genres bg ON bg.book_id = b.id
		JOIN genres g ON g.name = bg.genre_name
		WHERE b.user_id = ?
		GROUP BY g.name
		ORDER BY n DESC, g.name_key, g.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("genre distribution: %w", err)
	}
	defer rows.Close()

	stats := []domain.GenreStat{}
	for rows.Next() {
		var st domain.GenreStat
		if err := rows.Scan(&st.Genre, &st.Count, &st.AverageRating); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// RatingDistribution counts the user's books per rating present.
func (s *Store) RatingDistribution(ctx context.Context, userID string) ([]domain.RatingCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rating, COUNT(*) FROM books WHERE user_id = ? GROUP BY rating ORDER BY rating`, userID)
	if err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}
	defer rows.Close()

	var counts []domain.RatingCount
	for rows.Next() {
		var rc domain.RatingCount
		if err := rows.Scan(&rc.Rating, &rc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, rc)
	}
	return counts, rows.Err()
}

// RecentBooks returns the newest books first.
func (s *Store) RecentBooks(ctx context.Context, userID string, limit int) ([]domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books b WHERE b.user_id = ?
		ORDER BY b.created_at DESC, b.id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent books: %w", err)
	}
	books, err := scanBooks(rows)
	if err != nil {
		return nil, err
	}
	if err := attachGenres(ctx, s.db, books); err != nil {
		return nil, err
	}
	return books, nil
}
