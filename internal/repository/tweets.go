package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophTweeter/internal/models"
)

// PostgresTweetRepository implements tweet storage against a PostgreSQL database.
type PostgresTweetRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTweetRepository creates a new PostgresTweetRepository using the provided *sql.DB.
func NewPostgresTweetRepository(db *sql.DB) *PostgresTweetRepository {
	return &PostgresTweetRepository{DB: db}
}

// ListTweets returns every tweet in insertion order, each joined with the
// owner's username.
func (r *PostgresTweetRepository) ListTweets(ctx context.Context) ([]models.Tweet, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.text, t.user_id, u.username
		  FROM tweets t
		  JOIN users u ON u.id = t.user_id
		 ORDER BY t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("ListTweets: %w", err)
	}
	defer rows.Close()

	tweets := make([]models.Tweet, 0)
	for rows.Next() {
		var t models.Tweet
		if err := rows.Scan(&t.ID, &t.Text, &t.UserID, &t.Username); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTweets: %w", err)
	}
	return tweets, nil
}

// CreateTweet stores a new tweet owned by userID and returns it with its ID.
//
//	ctx:    context for cancellation and deadlines
//	userID: identifier of the owning user
//	text:   tweet body
func (r *PostgresTweetRepository) CreateTweet(ctx context.Context, userID int64, text string) (*models.Tweet, error) {
	tweet := &models.Tweet{Text: text, UserID: userID}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO tweets (text, user_id) VALUES ($1, $2) RETURNING id`,
		text, userID,
	).Scan(&tweet.ID)
	if err != nil {
		return nil, fmt.Errorf("CreateTweet: %w", err)
	}
	return tweet, nil
}

// GetTweetByID fetches a single tweet. Returns ErrNotFound if it does not exist.
func (r *PostgresTweetRepository) GetTweetByID(ctx context.Context, id int64) (*models.Tweet, error) {
	var t models.Tweet
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, text, user_id FROM tweets WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Text, &t.UserID)
	if err != nil {
		if err := mapError(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("GetTweetByID: %w", err)
	}
	return &t, nil
}

// DeleteTweet removes the tweet only if it is owned by userID.
// Returns ErrNotFound when no row matched both id and owner.
func (r *PostgresTweetRepository) DeleteTweet(ctx context.Context, id, userID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM tweets WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("DeleteTweet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
