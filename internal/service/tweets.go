package service

import (
	"context"
	"errors"

	"github.com/atinyakov/GophTweeter/internal/models"
	"github.com/atinyakov/GophTweeter/internal/repository"
)

var (
	// ErrTweetNotFound is returned when the tweet does not exist.
	ErrTweetNotFound = errors.New("tweet not found")
	// ErrForbidden is returned when the acting user does not own the tweet.
	ErrForbidden = errors.New("you don't have permission to that tweet")
)

// TweetRepository defines the persistence operations needed by the TweetService.
type TweetRepository interface {
	// ListTweets returns all tweets in insertion order.
	ListTweets(ctx context.Context) ([]models.Tweet, error)
	// CreateTweet stores a tweet owned by userID.
	CreateTweet(ctx context.Context, userID int64, text string) (*models.Tweet, error)
	// GetTweetByID returns repository.ErrNotFound for an unknown id.
	GetTweetByID(ctx context.Context, id int64) (*models.Tweet, error)
	// DeleteTweet deletes the tweet if it belongs to userID, otherwise
	// returns repository.ErrNotFound.
	DeleteTweet(ctx context.Context, id, userID int64) error
}

// TweetService implements the tweet store on top of a TweetRepository.
type TweetService struct {
	// repo is the underlying persistence repository.
	repo TweetRepository
}

// NewTweetService constructs a TweetService with the provided TweetRepository.
func NewTweetService(repo TweetRepository) *TweetService {
	return &TweetService{repo: repo}
}

// List returns every tweet.
func (s *TweetService) List(ctx context.Context) ([]models.Tweet, error) {
	return s.repo.ListTweets(ctx)
}

// Create stores a tweet owned by ownerID. The caller is trusted to have
// established ownerID from the session.
func (s *TweetService) Create(ctx context.Context, ownerID int64, text string) (*models.Tweet, error) {
	return s.repo.CreateTweet(ctx, ownerID, text)
}

// DeleteIfOwner deletes the tweet when actorID owns it.
// Returns ErrTweetNotFound or ErrForbidden otherwise; neither changes state.
func (s *TweetService) DeleteIfOwner(ctx context.Context, tweetID, actorID int64) error {
	tweet, err := s.repo.GetTweetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTweetNotFound
		}
		return err
	}

	if !tweet.OwnedBy(actorID) {
		return ErrForbidden
	}

	if err := s.repo.DeleteTweet(ctx, tweetID, actorID); err != nil {
		// removed concurrently after the lookup
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTweetNotFound
		}
		return err
	}
	return nil
}
