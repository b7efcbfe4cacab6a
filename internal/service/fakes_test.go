package service_test

import (
	"context"
	"sync"

	"github.com/atinyakov/GophTweeter/internal/models"
	"github.com/atinyakov/GophTweeter/internal/repository"
)

// memRepo is an in-memory UserRepository and TweetRepository with the same
// uniqueness and not-found semantics as the Postgres repositories.
type memRepo struct {
	mu         sync.Mutex
	users      []models.User
	tweets     []models.Tweet
	nextUserID int64
	nextID     int64
}

func newMemRepo() *memRepo {
	return &memRepo{}
}

func (m *memRepo) CreateUser(_ context.Context, username, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return nil, repository.ErrDuplicate
		}
	}
	m.nextUserID++
	u := models.User{ID: m.nextUserID, Username: username, PasswordHash: hash}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memRepo) ListTweets(context.Context) ([]models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Tweet, len(m.tweets))
	copy(out, m.tweets)
	return out, nil
}

func (m *memRepo) CreateTweet(_ context.Context, userID int64, text string) (*models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := models.Tweet{ID: m.nextID, Text: text, UserID: userID}
	m.tweets = append(m.tweets, t)
	return &t, nil
}

func (m *memRepo) GetTweetByID(_ context.Context, id int64) (*models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tweets {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) DeleteTweet(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tweets {
		if t.ID == id && t.UserID == userID {
			m.tweets = append(m.tweets[:i], m.tweets[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
