package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTweeter/internal/middleware"
	"github.com/atinyakov/GophTweeter/internal/models"
	"github.com/atinyakov/GophTweeter/internal/server/flash"
	"github.com/atinyakov/GophTweeter/internal/service"
)

// TweetService defines the tweet operations required by the HTTP handlers.
type TweetService interface {
	// List returns all tweets in creation order.
	List(ctx context.Context) ([]models.Tweet, error)
	// Create stores a tweet owned by ownerID.
	Create(ctx context.Context, ownerID int64, text string) (*models.Tweet, error)
	// DeleteIfOwner removes the tweet when actorID owns it.
	DeleteIfOwner(ctx context.Context, tweetID, actorID int64) error
}

// UserLookup resolves the current user for display.
type UserLookup interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

// TweetHandler serves the tweet list and handles create and delete.
// All of its routes expect an authenticated request.
type TweetHandler struct {
	Tweets TweetService
	Users  UserLookup
	Views  *Renderer
	Log    *zap.Logger
}

// List renders every tweet together with the create form.
func (h *TweetHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, newForm())
}

func (h *TweetHandler) renderList(w http.ResponseWriter, r *http.Request, status int, form Form) {
	tweets, err := h.Tweets.List(r.Context())
	if err != nil {
		h.Log.Error("list tweets", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	page := &Page{Title: "Tweets", Tweets: tweets, Form: form}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		user, err := h.Users.Get(r.Context(), userID)
		switch {
		case err == nil:
			pub := user.Public()
			page.User = &pub
		case errors.Is(err, service.ErrUserNotFound):
		default:
			h.Log.Warn("lookup current user", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	h.Views.Render(w, r, status, "tweets.html", page)
}

// Create stores a tweet from the posted "text" field.
func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	form := newForm()
	form.Values["text"] = r.PostFormValue("text")
	form.Require("text")
	if !form.Valid() {
		h.renderList(w, r, http.StatusBadRequest, form)
		return
	}

	if _, err := h.Tweets.Create(r.Context(), userID, form.Values["text"]); err != nil {
		h.Log.Error("create tweet", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	flash.Set(w, r, flash.Success, "Tweet Created!")
	http.Redirect(w, r, "/tweets", http.StatusSeeOther)
}

// Delete removes the tweet named by the {id} URL parameter if the current
// user owns it. Unknown ids answer 404.
func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	tweetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.Tweets.DeleteIfOwner(r.Context(), tweetID, userID)
	switch {
	case err == nil:
		flash.Set(w, r, flash.Info, "Tweet deleted.")
	case errors.Is(err, service.ErrForbidden):
		flash.Set(w, r, flash.Danger, "You don't have permission to that tweet.")
	case errors.Is(err, service.ErrTweetNotFound):
		http.NotFound(w, r)
		return
	default:
		h.Log.Error("delete tweet", zap.Int64("tweet_id", tweetID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/tweets", http.StatusSeeOther)
}
