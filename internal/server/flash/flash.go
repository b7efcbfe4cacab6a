// Package flash stores one-shot user-facing messages in a cookie between a
// redirect and the next rendered page.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// CookieName is the name of the flash cookie.
const CookieName = "flash"

// Message categories used by the templates.
const (
	Success = "success"
	Info    = "info"
	Primary = "primary"
	Danger  = "danger"
)

// Message is a single flash message.
type Message struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

// Set appends a message to the flash cookie carried by the response.
// Messages already set on r are kept.
func Set(w http.ResponseWriter, r *http.Request, category, text string) {
	msgs := read(r)
	msgs = append(msgs, Message{Category: category, Text: text})
	raw, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending messages and clears the cookie.
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	msgs := read(r)
	if len(msgs) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return msgs
}

func read(r *http.Request) []Message {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}
