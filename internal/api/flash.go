package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

const flashCookie = "leadtracker_flash"

const (
	categorySuccess = "success"
	categoryError   = "error"
	categoryWarning = "warning"
)

type flashMessage struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

// flashStore keeps one-shot messages in a signed cookie until the next page render.
type flashStore struct {
	key []byte
}

func newFlashStore(secret string) *flashStore {
	return &flashStore{key: []byte(secret)}
}

func (f *flashStore) sign(payload string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// add appends a message to the ones already pending on this request.
func (f *flashStore) add(w http.ResponseWriter, r *http.Request, category, text string) {
	messages := append(f.peek(r), flashMessage{Category: category, Text: text})
	raw, err := json.Marshal(messages)
	if err != nil {
		return
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    payload + "." + f.sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (f *flashStore) peek(r *http.Request) []flashMessage {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(f.sign(payload))) {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var messages []flashMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}
	return messages
}

// pop returns pending messages and expires the cookie.
func (f *flashStore) pop(w http.ResponseWriter, r *http.Request) []flashMessage {
	messages := f.peek(r)
	if _, err := r.Cookie(flashCookie); err == nil {
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	}
	return messages
}
