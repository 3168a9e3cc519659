package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"fresh/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

const HeaderKey = "Idempotency-Key"

// Record is a replayable response for one client key.
type Record struct {
	Key         string    `bson:"key"`
	Method      string    `bson:"method"`
	Path        string    `bson:"path"`
	UserID      string    `bson:"userId"`
	RequestHash string    `bson:"requestHash"`
	Done        bool      `bson:"done"`
	Status      int       `bson:"status,omitempty"`
	Body        []byte    `bson:"body,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	ExpiresAt   time.Time `bson:"expiresAt"`
}

// ErrExists is returned by Store.Reserve when the key is already taken.
var ErrExists = errors.New("idempotency key exists")

type Store interface {
	// Reserve stores rec unless its key exists, in which case it returns
	// the existing record and ErrExists.
	Reserve(ctx context.Context, rec Record) (*Record, error)
	Complete(ctx context.Context, key string, status int, body []byte) error
	// Release drops a reservation whose request failed, so the client may retry.
	Release(ctx context.Context, key string) error
}

// Guard replays the stored response when a client repeats a mutating
// request with the same Idempotency-Key.
type Guard struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewGuard(store Store, ttl time.Duration) *Guard {
	return &Guard{store: store, ttl: ttl, now: time.Now}
}

func requestHash(r *http.Request, userID string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + userID + ":"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// recorder tees the response so it can be stored.
type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	wrote  bool
}

func (c *recorder) WriteHeader(status int) {
	if !c.wrote {
		c.status = status
		c.wrote = true
		c.ResponseWriter.WriteHeader(status)
	}
}

func (c *recorder) Write(b []byte) (int, error) {
	if !c.wrote {
		c.WriteHeader(http.StatusOK)
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

// Wrap must run inside authentication: keys are scoped per user.
func (g *Guard) Wrap(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		clientKey := r.Header.Get(HeaderKey)
		if clientKey == "" {
			next(w, r, ps)
			return
		}
		if len(clientKey) > 128 {
			utils.RespondWithError(w, http.StatusBadRequest, "Idempotency-Key too long")
			return
		}

		userID := utils.GetUserIDFromRequest(r)
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		now := g.now()
		rec := Record{
			Key:         userID + ":" + clientKey,
			Method:      r.Method,
			Path:        r.URL.Path,
			UserID:      userID,
			RequestHash: requestHash(r, userID, body),
			CreatedAt:   now,
			ExpiresAt:   now.Add(g.ttl),
		}

		existing, err := g.store.Reserve(r.Context(), rec)
		switch {
		case errors.Is(err, ErrExists):
			replay(w, existing, rec.RequestHash)
			return
		case err != nil:
			log.Error().Err(err).Str("key", rec.Key).Msg("idempotency reserve failed")
			utils.RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
			return
		}

		crw := &recorder{ResponseWriter: w, status: http.StatusOK}
		next(crw, r, ps)

		// Use a fresh context: the request's may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if retryable(crw) {
			if err := g.store.Release(ctx, rec.Key); err != nil {
				log.Warn().Err(err).Str("key", rec.Key).Msg("idempotency release failed")
			}
			return
		}
		if err := g.store.Complete(ctx, rec.Key, crw.status, crw.buf.Bytes()); err != nil {
			log.Warn().Err(err).Str("key", rec.Key).Msg("idempotency complete failed")
		}
	}
}

// retryable responses free the key: a server failure or an explicit
// Retry-After from the handler.
func retryable(crw *recorder) bool {
	return crw.status >= http.StatusInternalServerError || crw.Header().Get("Retry-After") != ""
}

func replay(w http.ResponseWriter, existing *Record, hash string) {
	if existing.RequestHash != hash {
		utils.RespondWithError(w, http.StatusConflict, "Idempotency-Key reused with a different request")
		return
	}
	if !existing.Done {
		utils.RespondWithError(w, http.StatusConflict, "A request with this Idempotency-Key is in progress")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(existing.Status)
	w.Write(existing.Body)
}
