package server

import (
	"context"
	"crypto/rand"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// idGenerator hands out monotonic ULIDs. MonotonicEntropy is not safe for
// concurrent use, so calls are serialized.
type idGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDGenerator() *idGenerator {
	return &idGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *idGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

// requestID keeps a caller supplied id or assigns a new one, and echoes it in
// the response.
func (g *idGenerator) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = g.next()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
