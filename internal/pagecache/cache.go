package pagecache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"yatube/internal/logging"
)

// Cache serves repeated GET requests for the same path and query from a
// Store for TTL. Only 200 responses are kept.
type Cache struct {
	store  Store
	ttl    time.Duration
	hits   prometheus.Counter
	misses prometheus.Counter
	bypass func(*http.Request) bool
}

func New(store Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

// WithMetrics counts lookups on the given counters.
func (c *Cache) WithMetrics(hits, misses prometheus.Counter) *Cache {
	c.hits = hits
	c.misses = misses
	return c
}

// WithBypass serves requests matching bypass straight from next, without
// reading or storing a cached copy.
func (c *Cache) WithBypass(bypass func(*http.Request) bool) *Cache {
	c.bypass = bypass
	return c
}

func (c *Cache) Store() Store { return c.store }

// Key identifies a cached page.
func Key(r *http.Request) string {
	return r.URL.Path + "?" + r.URL.RawQuery
}

type cachedPage struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// Page wraps next. Store failures are logged and the page is rendered
// uncached.
func (c *Cache) Page(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.ttl <= 0 || r.Method != http.MethodGet || (c.bypass != nil && c.bypass(r)) {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		key := Key(r)

		raw, ok, err := c.store.Get(ctx, key)
		if err != nil {
			logging.Logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Page cache read failed")
		}
		if ok {
			var page cachedPage
			if err := json.Unmarshal(raw, &page); err == nil {
				inc(c.hits)
				for k, v := range page.Header {
					w.Header()[k] = v
				}
				w.WriteHeader(page.Status)
				_, _ = w.Write(page.Body)
				return
			}
		}
		inc(c.misses)

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status != http.StatusOK {
			return
		}
		raw, err = json.Marshal(cachedPage{
			Status: rec.status,
			Header: http.Header{"Content-Type": w.Header().Values("Content-Type")},
			Body:   rec.body.Bytes(),
		})
		if err == nil {
			err = c.store.Set(ctx, key, raw, c.ttl)
		}
		if err != nil {
			logging.Logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Page cache write failed")
		}
	})
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// recorder passes the response through while keeping a copy of the body.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
