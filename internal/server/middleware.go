package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"yatube/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs every request and counts it by route and outcome.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.afterRequest(start, r, rec.status)
	})
}

func (s *Server) afterRequest(start time.Time, r *http.Request, status int) {
	route := routeName(r)
	if status >= http.StatusBadRequest {
		s.metrics.BadRequests.WithLabelValues(route).Inc()
	} else {
		s.metrics.SuccessfulRequests.WithLabelValues(route).Inc()
	}

	duration := time.Since(start)
	entry := logging.Logger.WithFields(logrus.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"status":    status,
		"duration":  duration,
		"remote_ip": r.RemoteAddr,
	})
	// Check if a request takes longer than 2 seconds
	if duration > 2*time.Second {
		entry.Warn("Slow request detected")
	} else {
		entry.Info("Request completed quickly")
	}
}

// routeName labels metrics by route template so ids and usernames do not
// explode the label set.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return name
		}
	}
	return "unmatched"
}

// appendSlash accepts paths without the trailing slash. The path is
// rewritten in place, so a POST keeps its body.
func appendSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if !strings.HasSuffix(p, "/") && p != "/metrics" && !strings.HasPrefix(p, "/media/") {
			r.URL.Path = p + "/"
			if r.URL.RawPath != "" {
				r.URL.RawPath += "/"
			}
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanics turns a handler panic into the 500 page.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logging.Logger.WithField("panic", v).WithField("path", r.URL.Path).Error("Handler panicked")
				s.render(w, r, &RequestContext{Query: r.URL.Query()}, http.StatusInternalServerError, "misc/500.html", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
