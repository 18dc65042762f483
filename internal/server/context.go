package server

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"

	"yatube/internal/logging"
	"yatube/internal/model"
	"yatube/internal/storage"
)

const (
	sessionName   = "yatube"
	sessionUserID = "user_id"
)

// RequestContext is what a handler knows about the request besides the raw
// *http.Request. User is nil for anonymous visitors.
type RequestContext struct {
	User    *model.User
	Query   url.Values
	Vars    map[string]string
	Session *sessions.Session
}

func (rc *RequestContext) Authenticated() bool {
	return rc.User != nil
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, rc *RequestContext)

// guard decides whether a handler may run. When it may not, it returns the
// location the visitor is sent to instead.
type guard func(r *http.Request, rc *RequestContext) (string, bool)

func loginRequired(r *http.Request, rc *RequestContext) (string, bool) {
	if rc.Authenticated() {
		return "", true
	}
	return loginURL(r.URL.Path), false
}

// handle builds the RequestContext and runs the guards before h.
func (s *Server) handle(h handlerFunc, guards ...guard) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, err := s.requestContext(r)
		if err != nil {
			s.serverError(w, r, &RequestContext{Query: r.URL.Query()}, err)
			return
		}
		for _, g := range guards {
			if to, ok := g(r, rc); !ok {
				redirect(w, r, to)
				return
			}
		}
		h(w, r, rc)
	})
}

func (s *Server) requestContext(r *http.Request) (*RequestContext, error) {
	// A cookie signed with another key yields a fresh session and an error,
	// which only means the visitor is anonymous.
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		logging.Logger.WithError(err).Debug("Discarding unreadable session")
	}
	rc := &RequestContext{
		Query:   r.URL.Query(),
		Vars:    mux.Vars(r),
		Session: session,
	}

	id, ok := session.Values[sessionUserID].(uint)
	if !ok {
		return rc, nil
	}
	user, err := s.store.UserByID(r.Context(), id)
	switch {
	case err == nil:
		rc.User = user
	case errors.Is(err, storage.ErrNotFound):
		// The account is gone; treat the visitor as anonymous.
		delete(session.Values, sessionUserID)
	default:
		return nil, err
	}
	return rc, nil
}

// signedIn reports whether the session names a user. Pages for signed-in
// visitors carry their name, so they are never shared through the cache.
func (s *Server) signedIn(r *http.Request) bool {
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		return false
	}
	_, ok := session.Values[sessionUserID].(uint)
	return ok
}
