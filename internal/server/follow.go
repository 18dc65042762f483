package server

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"yatube/internal/logging"
)

func (s *Server) followIndex(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	page, err := s.page(s.store.FollowFeed(r.Context(), rc.User.ID), rc)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	s.render(w, r, rc, http.StatusOK, "follow.html", ViewData{"page": page})
}

// profileFollow ignores self-follows and follows that already exist.
func (s *Server) profileFollow(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	ctx := r.Context()
	author, err := s.store.UserByUsername(ctx, rc.Vars["username"])
	if err != nil {
		s.lookupFailed(w, r, rc, err)
		return
	}
	if author.ID != rc.User.ID {
		created, err := s.store.Follow(ctx, rc.User.ID, author.ID)
		if err != nil {
			s.serverError(w, r, rc, err)
			return
		}
		if created {
			s.metrics.FollowRequests.Inc()
			logging.Logger.WithFields(logrus.Fields{
				"user":   rc.User.Username,
				"author": author.Username,
			}).Info("Follow created")
		}
	}
	redirect(w, r, profileURL(author.Username))
}

func (s *Server) profileUnfollow(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	ctx := r.Context()
	author, err := s.store.UserByUsername(ctx, rc.Vars["username"])
	if err != nil {
		s.lookupFailed(w, r, rc, err)
		return
	}
	removed, err := s.store.Unfollow(ctx, rc.User.ID, author.ID)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	if removed {
		s.metrics.UnfollowRequests.Inc()
	}
	redirect(w, r, profileURL(author.Username))
}
