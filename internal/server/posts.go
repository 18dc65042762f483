package server

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"yatube/internal/forms"
	"yatube/internal/logging"
	"yatube/internal/model"
	"yatube/internal/paginator"
	"yatube/internal/storage"
)

// groupsListed is how many groups the groups page shows.
const groupsListed = 15

func (s *Server) page(q storage.PostQuery, rc *RequestContext) (*paginator.Page[model.Post], error) {
	return paginator.Get[model.Post](q, rc.Query.Get("page"), s.perPage)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	page, err := s.page(s.store.AllPosts(r.Context()), rc)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	s.render(w, r, rc, http.StatusOK, "index.html", ViewData{"page": page})
}

func (s *Server) groups(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	groups, err := s.store.Groups(r.Context(), groupsListed)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	s.render(w, r, rc, http.StatusOK, "groups.html", ViewData{"groups": groups})
}

func (s *Server) groupPosts(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	group, err := s.store.GroupBySlug(r.Context(), rc.Vars["slug"])
	if err != nil {
		s.lookupFailed(w, r, rc, err)
		return
	}
	page, err := s.page(s.store.GroupPosts(r.Context(), group.ID), rc)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	s.render(w, r, rc, http.StatusOK, "group.html", ViewData{"group": group, "page": page})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	ctx := r.Context()
	author, err := s.store.UserByUsername(ctx, rc.Vars["username"])
	if err != nil {
		s.lookupFailed(w, r, rc, err)
		return
	}
	page, err := s.page(s.store.AuthorPosts(ctx, author.ID), rc)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	data := ViewData{"author": author, "page": page, "following": false}
	if err := s.followStats(ctx, rc, author, data); err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	s.render(w, r, rc, http.StatusOK, "profile.html", data)
}

// followStats adds the follower counts of author and whether the acting
// user follows them.
func (s *Server) followStats(ctx context.Context, rc *RequestContext, author *model.User, data ViewData) error {
	followers, err := s.store.FollowerCount(ctx, author.ID)
	if err != nil {
		return err
	}
	following, err := s.store.FollowingCount(ctx, author.ID)
	if err != nil {
		return err
	}
	data["followers_count"] = followers
	data["following_count"] = following
	if rc.Authenticated() && rc.User.ID != author.ID {
		yes, err := s.store.IsFollowing(ctx, rc.User.ID, author.ID)
		if err != nil {
			return err
		}
		data["following"] = yes
	}
	return nil
}

// postByURL loads the post named by the username and post_id route vars.
func (s *Server) postByURL(ctx context.Context, rc *RequestContext) (*model.Post, error) {
	id, ok := parseID(rc.Vars["post_id"])
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.store.PostByAuthor(ctx, rc.Vars["username"], id)
}

func (s *Server) postView(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	ctx := r.Context()
	post, err := s.postByURL(ctx, rc)
	if err != nil {
		s.lookupFailed(w, r, rc, err)
		return
	}
	comments, err := s.store.Comments(ctx, post.ID)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	postsCount, err := s.store.AuthorPosts(ctx, post.AuthorID).Count()
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	s.render(w, r, rc, http.StatusOK, "post.html", ViewData{
		"post":        post,
		"author":      &post.Author,
		"comments":    comments,
		"form":        forms.NewCommentForm(),
		"posts_count": postsCount,
	})
}

func (s *Server) newPost(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		s.renderPostForm(w, r, rc, forms.NewPostForm(nil), nil)
		return
	}

	form, err := forms.ParsePostForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	valid, err := form.Valid(ctx, s.store)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	if !valid {
		s.renderPostForm(w, r, rc, form, nil)
		return
	}

	imageKey, err := s.saveImage(ctx, form)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	post := &model.Post{AuthorID: rc.User.ID}
	form.Bind(post, imageKey)
	if err := s.store.CreatePost(ctx, post); err != nil {
		s.dropImage(ctx, imageKey)
		s.serverError(w, r, rc, err)
		return
	}
	s.metrics.PostsCreated.Inc()
	logging.Logger.WithFields(logrus.Fields{
		"post_id": post.ID,
		"author":  rc.User.Username,
	}).Info("Post published")
	redirect(w, r, "/")
}

func (s *Server) postEdit(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	ctx := r.Context()
	post, err := s.postByURL(ctx, rc)
	if err != nil {
		s.lookupFailed(w, r, rc, err)
		return
	}
	detail := postURL(post.Author.Username, post.ID)
	if post.AuthorID != rc.User.ID {
		redirect(w, r, detail)
		return
	}
	if r.Method != http.MethodPost {
		s.renderPostForm(w, r, rc, forms.NewPostForm(post), post)
		return
	}

	form, err := forms.ParsePostForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	valid, err := form.Valid(ctx, s.store)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	if !valid {
		s.renderPostForm(w, r, rc, form, post)
		return
	}

	imageKey, err := s.saveImage(ctx, form)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	oldImage := post.Image
	form.Bind(post, imageKey)
	if err := s.store.UpdatePost(ctx, post); err != nil {
		s.dropImage(ctx, imageKey)
		s.lookupFailed(w, r, rc, err)
		return
	}
	if oldImage != "" && oldImage != post.Image {
		s.dropImage(ctx, oldImage)
	}
	s.metrics.PostsEdited.Inc()
	redirect(w, r, detail)
}

// renderPostForm shows the new post page, or the edit page when post is set.
func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, rc *RequestContext, form *forms.PostForm, post *model.Post) {
	groups, err := s.store.Groups(r.Context(), -1)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	s.render(w, r, rc, http.StatusOK, "new.html", ViewData{
		"form":    form,
		"groups":  groups,
		"post":    post,
		"is_edit": post != nil,
	})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	ctx := r.Context()
	post, err := s.postByURL(ctx, rc)
	if err != nil {
		s.lookupFailed(w, r, rc, err)
		return
	}
	detail := postURL(post.Author.Username, post.ID)

	form := forms.NewCommentForm()
	if r.Method == http.MethodPost {
		if form, err = forms.ParseCommentForm(r); err != nil {
			s.badRequest(w, r, err)
			return
		}
	}
	if !form.Valid() {
		redirect(w, r, detail)
		return
	}
	if err := s.store.CreateComment(ctx, form.Comment(rc.User, post)); err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	s.metrics.CommentsCreated.Inc()
	redirect(w, r, detail)
}

func (s *Server) saveImage(ctx context.Context, form *forms.PostForm) (string, error) {
	if form.Image == nil {
		return "", nil
	}
	key, err := s.media.Save(ctx, form.Image.FileName, form.Image.Reader())
	return key, errors.Wrap(err, "failed to store image")
}

func (s *Server) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		logging.Logger.WithError(err).WithField("key", key).Warn("Failed to delete image")
	}
}

// lookupFailed renders 404 for a missing record and 500 for anything else.
func (s *Server) lookupFailed(w http.ResponseWriter, r *http.Request, rc *RequestContext, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.notFound(w, r, rc)
		return
	}
	s.serverError(w, r, rc, err)
}
