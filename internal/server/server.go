package server

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yatube/internal/media"
	"yatube/internal/pagecache"
	"yatube/internal/paginator"
	"yatube/internal/storage"
)

// Options wires a Server. Storage, Media, Cache and Sessions are required.
type Options struct {
	Storage  *storage.Storage
	Media    media.Store
	Cache    *pagecache.Cache
	Sessions sessions.Store

	// Renderer defaults to the embedded templates.
	Renderer Renderer
	// Registry defaults to a fresh registry.
	Registry *prometheus.Registry
	// PerPage defaults to paginator.DefaultPerPage.
	PerPage int
	// MediaRoot is served under /media/ when set.
	MediaRoot string
}

type Server struct {
	store    *storage.Storage
	media    media.Store
	cache    *pagecache.Cache
	sessions sessions.Store
	renderer Renderer
	metrics  *Metrics
	registry *prometheus.Registry
	perPage  int

	handler http.Handler
}

func New(opts Options) (*Server, error) {
	s := &Server{
		store:    opts.Storage,
		media:    opts.Media,
		cache:    opts.Cache,
		sessions: opts.Sessions,
		renderer: opts.Renderer,
		registry: opts.Registry,
		perPage:  opts.PerPage,
	}
	if s.renderer == nil {
		tr, err := NewTemplateRenderer(s.media.URL)
		if err != nil {
			return nil, err
		}
		s.renderer = tr
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.perPage <= 0 {
		s.perPage = paginator.DefaultPerPage
	}
	s.metrics = InitMetrics(s.registry)
	s.cache.WithMetrics(s.metrics.PageCacheHits, s.metrics.PageCacheMisses).WithBypass(s.signedIn)

	s.handler = s.recoverPanics(appendSlash(s.routes(opts.MediaRoot)))
	return s, nil
}

// NewCookieStore returns the session store used in production.
func NewCookieStore(key string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 16, // 16 hours
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Metrics() *Metrics { return s.metrics }

// ClearCache drops every cached page.
func (s *Server) ClearCache(ctx context.Context) error {
	return s.cache.Store().Clear(ctx)
}

func (s *Server) routes(mediaRoot string) http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	r.Use(s.logRequests)

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Name("metrics")
	if mediaRoot != "" {
		r.PathPrefix("/media/").
			Handler(http.StripPrefix("/media/", http.FileServer(filesOnly{http.Dir(mediaRoot)}))).
			Methods("GET", "HEAD").Name("media")
	}

	r.Handle("/auth/signup/", s.handle(s.signup)).Methods("GET", "POST").Name("signup")
	r.Handle("/auth/login/", s.handle(s.login)).Methods("GET", "POST").Name("login")
	r.Handle("/auth/logout/", s.handle(s.logout)).Methods("GET", "POST").Name("logout")
	r.Handle("/about/author/", s.handle(s.flatPage("flatpages/author.html"))).Methods("GET").Name("about_author")
	r.Handle("/about/spec/", s.handle(s.flatPage("flatpages/spec.html"))).Methods("GET").Name("about_spec")

	r.Handle("/", s.cache.Page(s.handle(s.index))).Methods("GET").Name("index")
	r.Handle("/group/", s.handle(s.groups)).Methods("GET").Name("groups")
	r.Handle("/group/{slug}/", s.handle(s.groupPosts)).Methods("GET").Name("group_posts")
	r.Handle("/new/", s.handle(s.newPost, loginRequired)).Methods("GET", "POST").Name("new_post")
	r.Handle("/follow/", s.handle(s.followIndex, loginRequired)).Methods("GET").Name("follow_index")

	r.Handle("/{username}/", s.handle(s.profile)).Methods("GET").Name("profile")
	r.Handle("/{username}/follow/", s.handle(s.profileFollow, loginRequired)).Methods("GET", "POST").Name("profile_follow")
	r.Handle("/{username}/unfollow/", s.handle(s.profileUnfollow, loginRequired)).Methods("GET", "POST").Name("profile_unfollow")
	r.Handle("/{username}/{post_id:[0-9]+}/", s.handle(s.postView)).Methods("GET").Name("post")
	r.Handle("/{username}/{post_id:[0-9]+}/edit/", s.handle(s.postEdit, loginRequired)).Methods("GET", "POST").Name("post_edit")
	r.Handle("/{username}/{post_id:[0-9]+}/comment/", s.handle(s.addComment, loginRequired)).Methods("GET", "POST").Name("add_comment")

	r.NotFoundHandler = s.logRequests(s.handle(func(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
		s.notFound(w, r, rc)
	}))
	return r
}

// filesOnly hides directories so the uploaded keys cannot be listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
