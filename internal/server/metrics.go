package server

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	PostsCreated       prometheus.Counter
	PostsEdited        prometheus.Counter
	CommentsCreated    prometheus.Counter
	FollowRequests     prometheus.Counter
	UnfollowRequests   prometheus.Counter
	PageCacheHits      prometheus.Counter
	PageCacheMisses    prometheus.Counter
}

// InitMetrics creates the counters and registers them on reg.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_request",
				Help: "Total number of successful (2xx/3xx) HTTP requests",
			},
			[]string{"route"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unsuccessful_request",
				Help: "Total number of unsuccessful (4xx/5xx) HTTP requests",
			},
			[]string{"route"},
		),
		PostsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posts_created",
			Help: "Total number of published posts",
		}),
		PostsEdited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posts_edited",
			Help: "Total number of saved post edits",
		}),
		CommentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "comments_created",
			Help: "Total number of comments left",
		}),
		FollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "successful_follows",
			Help: "Total number of follow edges created",
		}),
		UnfollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "successful_unfollows",
			Help: "Total number of follow edges removed",
		}),
		PageCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "page_cache_hits",
			Help: "Index pages served from the page cache",
		}),
		PageCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "page_cache_misses",
			Help: "Index pages rendered because the page cache had no copy",
		}),
	}

	reg.MustRegister(
		m.SuccessfulRequests,
		m.BadRequests,
		m.PostsCreated,
		m.PostsEdited,
		m.CommentsCreated,
		m.FollowRequests,
		m.UnfollowRequests,
		m.PageCacheHits,
		m.PageCacheMisses,
	)
	return m
}
