// Package metrics holds the service's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "musicbuddy_posts_created_total",
		Help: "Posts created since process start.",
	})

	PostsEdited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "musicbuddy_posts_edited_total",
		Help: "Post body edits since process start.",
	})

	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "musicbuddy_posts_deleted_total",
		Help: "Posts deleted since process start.",
	})

	SnapshotsPushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "musicbuddy_feed_snapshots_pushed_total",
		Help: "Timeline snapshots delivered to live subscribers.",
	})

	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "musicbuddy_feed_subscribers",
		Help: "Currently connected live timeline subscribers.",
	})
)
