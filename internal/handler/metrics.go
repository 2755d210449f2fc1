package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storybook_stories_generated_total",
		Help: "Total number of AI-generated stories returned to clients.",
	})

	musicCallbacksReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storybook_music_callbacks_received_total",
		Help: "Total number of music provider callbacks received.",
	})

	mediaProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_media_proxy_requests_total",
			Help: "Media proxy requests by result.",
		},
		[]string{"result"},
	)
)
