package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	musicPollOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_music_poll_outcomes_total",
			Help: "Outcomes of background music polling tasks.",
		},
		[]string{"outcome"}, // completed, failed, exhausted, cancelled
	)
	musicCallbackResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_music_callback_results_total",
			Help: "Music callback results by normalized status.",
		},
		[]string{"status"},
	)
	soundEffectsMatched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storybook_sound_effects_per_story",
			Help:    "Number of sound effects attached per mapping request.",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		},
	)
)
