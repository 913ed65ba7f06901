package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	villagersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vle_villagers_registered_total",
		Help: "Number of villagers registered.",
	})
	quizzesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vle_quizzes_completed_total",
		Help: "Number of quiz completions recorded.",
	})
	vlesConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vle_selections_confirmed_total",
		Help: "Number of VLE selections merged into the persisted set.",
	})
	recommendationsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vle_recommendations_generated_total",
		Help: "Number of machine recommendations generated.",
	})
)
