package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Registrations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bracket_registrations_total", Help: "Total participant registrations"},
	)
	CheckIns = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bracket_checkins_total", Help: "Total participant check-ins"},
	)
	ScoreSubmissions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bracket_score_submissions_total", Help: "Total accepted score submissions"},
	)
	TicketValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bracket_ticket_validations_total", Help: "Ticket validation attempts by outcome"},
		[]string{"outcome"},
	)
	DisputesReported = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bracket_disputes_reported_total", Help: "Total match disputes reported"},
	)
	BracketsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bracket_generations_total", Help: "Total brackets generated"},
	)
)

func Register() {
	prometheus.MustRegister(
		Registrations, CheckIns, ScoreSubmissions,
		TicketValidations, DisputesReported, BracketsGenerated,
	)
}
