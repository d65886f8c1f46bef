package metrics

import "github.com/prometheus/client_golang/prometheus"

// Label names.
const (
	Status   = "status"
	Category = "category"
	Mode     = "mode"
	Reason   = "reason"
)

var (
	// RefreshRunsTotal counts refresh cycles by outcome.
	RefreshRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refresh_runs_total",
			Help: "Total number of catalog refresh cycles",
		},
		[]string{Status},
	)

	// RefreshCategoryFailuresTotal counts categories skipped during a refresh.
	RefreshCategoryFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refresh_category_failures_total",
			Help: "Total number of categories that failed to refresh",
		},
		[]string{Category},
	)

	// CatalogEntries is the number of entries per category in the live catalog.
	CatalogEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_entries",
			Help: "Current number of catalog entries per category",
		},
		[]string{Category},
	)

	// MenusOpenedTotal counts trigger messages answered with the category menu.
	MenusOpenedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "menus_opened_total",
			Help: "Total number of category menus posted",
		},
	)

	// DeliveriesTotal counts completed deliveries by mode.
	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deliveries_total",
			Help: "Total number of completed deliveries",
		},
		[]string{Mode},
	)

	// DirectMessagesTotal counts direct messages by outcome.
	DirectMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "direct_messages_total",
			Help: "Total number of direct messages sent",
		},
		[]string{Status},
	)

	// InteractionErrorsTotal counts failed interactions by reason.
	InteractionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_errors_total",
			Help: "Total number of interactions answered with an error",
		},
		[]string{Reason},
	)

	// SessionsActive is the number of live selection sessions.
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "selection_sessions_active",
			Help: "Current number of live selection sessions",
		},
	)
)

func init() {
	_ = prometheus.Register(RefreshRunsTotal)
	_ = prometheus.Register(RefreshCategoryFailuresTotal)
	_ = prometheus.Register(CatalogEntries)
	_ = prometheus.Register(MenusOpenedTotal)
	_ = prometheus.Register(DeliveriesTotal)
	_ = prometheus.Register(DirectMessagesTotal)
	_ = prometheus.Register(InteractionErrorsTotal)
	_ = prometheus.Register(SessionsActive)
}
