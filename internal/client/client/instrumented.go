package client

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

// Metrics holds the gateway collectors, registered on their own registry so
// several gateways (and tests) never clash on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()

	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Backend calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Backend call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	reg.MustRegister(calls, duration)

	return &Metrics{Registry: reg, Calls: calls, Duration: duration}
}

// Outcome labels. Every error kind gets its own label; unclassified errors
// are "error".
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var outcomeLabels = map[error]string{
	ErrValidation:         "validation",
	ErrNotAuthenticated:   "not_authenticated",
	ErrAuthFailure:        "auth_failure",
	ErrNotFound:           "not_found",
	ErrConflict:           "conflict",
	ErrNetwork:            "network",
	ErrDuplicateAccount:   "duplicate_account",
	ErrInvalidCredentials: "invalid_credentials",
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if label, ok := outcomeLabels[Kind(err)]; ok {
		return label
	}
	return OutcomeError
}

// InstrumentedGateway records a counter and a latency sample for every call
// made through the wrapped Gateway.
type InstrumentedGateway struct {
	next    Gateway
	metrics *Metrics
	now     func() time.Time
}

var _ Gateway = (*InstrumentedGateway)(nil)

func NewInstrumentedGateway(next Gateway, m *Metrics) *InstrumentedGateway {
	return &InstrumentedGateway{next: next, metrics: m, now: time.Now}
}

func (g *InstrumentedGateway) observe(op string, start time.Time, err error) {
	g.metrics.Calls.WithLabelValues(op, outcome(err)).Inc()
	g.metrics.Duration.WithLabelValues(op).Observe(g.now().Sub(start).Seconds())
}

func (g *InstrumentedGateway) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	start := g.now()
	u, err := g.next.Register(ctx, email, password, username)
	g.observe(OpRegister, start, err)
	return u, err
}

func (g *InstrumentedGateway) Login(ctx context.Context, email, password string) (*models.Session, error) {
	start := g.now()
	s, err := g.next.Login(ctx, email, password)
	g.observe(OpLogin, start, err)
	return s, err
}

func (g *InstrumentedGateway) CurrentUser(ctx context.Context) (*models.User, error) {
	start := g.now()
	u, err := g.next.CurrentUser(ctx)
	g.observe(OpCurrentUser, start, err)
	return u, err
}

func (g *InstrumentedGateway) Logout(ctx context.Context) error {
	start := g.now()
	err := g.next.Logout(ctx)
	g.observe(OpLogout, start, err)
	return err
}

func (g *InstrumentedGateway) CreateEntry(ctx context.Context, ownerID string, draft models.DraftEntry) (*models.TravelEntry, error) {
	start := g.now()
	e, err := g.next.CreateEntry(ctx, ownerID, draft)
	g.observe(OpCreateEntry, start, err)
	return e, err
}

func (g *InstrumentedGateway) ListEntriesForOwner(ctx context.Context, ownerID string) ([]models.TravelEntry, error) {
	start := g.now()
	entries, err := g.next.ListEntriesForOwner(ctx, ownerID)
	g.observe(OpListEntries, start, err)
	return entries, err
}

func (g *InstrumentedGateway) GetEntry(ctx context.Context, id string) (*models.TravelEntry, error) {
	start := g.now()
	e, err := g.next.GetEntry(ctx, id)
	g.observe(OpGetEntry, start, err)
	return e, err
}

func (g *InstrumentedGateway) UpdateEntry(ctx context.Context, id string, fields models.EntryFields) (*models.TravelEntry, error) {
	start := g.now()
	e, err := g.next.UpdateEntry(ctx, id, fields)
	g.observe(OpUpdateEntry, start, err)
	return e, err
}

func (g *InstrumentedGateway) DeleteEntry(ctx context.Context, id string) error {
	start := g.now()
	err := g.next.DeleteEntry(ctx, id)
	g.observe(OpDeleteEntry, start, err)
	return err
}

func (g *InstrumentedGateway) ListTips(ctx context.Context) ([]models.TravelTip, error) {
	start := g.now()
	tips, err := g.next.ListTips(ctx)
	g.observe(OpListTips, start, err)
	return tips, err
}

func (g *InstrumentedGateway) Close() error {
	return g.next.Close()
}
