package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eproc-portal/backend/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config collects every policy knob of the audit core. All thresholds are
// tunable; Manager applies defaults for zero values.
type Config struct {
	// SigningSecret keys entry signatures. Server-side only, never serialized.
	SigningSecret string

	// MaxEntries bounds the in-memory window. Older entries are evicted once
	// persisted; the verification checkpoint advances with them.
	MaxEntries int

	// RiskAlertThreshold publishes a security alert for entries scoring above
	// it.
	RiskAlertThreshold int

	Risk    RiskPolicy
	Anomaly AnomalyPolicy

	SinkBuffer      int
	SinkMaxAttempts int
	SinkBackoff     time.Duration
}

// Record describes one activity to log. Action, Resource and the actor fields
// are required; everything else is optional.
type Record struct {
	Action     Action
	Resource   string
	ResourceID string

	UserID    string
	UserEmail string
	UserRole  string
	SessionID string

	OldValues map[string]string
	NewValues map[string]string

	// Severity overrides the taxonomy-derived value when set.
	Severity Severity
	// Status defaults to SUCCESS.
	Status       Status
	ErrorMessage string

	Client ClientContext

	CorrelationID string
	SourceModule  string
	Extra         map[string]string

	// synthesized marks entries the manager writes about itself so they are
	// not fed back into anomaly analysis.
	synthesized bool
}

// Manager owns the hash-chained, append-only audit log. Appends are serialized
// by a mutex so the chain pointer can never be read stale; reads copy.
// Construct one per application via New and pass it explicitly.
type Manager struct {
	cfg    Config
	log    *zap.Logger
	alerts events.Publisher

	clock func() time.Time
	newID func() string

	mu       sync.Mutex
	entries  []Entry
	lastHash string
	// baseHash is the PreviousHash of the oldest retained entry. Empty until
	// eviction starts; verification resumes from it.
	baseHash string

	queue *sinkQueue
}

// Filter narrows Entries results. Zero values match everything.
type Filter struct {
	UserID   string
	Action   Action
	Severity Severity
	Start    time.Time
	End      time.Time
	// Limit keeps only the most recent N entries after the other filters.
	Limit int
}

// New builds a Manager. sink may be nil (in-memory only, used by tests);
// alerts may be nil to disable security alert publishing.
func New(cfg Config, sink Sink, alerts events.Publisher, log *zap.Logger) *Manager {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	if cfg.RiskAlertThreshold <= 0 {
		cfg.RiskAlertThreshold = 80
	}
	if cfg.Risk == (RiskPolicy{}) {
		cfg.Risk = DefaultRiskPolicy()
	}
	if cfg.Anomaly == (AnomalyPolicy{}) {
		cfg.Anomaly = DefaultAnomalyPolicy()
	}

	m := &Manager{
		cfg:   cfg,
		log:   log,
		clock: time.Now,
		newID: func() string { return uuid.New().String() },
	}
	if alerts != nil {
		m.alerts = alerts
	}
	if sink != nil {
		m.queue = newSinkQueue(sink, cfg.SinkBuffer, cfg.SinkMaxAttempts, cfg.SinkBackoff, log)
	}
	return m
}

// Log appends one entry to the chain and returns its id. Logging is
// best-effort for callers: sink problems never surface here, only invalid
// records fail.
func (m *Manager) Log(ctx context.Context, rec Record) (string, error) {
	if rec.Action == "" {
		return "", fmt.Errorf("audit: action is required")
	}
	if rec.Resource == "" {
		return "", fmt.Errorf("audit: resource is required")
	}
	if rec.UserID == "" {
		return "", fmt.Errorf("audit: actor user id is required")
	}

	now := m.clock()
	severity := rec.Severity
	if severity == "" {
		severity = SeverityFor(rec.Action)
	}
	status := rec.Status
	if status == "" {
		status = StatusSuccess
	}

	entry := Entry{
		ID:           m.newID(),
		Timestamp:    now,
		UserID:       rec.UserID,
		UserEmail:    rec.UserEmail,
		UserRole:     rec.UserRole,
		SessionID:    rec.SessionID,
		IPAddress:    rec.Client.IPAddress,
		UserAgent:    rec.Client.UserAgent,
		Geolocation:  rec.Client.Geolocation,
		Action:       rec.Action,
		Resource:     rec.Resource,
		ResourceID:   rec.ResourceID,
		OldValues:    cloneMap(rec.OldValues),
		NewValues:    cloneMap(rec.NewValues),
		Severity:     severity,
		Status:       status,
		ErrorMessage: rec.ErrorMessage,
		Metadata: Metadata{
			SchemaVersion: MetadataSchemaVersion,
			RequestID:     rec.Client.RequestID,
			CorrelationID: rec.CorrelationID,
			SourceModule:  rec.SourceModule,
			Fingerprint:   rec.Client.Fingerprint(),
			Timezone:      now.Format("-07:00"),
			Language:      rec.Client.Language,
			Referrer:      rec.Client.Referrer,
			DeviceType:    rec.Client.DeviceType(),
			OS:            rec.Client.OS(),
			RiskScore:     m.cfg.Risk.Score(rec.Action, rec.UserRole, now.Hour()),
			Extra:         cloneMap(rec.Extra),
		},
	}

	m.mu.Lock()
	entry.PreviousHash = m.lastHash
	entry.Signature = computeSignature(entry, []byte(m.cfg.SigningSecret))
	entry.Hash = computeHash(entry, entry.Signature)

	m.entries = append(m.entries, entry)
	m.lastHash = entry.Hash
	m.evict()

	var reasons []string
	if !rec.synthesized {
		reasons = m.cfg.Anomaly.detect(m.recentForScan(), entry)
	}
	// Enqueue under the mutex so the sink sees entries in chain order. The
	// send never blocks.
	if m.queue != nil {
		m.queue.enqueue(entry.clone())
	}
	m.mu.Unlock()

	for _, reason := range reasons {
		m.flagAnomaly(ctx, entry, reason)
	}
	if entry.Metadata.RiskScore > m.cfg.RiskAlertThreshold {
		m.publishAlert(ctx, entry, "risk score threshold exceeded")
	}

	return entry.ID, nil
}

// evict keeps the retained window within MaxEntries. Caller holds m.mu.
func (m *Manager) evict() {
	over := len(m.entries) - m.cfg.MaxEntries
	if over <= 0 {
		return
	}
	m.baseHash = m.entries[over].PreviousHash
	m.entries = append([]Entry(nil), m.entries[over:]...)
}

// recentForScan returns the slice the anomaly heuristics look at: at least
// the configured recent window, widened so the burst window is fully covered.
// Caller holds m.mu.
func (m *Manager) recentForScan() []Entry {
	n := m.cfg.Anomaly.RecentWindow
	if b := m.cfg.Anomaly.BurstThreshold + 1; b > n {
		n = b
	}
	if n > len(m.entries) {
		n = len(m.entries)
	}
	return m.entries[len(m.entries)-n:]
}

// flagAnomaly chains a CRITICAL fraud entry describing why the activity was
// flagged, and raises an alert. The synthesized entry is not re-analyzed.
func (m *Manager) flagAnomaly(ctx context.Context, trigger Entry, reason string) {
	m.log.Warn("audit anomaly detected",
		zap.String("trigger_entry_id", trigger.ID),
		zap.String("user_id", trigger.UserID),
		zap.String("reason", reason),
	)

	_, err := m.Log(ctx, Record{
		Action:     ActionFraudDetectionTrigger,
		Resource:   "audit",
		ResourceID: trigger.ID,
		UserID:     SystemUserID,
		UserRole:   "system",
		Severity:   SeverityCritical,
		Extra: map[string]string{
			"reason":          reason,
			"flagged_user_id": trigger.UserID,
			"flagged_action":  string(trigger.Action),
		},
		synthesized: true,
	})
	if err != nil {
		m.log.Error("failed to record fraud detection entry", zap.Error(err))
	}

	m.publishAlert(ctx, trigger, reason)
}

// publishAlert emits a non-chained security alert for dashboards.
func (m *Manager) publishAlert(ctx context.Context, entry Entry, reason string) {
	if m.alerts == nil {
		return
	}
	err := m.alerts.Publish(ctx, events.StreamSecurity, events.Event{
		Type: events.EventSecurityAlert,
		Payload: map[string]any{
			"entry_id":   entry.ID,
			"user_id":    entry.UserID,
			"action":     string(entry.Action),
			"severity":   string(entry.Severity),
			"risk_score": entry.Metadata.RiskScore,
			"reason":     reason,
		},
	})
	if err != nil {
		m.log.Error("failed to publish security alert", zap.Error(err))
	}
}

// VerifyIntegrity recomputes every retained entry's signature and hash and
// walks the chain links. Returns false plus the offending entry id on the
// first mismatch.
func (m *Manager) VerifyIntegrity() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.baseHash
	for _, e := range m.entries {
		if e.PreviousHash != prev {
			m.log.Error("audit chain broken", zap.String("entry_id", e.ID))
			return false, e.ID
		}
		sig := computeSignature(e, []byte(m.cfg.SigningSecret))
		if sig != e.Signature {
			m.log.Error("audit signature mismatch", zap.String("entry_id", e.ID))
			return false, e.ID
		}
		if computeHash(e, sig) != e.Hash {
			m.log.Error("audit hash mismatch", zap.String("entry_id", e.ID))
			return false, e.ID
		}
		prev = e.Hash
	}
	return true, ""
}

// Entries returns matching entries in insertion order as defensive copies.
func (m *Manager) Entries(f Filter) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for _, e := range m.entries {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Severity != "" && e.Severity != f.Severity {
			continue
		}
		if !f.Start.IsZero() && e.Timestamp.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && e.Timestamp.After(f.End) {
			continue
		}
		out = append(out, e.clone())
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

// Len reports how many entries are currently retained in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close drains the persistence queue.
func (m *Manager) Close() {
	if m.queue != nil {
		m.queue.close()
	}
}
