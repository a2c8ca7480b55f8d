package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eproc-portal/backend/internal/events"
	"go.uber.org/zap"
)

func newTestManager(cfg Config) *Manager {
	if cfg.SigningSecret == "" {
		cfg.SigningSecret = "test-secret"
	}
	m := New(cfg, nil, nil, zap.NewNop())
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	n := 0
	m.clock = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
	return m
}

func mustLog(t *testing.T, m *Manager, rec Record) string {
	t.Helper()
	id, err := m.Log(context.Background(), rec)
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	return id
}

func userRecord(userID string, action Action) Record {
	return Record{
		Action:   action,
		Resource: "test",
		UserID:   userID,
		UserRole: "bidder",
	}
}

func TestChainIntegrity(t *testing.T) {
	m := newTestManager(Config{})

	for i := 0; i < 5; i++ {
		mustLog(t, m, userRecord(fmt.Sprintf("user-%d", i), ActionTenderCreated))
	}

	entries := m.Entries(Filter{})
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	if entries[0].PreviousHash != "" {
		t.Errorf("first entry previous_hash should be empty, got %q", entries[0].PreviousHash)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].PreviousHash != entries[i-1].Hash {
			t.Errorf("entry %d previous_hash does not match entry %d hash", i, i-1)
		}
	}

	if ok, offending := m.VerifyIntegrity(); !ok {
		t.Errorf("untampered chain should verify, offending entry %s", offending)
	}
}

func TestVerifyIntegrityDetectsTampering(t *testing.T) {
	fields := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"resource", func(e *Entry) { e.Resource = "tampered" }},
		{"user_id", func(e *Entry) { e.UserID = "intruder" }},
		{"status", func(e *Entry) { e.Status = StatusFailure }},
		{"new_values", func(e *Entry) { e.NewValues = map[string]string{"k": "v"} }},
		{"signature", func(e *Entry) { e.Signature = "deadbeef" }},
		{"previous_hash", func(e *Entry) { e.PreviousHash = "deadbeef" }},
	}

	for _, tt := range fields {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(Config{})
			mustLog(t, m, userRecord("user-1", ActionUserLogin))
			target := mustLog(t, m, userRecord("user-1", ActionBidSubmitted))
			mustLog(t, m, userRecord("user-1", ActionUserLogout))

			for i := range m.entries {
				if m.entries[i].ID == target {
					tt.mutate(&m.entries[i])
				}
			}

			ok, offending := m.VerifyIntegrity()
			if ok {
				t.Fatal("tampered chain should not verify")
			}
			if offending == "" {
				t.Error("offending entry id should be reported")
			}
		})
	}
}

func TestSeverityDerivation(t *testing.T) {
	tests := []struct {
		action   Action
		expected Severity
	}{
		{ActionUnauthorizedAccess, SeverityCritical},
		{ActionFraudDetectionTrigger, SeverityCritical},
		{ActionAuditLogAccessed, SeverityCritical},
		{ActionCompanyBlacklisted, SeverityHigh},
		{ActionTenderAwarded, SeverityHigh},
		{ActionContractSigned, SeverityHigh},
		{ActionDataExported, SeverityHigh},
		{ActionAccountLocked, SeverityHigh},
		{ActionAccountUnlocked, SeverityLow},
		{ActionUserLogin, SeverityMedium},
		{ActionBidSubmitted, SeverityMedium},
		{ActionDocumentUploaded, SeverityMedium},
		{ActionTenderCreated, SeverityLow},
		{ActionUserLogout, SeverityLow},
		{Action("SOMETHING_UNKNOWN"), SeverityLow},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := SeverityFor(tt.action); got != tt.expected {
				t.Errorf("SeverityFor(%s) = %s, want %s", tt.action, got, tt.expected)
			}
		})
	}
}

func TestSeverityOverride(t *testing.T) {
	m := newTestManager(Config{})
	rec := userRecord("user-1", ActionTenderCreated)
	rec.Severity = SeverityCritical
	mustLog(t, m, rec)

	entries := m.Entries(Filter{})
	if entries[0].Severity != SeverityCritical {
		t.Errorf("explicit severity should win, got %s", entries[0].Severity)
	}
}

func TestEntriesFiltering(t *testing.T) {
	m := newTestManager(Config{})
	for i := 0; i < 4; i++ {
		mustLog(t, m, userRecord("alice", ActionTenderCreated))
	}
	mustLog(t, m, userRecord("bob", ActionBidSubmitted))

	t.Run("by user", func(t *testing.T) {
		got := m.Entries(Filter{UserID: "alice"})
		if len(got) != 4 {
			t.Fatalf("expected 4 entries for alice, got %d", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Timestamp.Before(got[i-1].Timestamp) {
				t.Error("entries should be in insertion order")
			}
		}
	})

	t.Run("by action", func(t *testing.T) {
		got := m.Entries(Filter{Action: ActionBidSubmitted})
		if len(got) != 1 || got[0].UserID != "bob" {
			t.Fatalf("expected bob's bid entry, got %v", got)
		}
	})

	t.Run("limit keeps most recent", func(t *testing.T) {
		got := m.Entries(Filter{Limit: 2})
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		if got[1].UserID != "bob" {
			t.Error("limit should keep the most recent entries")
		}
	})

	t.Run("time range", func(t *testing.T) {
		all := m.Entries(Filter{})
		got := m.Entries(Filter{Start: all[2].Timestamp, End: all[3].Timestamp})
		if len(got) != 2 {
			t.Errorf("expected 2 entries in range, got %d", len(got))
		}
	})
}

func TestEntriesReturnsCopies(t *testing.T) {
	m := newTestManager(Config{})
	rec := userRecord("alice", ActionTenderCreated)
	rec.NewValues = map[string]string{"status": "draft"}
	mustLog(t, m, rec)

	got := m.Entries(Filter{})
	got[0].NewValues["status"] = "mutated"

	if ok, _ := m.VerifyIntegrity(); !ok {
		t.Error("mutating a returned entry must not affect the chain")
	}
}

func TestBruteForceDetection(t *testing.T) {
	m := newTestManager(Config{})

	failedLogin := func() Record {
		rec := userRecord("alice", ActionUserLogin)
		rec.Status = StatusFailure
		return rec
	}

	mustLog(t, m, failedLogin())
	mustLog(t, m, failedLogin())
	if got := m.Entries(Filter{Action: ActionFraudDetectionTrigger}); len(got) != 0 {
		t.Fatalf("2 failures should not trigger, got %d fraud entries", len(got))
	}

	mustLog(t, m, failedLogin())
	fraud := m.Entries(Filter{Action: ActionFraudDetectionTrigger})
	if len(fraud) != 1 {
		t.Fatalf("3rd consecutive failure should trigger, got %d fraud entries", len(fraud))
	}
	if fraud[0].Severity != SeverityCritical {
		t.Errorf("fraud entry severity = %s, want CRITICAL", fraud[0].Severity)
	}
	if fraud[0].UserID != SystemUserID {
		t.Errorf("fraud entry actor = %s, want system", fraud[0].UserID)
	}

	// The next failure extends the streak and triggers again.
	mustLog(t, m, failedLogin())
	if got := m.Entries(Filter{Action: ActionFraudDetectionTrigger}); len(got) != 2 {
		t.Errorf("4th failure should trigger again, got %d fraud entries", len(got))
	}

	if ok, _ := m.VerifyIntegrity(); !ok {
		t.Error("chain with synthesized entries should still verify")
	}
}

func TestSuccessfulLoginBreaksStreak(t *testing.T) {
	m := newTestManager(Config{})

	for i := 0; i < 2; i++ {
		rec := userRecord("alice", ActionUserLogin)
		rec.Status = StatusFailure
		mustLog(t, m, rec)
	}
	mustLog(t, m, userRecord("alice", ActionUserLogin))
	rec := userRecord("alice", ActionUserLogin)
	rec.Status = StatusFailure
	mustLog(t, m, rec)

	if got := m.Entries(Filter{Action: ActionFraudDetectionTrigger}); len(got) != 0 {
		t.Errorf("success should reset the streak, got %d fraud entries", len(got))
	}
}

func TestBurstDetection(t *testing.T) {
	t.Run("21 actions in window triggers", func(t *testing.T) {
		m := newTestManager(Config{})
		for i := 0; i < 21; i++ {
			mustLog(t, m, userRecord("alice", ActionTenderCreated))
		}
		if got := m.Entries(Filter{Action: ActionFraudDetectionTrigger}); len(got) == 0 {
			t.Error("21 actions inside the burst window should trigger")
		}
	})

	t.Run("20 actions does not trigger", func(t *testing.T) {
		m := newTestManager(Config{})
		for i := 0; i < 20; i++ {
			mustLog(t, m, userRecord("alice", ActionTenderCreated))
		}
		if got := m.Entries(Filter{Action: ActionFraudDetectionTrigger}); len(got) != 0 {
			t.Errorf("20 actions should not trigger, got %d fraud entries", len(got))
		}
	})

	t.Run("slow actions do not trigger", func(t *testing.T) {
		m := newTestManager(Config{})
		base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		n := 0
		m.clock = func() time.Time {
			n++
			return base.Add(time.Duration(n) * 10 * time.Second)
		}
		for i := 0; i < 25; i++ {
			mustLog(t, m, userRecord("alice", ActionTenderCreated))
		}
		if got := m.Entries(Filter{Action: ActionFraudDetectionTrigger}); len(got) != 0 {
			t.Errorf("spread-out actions should not trigger, got %d fraud entries", len(got))
		}
	})
}

func TestEvictionKeepsChainVerifiable(t *testing.T) {
	m := newTestManager(Config{MaxEntries: 5})
	for i := 0; i < 12; i++ {
		mustLog(t, m, userRecord("alice", ActionTenderCreated))
	}

	if m.Len() != 5 {
		t.Fatalf("expected 5 retained entries, got %d", m.Len())
	}
	if ok, offending := m.VerifyIntegrity(); !ok {
		t.Errorf("evicted chain should verify from checkpoint, offending %s", offending)
	}
	if m.baseHash == "" {
		t.Error("checkpoint should be set after eviction")
	}
}

func TestLogValidation(t *testing.T) {
	m := newTestManager(Config{})
	ctx := context.Background()

	tests := []struct {
		name string
		rec  Record
	}{
		{"missing action", Record{Resource: "x", UserID: "u"}},
		{"missing resource", Record{Action: ActionUserLogin, UserID: "u"}},
		{"missing actor", Record{Action: ActionUserLogin, Resource: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Log(ctx, tt.rec); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEndToEndScenario(t *testing.T) {
	m := newTestManager(Config{})
	actor := Actor{UserID: "officer-1", Email: "officer@mda.gov", Role: "procurement_officer"}

	mustLog(t, m, actor.NewRecord(ActionUserLogin, "auth"))
	mustLog(t, m, actor.NewRecord(ActionTenderCreated, "tender"))
	mustLog(t, m, actor.NewRecord(ActionCompanyBlacklisted, "company"))

	entries := m.Entries(Filter{})
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantSeverities := []Severity{SeverityMedium, SeverityLow, SeverityHigh}
	for i, want := range wantSeverities {
		if entries[i].Severity != want {
			t.Errorf("entry %d severity = %s, want %s", i, entries[i].Severity, want)
		}
	}

	if ok, _ := m.VerifyIntegrity(); !ok {
		t.Error("chain should verify")
	}

	high := m.Entries(Filter{Severity: SeverityHigh})
	if len(high) != 1 || high[0].Action != ActionCompanyBlacklisted {
		t.Errorf("expected exactly the blacklisting entry at HIGH, got %v", high)
	}
}

type recordingSink struct {
	mu        sync.Mutex
	failures  int
	persisted []Entry
}

func (s *recordingSink) Persist(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("sink unavailable")
	}
	s.persisted = append(s.persisted, e)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.persisted)
}

func TestSinkRetries(t *testing.T) {
	sink := &recordingSink{failures: 2}
	m := New(Config{
		SigningSecret:   "test-secret",
		SinkMaxAttempts: 3,
		SinkBackoff:     time.Millisecond,
	}, sink, nil, zap.NewNop())

	mustLog(t, m, userRecord("alice", ActionTenderCreated))
	m.Close()

	if got := sink.count(); got != 1 {
		t.Errorf("entry should be persisted after retries, got %d persisted", got)
	}
}

func TestSinkReceivesChainOrder(t *testing.T) {
	sink := &recordingSink{}
	m := New(Config{
		SigningSecret: "test-secret",
		SinkBackoff:   time.Millisecond,
	}, sink, nil, zap.NewNop())

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, mustLog(t, m, userRecord("alice", ActionTenderCreated)))
	}
	m.Close()

	if got := sink.count(); got != 5 {
		t.Fatalf("expected 5 persisted entries, got %d", got)
	}
	for i, e := range sink.persisted {
		if e.ID != ids[i] {
			t.Errorf("persisted entry %d out of order", i)
		}
	}
}

func TestConcurrentLogsReachSinkInChainOrder(t *testing.T) {
	sink := &recordingSink{}
	m := New(Config{
		SigningSecret: "test-secret",
		Anomaly: AnomalyPolicy{
			RecentWindow:         10,
			FailedLoginThreshold: 3,
			BurstThreshold:       100000,
			BurstWindow:          time.Second,
		},
		SinkBuffer:  1024,
		SinkBackoff: time.Millisecond,
	}, sink, nil, zap.NewNop())

	const writers = 8
	const perWriter = 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := m.Log(context.Background(), userRecord(fmt.Sprintf("user-%d", w), ActionTenderCreated)); err != nil {
					t.Errorf("Log failed: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()
	m.Close()

	if got := sink.count(); got != writers*perWriter {
		t.Fatalf("expected %d persisted entries, got %d", writers*perWriter, got)
	}
	if sink.persisted[0].PreviousHash != "" {
		t.Error("first persisted entry should start the chain")
	}
	for i := 1; i < len(sink.persisted); i++ {
		if sink.persisted[i].PreviousHash != sink.persisted[i-1].Hash {
			t.Fatalf("persisted entry %d out of chain order", i)
		}
	}
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.published...)
}

func TestAnomalyPublishesSecurityAlert(t *testing.T) {
	pub := &recordingPublisher{}
	m := New(Config{SigningSecret: "test-secret"}, nil, pub, zap.NewNop())

	for i := 0; i < 3; i++ {
		rec := userRecord("alice", ActionUserLogin)
		rec.Status = StatusFailure
		mustLog(t, m, rec)
	}

	published := pub.all()
	if len(published) == 0 {
		t.Fatal("anomaly should publish a security alert")
	}
	if published[0].Type != events.EventSecurityAlert {
		t.Errorf("event type = %s, want %s", published[0].Type, events.EventSecurityAlert)
	}
	if published[0].Payload["user_id"] != "alice" {
		t.Errorf("alert should name the flagged actor, got %v", published[0].Payload["user_id"])
	}
}

func TestHighRiskScorePublishesAlert(t *testing.T) {
	pub := &recordingPublisher{}
	m := New(Config{SigningSecret: "test-secret", RiskAlertThreshold: 50}, nil, pub, zap.NewNop())
	m.clock = func() time.Time {
		// 02:00, so the off-hours weight applies.
		return time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)
	}

	rec := userRecord("root", ActionDataExported)
	rec.UserRole = "admin"
	mustLog(t, m, rec)

	published := pub.all()
	if len(published) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(published))
	}
	if published[0].Payload["reason"] != "risk score threshold exceeded" {
		t.Errorf("unexpected alert reason %v", published[0].Payload["reason"])
	}
}
