package audit

import (
	"testing"
	"time"
)

func sampleEntry() Entry {
	return Entry{
		ID:        "entry-1",
		Timestamp: time.Date(2025, 3, 10, 12, 0, 0, 123456789, time.UTC),
		UserID:    "alice",
		UserEmail: "alice@example.com",
		UserRole:  "bidder",
		Action:    ActionBidSubmitted,
		Resource:  "bid",
		NewValues: map[string]string{"amount": "100", "status": "submitted"},
		Severity:  SeverityMedium,
		Status:    StatusSuccess,
		Metadata:  Metadata{SchemaVersion: MetadataSchemaVersion, RiskScore: 20},
	}
}

func TestSignatureDeterministic(t *testing.T) {
	secret := []byte("secret")
	a := computeSignature(sampleEntry(), secret)
	b := computeSignature(sampleEntry(), secret)
	if a != b {
		t.Error("same entry and secret must produce the same signature")
	}
	if len(a) != 64 {
		t.Errorf("signature should be hex sha256, got length %d", len(a))
	}
}

func TestSignatureDependsOnSecret(t *testing.T) {
	e := sampleEntry()
	if computeSignature(e, []byte("secret-a")) == computeSignature(e, []byte("secret-b")) {
		t.Error("different secrets must produce different signatures")
	}
}

func TestSignatureCoversContent(t *testing.T) {
	secret := []byte("secret")
	base := computeSignature(sampleEntry(), secret)

	mutations := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"user_id", func(e *Entry) { e.UserID = "mallory" }},
		{"action", func(e *Entry) { e.Action = ActionBidWithdrawn }},
		{"new_values", func(e *Entry) { e.NewValues["amount"] = "999" }},
		{"timestamp", func(e *Entry) { e.Timestamp = e.Timestamp.Add(time.Nanosecond) }},
		{"previous_hash", func(e *Entry) { e.PreviousHash = "abc" }},
		{"risk_score", func(e *Entry) { e.Metadata.RiskScore = 99 }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			e := sampleEntry()
			tt.mutate(&e)
			if computeSignature(e, secret) == base {
				t.Errorf("mutating %s should change the signature", tt.name)
			}
		})
	}
}

func TestHashBindsSignature(t *testing.T) {
	e := sampleEntry()
	if computeHash(e, "sig-a") == computeHash(e, "sig-b") {
		t.Error("hash must change when the signature changes")
	}
}

func TestHashExcludesHashFields(t *testing.T) {
	e := sampleEntry()
	want := computeHash(e, "sig")
	e.Hash = "something"
	e.Signature = "else"
	if computeHash(e, "sig") != want {
		t.Error("stored hash and signature must not feed back into the digest")
	}
}
