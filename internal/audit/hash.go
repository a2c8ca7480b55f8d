package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// signingPayload is the canonical form digested for both the signature and the
// hash. Field order is fixed by the struct; map values are emitted with sorted
// keys by encoding/json, so the encoding is deterministic. Hash and Signature
// themselves are excluded.
type signingPayload struct {
	ID           string            `json:"id"`
	Timestamp    string            `json:"timestamp"`
	UserID       string            `json:"user_id"`
	UserEmail    string            `json:"user_email"`
	UserRole     string            `json:"user_role"`
	SessionID    string            `json:"session_id"`
	IPAddress    string            `json:"ip_address"`
	UserAgent    string            `json:"user_agent"`
	Metadata     Metadata          `json:"metadata"`
	Action       string            `json:"action"`
	Resource     string            `json:"resource"`
	ResourceID   string            `json:"resource_id"`
	OldValues    map[string]string `json:"old_values"`
	NewValues    map[string]string `json:"new_values"`
	Severity     string            `json:"severity"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
	Geolocation  string            `json:"geolocation"`
	PreviousHash string            `json:"previous_hash"`
}

func canonicalBytes(e Entry) []byte {
	p := signingPayload{
		ID:           e.ID,
		Timestamp:    e.Timestamp.UTC().Format(timestampLayout),
		UserID:       e.UserID,
		UserEmail:    e.UserEmail,
		UserRole:     e.UserRole,
		SessionID:    e.SessionID,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		Metadata:     e.Metadata,
		Action:       string(e.Action),
		Resource:     e.Resource,
		ResourceID:   e.ResourceID,
		OldValues:    e.OldValues,
		NewValues:    e.NewValues,
		Severity:     string(e.Severity),
		Status:       string(e.Status),
		ErrorMessage: e.ErrorMessage,
		Geolocation:  e.Geolocation,
		PreviousHash: e.PreviousHash,
	}
	// Marshal of this payload cannot fail: every field is a string, int or
	// string map.
	data, _ := json.Marshal(p)
	return data
}

const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// computeSignature produces the keyed digest over the entry content (all
// fields except Hash and Signature) and the process secret.
func computeSignature(e Entry, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(canonicalBytes(e))
	return hex.EncodeToString(mac.Sum(nil))
}

// computeHash binds content, signature and previous hash together. The
// previous hash is already part of the canonical content; including the
// signature makes signature tampering break the chain too.
func computeHash(e Entry, signature string) string {
	h := sha256.New()
	h.Write(canonicalBytes(e))
	h.Write([]byte(signature))
	return hex.EncodeToString(h.Sum(nil))
}
