package audit

import (
	"time"
)

// Action identifies what happened. The taxonomy covers every workflow the
// portal audits: authentication, company lifecycle, tender lifecycle, bidding,
// documents, payments, evaluation, communication, security and contracts.
type Action string

const (
	// Authentication
	ActionUserLogin       Action = "USER_LOGIN"
	ActionUserLogout      Action = "USER_LOGOUT"
	ActionPasswordChanged Action = "PASSWORD_CHANGED"

	// Company lifecycle
	ActionCompanyRegistered  Action = "COMPANY_REGISTERED"
	ActionCompanyApproved    Action = "COMPANY_APPROVED"
	ActionCompanyRejected    Action = "COMPANY_REJECTED"
	ActionCompanyBlacklisted Action = "COMPANY_BLACKLISTED"

	// Tender lifecycle
	ActionTenderCreated   Action = "TENDER_CREATED"
	ActionTenderUpdated   Action = "TENDER_UPDATED"
	ActionTenderPublished Action = "TENDER_PUBLISHED"
	ActionTenderClosed    Action = "TENDER_CLOSED"
	ActionTenderAwarded   Action = "TENDER_AWARDED"
	ActionTenderCancelled Action = "TENDER_CANCELLED"

	// Bidding
	ActionBidSubmitted  Action = "BID_SUBMITTED"
	ActionBidWithdrawn  Action = "BID_WITHDRAWN"
	ActionBidOpened     Action = "BID_OPENED"

	// Documents
	ActionDocumentUploaded   Action = "DOCUMENT_UPLOADED"
	ActionDocumentDownloaded Action = "DOCUMENT_DOWNLOADED"
	ActionDataExported       Action = "DATA_EXPORTED"

	// Financial
	ActionPaymentInitiated Action = "PAYMENT_INITIATED"
	ActionPaymentCompleted Action = "PAYMENT_COMPLETED"

	// Evaluation
	ActionEvaluationStarted   Action = "EVALUATION_STARTED"
	ActionEvaluationScored    Action = "EVALUATION_SCORED"
	ActionEvaluationCompleted Action = "EVALUATION_COMPLETED"

	// Communication
	ActionClarificationPosted Action = "CLARIFICATION_POSTED"

	// Security
	ActionUnauthorizedAccess     Action = "UNAUTHORIZED_ACCESS"
	ActionFraudDetectionTrigger  Action = "FRAUD_DETECTION_TRIGGERED"
	ActionSystemConfigChanged    Action = "SYSTEM_CONFIG_CHANGED"
	ActionAuditLogAccessed       Action = "AUDIT_LOG_ACCESSED"
	ActionAccountLocked          Action = "ACCOUNT_LOCKED"
	ActionAccountUnlocked        Action = "ACCOUNT_UNLOCKED"

	// Contract
	ActionContractCreated Action = "CONTRACT_CREATED"
	ActionContractSigned  Action = "CONTRACT_SIGNED"
)

// Severity classifies how sensitive an entry is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Status records the outcome of the audited action.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusBlocked Status = "BLOCKED"
)

// MetadataSchemaVersion is bumped whenever a field is added to Metadata so
// stored entries remain interpretable.
const MetadataSchemaVersion = "1"

// SystemUserID is the reserved actor identity for entries the system writes
// about itself (worker jobs, synthesized fraud entries).
const SystemUserID = "system"

// Metadata is the environmental context captured alongside every entry.
type Metadata struct {
	SchemaVersion string            `json:"schema_version"`
	RequestID     string            `json:"request_id,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	SourceModule  string            `json:"source_module,omitempty"`
	Fingerprint   string            `json:"fingerprint,omitempty"`
	Timezone      string            `json:"timezone,omitempty"`
	Language      string            `json:"language,omitempty"`
	Referrer      string            `json:"referrer,omitempty"`
	DeviceType    string            `json:"device_type,omitempty"`
	OS            string            `json:"os,omitempty"`
	RiskScore     int               `json:"risk_score"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Entry is a single immutable audit record. Hash binds the entry's content and
// signature to PreviousHash; Signature is a keyed digest over the content.
// Entries are never mutated after Manager.Log returns.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	UserRole  string `json:"user_role"`
	SessionID string `json:"session_id,omitempty"`

	IPAddress string   `json:"ip_address,omitempty"`
	UserAgent string   `json:"user_agent,omitempty"`
	Metadata  Metadata `json:"metadata"`

	Action     Action            `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resource_id,omitempty"`
	OldValues  map[string]string `json:"old_values,omitempty"`
	NewValues  map[string]string `json:"new_values,omitempty"`

	Severity     Severity `json:"severity"`
	Status       Status   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`

	Geolocation string `json:"geolocation,omitempty"`

	PreviousHash string `json:"previous_hash"`
	Hash         string `json:"hash"`
	Signature    string `json:"signature"`
}

// clone returns a deep copy so callers can never mutate retained entries.
func (e Entry) clone() Entry {
	out := e
	out.OldValues = cloneMap(e.OldValues)
	out.NewValues = cloneMap(e.NewValues)
	out.Metadata.Extra = cloneMap(e.Metadata.Extra)
	return out
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var severityByAction = map[Action]Severity{
	ActionUnauthorizedAccess:    SeverityCritical,
	ActionFraudDetectionTrigger: SeverityCritical,
	ActionSystemConfigChanged:   SeverityCritical,
	ActionAuditLogAccessed:      SeverityCritical,

	ActionCompanyBlacklisted: SeverityHigh,
	ActionTenderAwarded:      SeverityHigh,
	ActionContractSigned:     SeverityHigh,
	ActionPaymentCompleted:   SeverityHigh,
	ActionDataExported:       SeverityHigh,
	ActionAccountLocked:      SeverityHigh,

	ActionCompanyApproved:  SeverityMedium,
	ActionBidSubmitted:     SeverityMedium,
	ActionDocumentUploaded: SeverityMedium,
	ActionUserLogin:        SeverityMedium,
	ActionPasswordChanged:  SeverityMedium,
}

// SeverityFor returns the severity the taxonomy assigns to an action.
// Unrecognized actions are LOW.
func SeverityFor(action Action) Severity {
	if s, ok := severityByAction[action]; ok {
		return s
	}
	return SeverityLow
}
