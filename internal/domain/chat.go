package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the conversation produced a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ContextBreakdown describes which departments, subjects and storage kinds
// contributed source material to an answer.
type ContextBreakdown struct {
	DepartmentsSearched []string `json:"departments_searched"`
	SubjectsSearched    []string `json:"subjects_searched"`
	StorageKinds        []string `json:"storage_types"`
}

// ChatMessage is a single transcript entry. Append-only; never mutated
// after creation.
type ChatMessage struct {
	ID               uuid.UUID         `json:"id"`
	Sender           Sender            `json:"sender"`
	Text             string            `json:"text"`
	Timestamp        time.Time         `json:"timestamp"`
	SourcesCount     *int              `json:"sources_count,omitempty"`
	ContextBreakdown *ContextBreakdown `json:"context_breakdown,omitempty"`
}

// ChatSession is one assistant variant's conversation state. Created
// lazily on first interaction; its messages are cleared whenever the bound
// scope changes, so the assistant can never "remember" content it is no
// longer authorized to use.
type ChatSession struct {
	Variant  AssistantVariant `json:"variant"`
	Scope    ResolvedScope    `json:"scope"`
	Bound    bool             `json:"bound"`
	Messages []ChatMessage    `json:"messages"`
}

// ChatTurnResult is the normalized outcome of one send: the user message,
// the assistant reply (real or apology) and the scope the turn ran under.
type ChatTurnResult struct {
	Variant          AssistantVariant `json:"variant"`
	Scope            ResolvedScope    `json:"scope"`
	UserMessage      ChatMessage      `json:"user_message"`
	AssistantMessage ChatMessage      `json:"assistant_message"`
	Failed           bool             `json:"failed"`
}

// Turn audit outcomes
const (
	TurnOutcomeAnswered = "answered"
	TurnOutcomeFailed   = "failed"
)

// TurnAudit is the append-only record of one completed chat turn
type TurnAudit struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Role         Role             `json:"role"`
	Variant      AssistantVariant `json:"variant"`
	ScopeKind    ScopeKind        `json:"scope_kind"`
	Department   string           `json:"department,omitempty"`
	Subject      string           `json:"subject,omitempty"`
	Question     string           `json:"question"`
	SourcesCount int              `json:"sources_count"`
	Outcome      string           `json:"outcome"`
	CreatedAt    time.Time        `json:"created_at"`
}

// TurnAuditRepository defines the interface for turn audit storage
type TurnAuditRepository interface {
	Create(ctx context.Context, audit *TurnAudit) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]TurnAudit, error)
}
