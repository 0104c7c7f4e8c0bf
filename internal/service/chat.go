package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"campus-assistant/internal/domain"
	"campus-assistant/internal/retrieval"
)

var welcomeTexts = map[domain.AssistantVariant]string{
	domain.VariantCollege:    "Hi! I can answer questions from documents across the whole college. What would you like to know?",
	domain.VariantDepartment: "Hi! Ask me anything about your department's documents and events.",
	domain.VariantSubject:    "Hi! Pick a subject and I'll answer from its course material.",
	domain.VariantGeneral:    "Hi! I'm the campus assistant. Ask me anything about campus life.",
}

var apologyTexts = map[domain.AssistantVariant]string{
	domain.VariantCollege:    "Sorry, I couldn't search the college documents right now. Please try again in a moment.",
	domain.VariantDepartment: "Sorry, I couldn't reach your department's documents right now. Please try again in a moment.",
	domain.VariantSubject:    "Sorry, I couldn't search that subject's material right now. Please try again in a moment.",
	domain.VariantGeneral:    "Sorry, I'm having trouble answering right now. Please try again in a moment.",
}

// SessionRouter owns one user's chat sessions, one per assistant variant.
// Sessions are created lazily, rebound when the resolved scope changes and
// cleared on rebind so no transcript survives an authorization boundary.
//
// One send per session may be in flight at a time; a second send on the
// same variant is rejected with ErrSessionBusy rather than queued. Sends
// on different variants run concurrently. Each outbound call is tagged
// with the scope it was issued under; a response whose session has since
// been reset or rebound is discarded, never appended.
type SessionRouter struct {
	user      domain.User
	retriever retrieval.Client
	audits    domain.TurnAuditRepository

	mu       sync.Mutex
	sessions map[domain.AssistantVariant]*domain.ChatSession
	inflight map[domain.AssistantVariant]*domain.ChatSession
}

// NewSessionRouter creates a session router for one user. The audit
// repository may be nil, in which case turns are not recorded.
func NewSessionRouter(user domain.User, retriever retrieval.Client, audits domain.TurnAuditRepository) *SessionRouter {
	return &SessionRouter{
		user:      user,
		retriever: retriever,
		audits:    audits,
		sessions:  make(map[domain.AssistantVariant]*domain.ChatSession),
		inflight:  make(map[domain.AssistantVariant]*domain.ChatSession),
	}
}

// session returns the variant's session, creating it with its welcome
// message on first access. Caller must hold the lock.
func (sr *SessionRouter) session(variant domain.AssistantVariant) *domain.ChatSession {
	s, ok := sr.sessions[variant]
	if !ok {
		s = &domain.ChatSession{Variant: variant}
		if welcome, found := welcomeTexts[variant]; found {
			s.Messages = append(s.Messages, newMessage(domain.SenderAssistant, welcome))
		}
		sr.sessions[variant] = s
	}
	return s
}

// Send runs one chat turn on the variant's session under the given
// resolved scope. The retrieval call happens outside the router lock, so a
// slow backend never blocks the user's other sessions.
func (sr *SessionRouter) Send(ctx context.Context, variant domain.AssistantVariant, scope domain.ResolvedScope, text string) (*domain.ChatTurnResult, error) {
	sr.mu.Lock()

	if sr.inflight[variant] != nil {
		sr.mu.Unlock()
		return nil, domain.ErrSessionBusy
	}

	session := sr.session(variant)
	if session.Bound && !session.Scope.Equal(scope) {
		log.Info().
			Str("variant", string(variant)).
			Str("kind", string(scope.Kind)).
			Msg("session scope changed, clearing transcript")
		session.Messages = nil
	}
	session.Scope = scope
	session.Bound = true

	userMsg := newMessage(domain.SenderUser, text)
	session.Messages = append(session.Messages, userMsg)

	sr.inflight[variant] = session
	tag := scope
	sr.mu.Unlock()

	resp, queryErr := sr.retriever.Query(ctx, scope, retrieval.Request{
		Query:  text,
		UserID: sr.user.ID.String(),
		Role:   sr.user.Role,
	})

	sr.mu.Lock()
	if sr.inflight[variant] == session {
		delete(sr.inflight, variant)
	}

	// The session may have been reset while the call was out. Its scope
	// cannot have been rebound mid-flight (a second send is rejected as
	// busy), but both checks keep the invariant local and obvious.
	if sr.sessions[variant] != session || !session.Scope.Equal(tag) {
		sr.mu.Unlock()
		log.Warn().
			Str("variant", string(variant)).
			Str("kind", string(tag.Kind)).
			Msg("discarding stale retrieval response")
		return nil, domain.ErrScopeChanged
	}

	var assistantMsg domain.ChatMessage
	failed := queryErr != nil
	if failed {
		log.Error().Err(queryErr).
			Str("variant", string(variant)).
			Str("kind", string(scope.Kind)).
			Msg("retrieval query failed")
		zero := 0
		assistantMsg = newMessage(domain.SenderAssistant, apologyTexts[variant])
		assistantMsg.SourcesCount = &zero
	} else {
		count := resp.SourcesCount
		assistantMsg = newMessage(domain.SenderAssistant, resp.Response)
		assistantMsg.SourcesCount = &count
		assistantMsg.ContextBreakdown = resp.ContextBreakdown
	}
	session.Messages = append(session.Messages, assistantMsg)
	sr.mu.Unlock()

	sr.recordTurn(ctx, variant, scope, text, assistantMsg, failed)

	return &domain.ChatTurnResult{
		Variant:          variant,
		Scope:            scope,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Failed:           failed,
	}, nil
}

// recordTurn writes the audit row. Auditing is best effort: a storage
// failure is logged and the turn still succeeds.
func (sr *SessionRouter) recordTurn(ctx context.Context, variant domain.AssistantVariant, scope domain.ResolvedScope, question string, reply domain.ChatMessage, failed bool) {
	if sr.audits == nil {
		return
	}

	outcome := domain.TurnOutcomeAnswered
	if failed {
		outcome = domain.TurnOutcomeFailed
	}
	sources := 0
	if reply.SourcesCount != nil {
		sources = *reply.SourcesCount
	}

	audit := &domain.TurnAudit{
		ID:           uuid.New(),
		UserID:       sr.user.ID,
		Role:         sr.user.Role,
		Variant:      variant,
		ScopeKind:    scope.Kind,
		Department:   scope.Department,
		Subject:      scope.Subject,
		Question:     question,
		SourcesCount: sources,
		Outcome:      outcome,
		CreatedAt:    reply.Timestamp,
	}
	if err := sr.audits.Create(ctx, audit); err != nil {
		log.Error().Err(err).Str("variant", string(variant)).Msg("failed to record turn audit")
	}
}

// Messages returns a copy of the variant's transcript. A fresh variant
// greets with its welcome message.
func (sr *SessionRouter) Messages(variant domain.AssistantVariant) []domain.ChatMessage {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	session := sr.session(variant)
	out := make([]domain.ChatMessage, len(session.Messages))
	copy(out, session.Messages)
	return out
}

// Reset drops the variant's session entirely, abandoning any in-flight
// retrieval call; its late response will be discarded. The next
// interaction starts a brand-new session with its welcome message.
func (sr *SessionRouter) Reset(variant domain.AssistantVariant) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	delete(sr.sessions, variant)
	delete(sr.inflight, variant)
}

func newMessage(sender domain.Sender, text string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.New(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}
