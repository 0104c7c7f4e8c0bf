package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"campus-assistant/internal/domain"
	"campus-assistant/internal/retrieval"
)

// AssistantHub ties one user's scope resolution and session routing
// together. Ask is the single entry point for a chat turn: resolve the
// requested scope for this user, then run the turn on the variant's
// session under it.
type AssistantHub struct {
	user     domain.User
	resolver *ScopeResolver
	router   *SessionRouter
}

// NewAssistantHub creates a hub for one user
func NewAssistantHub(user domain.User, resolver *ScopeResolver, retriever retrieval.Client, audits domain.TurnAuditRepository) *AssistantHub {
	return &AssistantHub{
		user:     user,
		resolver: resolver,
		router:   NewSessionRouter(user, retriever, audits),
	}
}

// Ask resolves the scope request and sends one chat turn. A resolution
// failure is terminal for the request: nothing is sent and no session
// state changes.
func (h *AssistantHub) Ask(ctx context.Context, req domain.ScopeRequest, text string) (*domain.ChatTurnResult, error) {
	scope, err := h.resolver.Resolve(h.user, req)
	if err != nil {
		return nil, err
	}
	return h.router.Send(ctx, req.Variant, scope, text)
}

// Messages returns the transcript of one assistant variant
func (h *AssistantHub) Messages(variant domain.AssistantVariant) []domain.ChatMessage {
	return h.router.Messages(variant)
}

// Reset drops one assistant variant's session
func (h *AssistantHub) Reset(variant domain.AssistantVariant) {
	h.router.Reset(variant)
}

// HubManager hands out one AssistantHub per user, created lazily. Hubs
// are independent; two users never share session state.
type HubManager struct {
	resolver  *ScopeResolver
	retriever retrieval.Client
	audits    domain.TurnAuditRepository

	mu   sync.Mutex
	hubs map[uuid.UUID]*AssistantHub
}

// NewHubManager creates a new hub manager
func NewHubManager(resolver *ScopeResolver, retriever retrieval.Client, audits domain.TurnAuditRepository) *HubManager {
	return &HubManager{
		resolver:  resolver,
		retriever: retriever,
		audits:    audits,
		hubs:      make(map[uuid.UUID]*AssistantHub),
	}
}

// Hub returns the user's hub, creating it on first access
func (m *HubManager) Hub(user domain.User) *AssistantHub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[user.ID]
	if !ok {
		hub = NewAssistantHub(user, m.resolver, m.retriever, m.audits)
		m.hubs[user.ID] = hub
	}
	return hub
}
