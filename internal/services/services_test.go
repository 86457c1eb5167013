package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sentinal-social/internal/domain/user"
	"sentinal-social/internal/proxy"
	"sentinal-social/internal/repository"
	"sentinal-social/internal/services"
	"sentinal-social/internal/testhelpers"

	"github.com/google/uuid"
)

type published struct {
	conversationID string
	payload        []byte
}

type revocation struct {
	conversationID string
	userID         uuid.UUID
}

// recordingBroadcaster captures broadcasts and revocations, optionally
// failing them.
type recordingBroadcaster struct {
	mu      sync.Mutex
	sent    []published
	revoked []revocation
	err     error
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, conversationID string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.sent = append(b.sent, published{conversationID: conversationID, payload: payload})
	return nil
}

func (b *recordingBroadcaster) RevokeChannel(_ context.Context, conversationID string, userID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.revoked = append(b.revoked, revocation{conversationID: conversationID, userID: userID})
	return nil
}

func (b *recordingBroadcaster) revocations() []revocation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]revocation(nil), b.revoked...)
}

func (b *recordingBroadcaster) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *recordingBroadcaster) all() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.sent...)
}

type fixture struct {
	db            *repository.DB
	directory     *services.Directory
	relationships *services.RelationshipService
	conversations *services.ConversationService
	groups        *services.GroupService
	messages      *services.MessageService
	broadcaster   *recordingBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)

	userRepo := repository.NewUserRepository(db)
	convRepo := repository.NewConversationRepository(db)
	access := proxy.NewAccessControl(convRepo)

	directory := services.NewDirectory(userRepo)
	conversations := services.NewConversationService(directory, convRepo, access)
	broadcaster := &recordingBroadcaster{}

	return &fixture{
		db:            db,
		directory:     directory,
		relationships: services.NewRelationshipService(directory, repository.NewRelationshipRepository(db), conversations),
		conversations: conversations,
		groups:        services.NewGroupService(directory, convRepo, access, broadcaster, nil),
		messages:      services.NewMessageService(repository.NewMessageRepository(db), conversations, directory, access, broadcaster, nil),
		broadcaster:   broadcaster,
	}
}

func (f *fixture) user(t *testing.T, name string) user.User {
	return testhelpers.CreateUser(t, f.db, name)
}

var errBroadcast = errors.New("broadcast down")
