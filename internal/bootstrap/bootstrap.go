// Package bootstrap assembles the service graph from a store, an optional
// redis client and the configuration.
package bootstrap

import (
	"context"
	"database/sql"

	"sentinal-social/config"
	"sentinal-social/internal/events"
	"sentinal-social/internal/handler"
	"sentinal-social/internal/middleware"
	"sentinal-social/internal/proxy"
	"sentinal-social/internal/redis"
	"sentinal-social/internal/repository"
	"sentinal-social/internal/server"
	"sentinal-social/internal/services"
	"sentinal-social/internal/websocket"
	"sentinal-social/pkg/database"
	"sentinal-social/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

type App struct {
	Server *server.Server
	Hub    *websocket.Hub

	Auth          *services.AuthService
	Directory     *services.Directory
	Relationships *services.RelationshipService
	Conversations *services.ConversationService
	Groups        *services.GroupService
	Messages      *services.MessageService

	bridge *websocket.RedisBridge
	log    *logger.Logger
}

// New wires every component. With a nil redis client delivery and presence
// stay in process and rate limiting is off.
func New(cfg *config.Config, sqlDB *sql.DB, dialect database.Dialect, rdb *goredis.Client, l *logger.Logger) *App {
	if l == nil {
		l = logger.Nop()
	}
	db := repository.NewDB(sqlDB, dialect)

	userRepo := repository.NewUserRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	access := proxy.NewAccessControl(conversationRepo)
	directory := services.NewDirectory(userRepo)
	conversations := services.NewConversationService(directory, conversationRepo, access)
	relationships := services.NewRelationshipService(directory, relationshipRepo, conversations)
	auth := services.NewAuthService(userRepo, cfg)

	wsLog := websocket.NewLogger(l)

	var (
		presence    websocket.PresenceTracker = directory
		broadcaster services.Broadcaster
		revoker     services.ChannelRevoker
		limiter     middleware.Limiter
		bridge      *websocket.RedisBridge
	)
	if rdb != nil {
		presence = redis.NewPresenceStore(rdb, directory)
	}
	hub := websocket.NewHub(presence, wsLog)

	if rdb != nil {
		bus := events.NewRedisBus(redis.NewPublisher(rdb))
		broadcaster, revoker = bus, bus
		bridge = websocket.NewRedisBridge(redis.NewSubscriber(rdb), hub)
		limiter = redis.NewRateLimiterFromConfig(rdb, cfg)
	} else {
		local := websocket.NewLocalBroadcaster(hub)
		broadcaster, revoker = local, local
	}

	groups := services.NewGroupService(directory, conversationRepo, access, revoker, l)
	messages := services.NewMessageService(messageRepo, conversations, directory, access, broadcaster, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:      handler.NewAuthHandler(auth),
		Users:     handler.NewUserHandler(directory),
		Friends:   handler.NewFriendHandler(relationships),
		Groups:    handler.NewGroupHandler(groups, messages),
		Chats:     handler.NewChatHandler(conversations, messages),
		Messages:  handler.NewMessageHandler(messages),
		WebSocket: websocket.NewHandler(auth, hub, websocket.NewChannelAuthorizer(access), wsLog),
	}, server.Deps{
		Verifier: auth,
		Limiter:  limiter,
		DB:       sqlDB,
	})

	return &App{
		Server:        srv,
		Hub:           hub,
		Auth:          auth,
		Directory:     directory,
		Relationships: relationships,
		Conversations: conversations,
		Groups:        groups,
		Messages:      messages,
		bridge:        bridge,
		log:           l,
	}
}

// RunBridge relays redis conversation events into the local hub until ctx
// is done. It returns immediately when redis is not configured.
func (a *App) RunBridge(ctx context.Context) {
	if a.bridge == nil {
		return
	}
	if err := a.bridge.Run(ctx); err != nil {
		a.log.Errorf("redis bridge stopped: %s", err)
	}
}
