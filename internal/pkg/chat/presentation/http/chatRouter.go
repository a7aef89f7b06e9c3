package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/queue/port"
	"github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/realtime"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/auth"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/presentation/controller"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/presentation/event"
	userport "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

// Deps carries the shared infrastructure the chat endpoints need. Controllers
// are constructed per endpoint and bound directly to routes.
type Deps struct {
	Pool       *pgxpool.Pool
	Queue      qport.Client
	Hub        *realtime.Hub
	Users      userport.UserRepository
	Verifier   *auth.Verifier
	Dispatcher *event.Dispatcher
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. The websocket endpoint authenticates inside the handler (token query
// param support), everything else goes through the bearer-token middleware.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	listCtl := controller.NewListConversationsController(d.Pool, d.Users)
	createCtl := controller.NewCreateConversationController(d.Pool, d.Users)
	getCtl := controller.NewGetConversationController(d.Pool, d.Users)
	getMsgCtl := controller.NewGetMessagesController(d.Pool)
	markReadCtl := controller.NewMarkReadController(d.Pool, d.Dispatcher)
	sendMsgCtl := controller.NewSendMessageController(d.Queue)
	socketCtl := controller.NewChatSocketController(d.Pool, d.Hub, d.Verifier, d.Dispatcher)

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())

	chat := g.Group("/chat", auth.RequireAuth(d.Verifier))

	// GET  /api/v1/chat/conversations -> inbox for the caller
	chat.GET("/conversations", listCtl.Handle())

	// POST /api/v1/chat/conversations -> open (or fetch) a thread about an item
	chat.POST("/conversations", createCtl.Handle())

	// GET  /api/v1/chat/conversations/:conversationId -> single conversation
	chat.GET("/conversations/:conversationId", getCtl.Handle())

	// GET  /api/v1/chat/conversations/:conversationId/messages -> paginated history
	chat.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())

	// POST /api/v1/chat/conversations/:conversationId/messages -> enqueue a send
	chat.POST("/conversations/:conversationId/messages", sendMsgCtl.Handle())

	// PUT  /api/v1/chat/conversations/:conversationId/read -> mark messages read
	chat.PUT("/conversations/:conversationId/read", markReadCtl.Handle())
}
