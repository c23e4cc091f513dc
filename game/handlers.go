package game

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type GameHandler struct {
	gateway  *Gateway
	upgrader websocket.Upgrader
}

func NewGameHandler(gateway *Gateway, allowedOrigins []string) *GameHandler {
	return &GameHandler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return OriginAllowed(allowedOrigins, r)
			},
		},
	}
}

// OriginAllowed accepts requests without an Origin header, origins on the allow
// list and pages served by this host.
func OriginAllowed(allowedOrigins []string, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(allowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// SocketHandler upgrades the request and attaches the connection to the room
// until it disconnects.
func (h *GameHandler) SocketHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// the upgrader already wrote the error response
		log.Warn().Str("ip", ctx.ClientIP()).Err(err).Msg("websocket upgrade failed")
		return
	}

	h.gateway.Serve(ctx.Request.Context(), NewWebsocketConnection(conn))
}
