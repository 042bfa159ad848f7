package websocket

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/logger"
	"codeberg.org/forgeui/server/internal/sessions"
	ws "codeberg.org/forgeui/server/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     ws.CheckOrigin,
}

// handles WebSocket connections for streaming generation.
// a missing session_id starts a new session; an unknown one is created
func WebSocketHandler(hub *ws.Hub, sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			apierrors.BadRequest(c, "invalid parameters", err)
			return
		}

		session, err := sessionMgr.GetOrCreate(params.SessionID)
		if err != nil {
			if errors.Is(err, sessions.ErrInvalidID) {
				apierrors.BadRequest(c, "invalid session_id format", nil)
				return
			}

			apierrors.InternalError(c, "failed to resolve session", err)
			return
		}

		// check connection limits before accepting new connection
		ipAddress := c.ClientIP()
		canAccept, reason := hub.CanAcceptConnection(ipAddress)

		if !canAccept {
			apierrors.TooManyRequests(c, reason)
			return
		}

		clientID := ws.GenerateClientID()

		// upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"session_id", session.ID,
				"ip", ipAddress,
			)

			return
		}

		// track IP connection only after successful upgrade
		hub.TrackIPConnection(ipAddress)

		client := ws.NewClient(clientID, session.ID, ipAddress, session.History.Entries(), conn, hub)

		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", clientID,
			"session_id", session.ID,
			"ip", ipAddress,
		)
	}
}
