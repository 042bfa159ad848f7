package sessions

import (
	"net/http"
	"time"

	"codeberg.org/forgeui/server/api/rest/pagination"
	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/sessions"
	"github.com/gin-gonic/gin"
)

// creates a new empty session
func CreateHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionMgr.CreateSession()

		c.JSON(http.StatusCreated, SessionResponse{
			SessionID: session.ID,
			ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}

// lists the history of a session, optionally windowed by limit and offset
func HistoryHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := lookup(c, sessionMgr)
		if !ok {
			return
		}

		entries := session.History.Entries()
		params := pagination.FromQuery(c, history.MaxEntries, history.MaxEntries)

		c.JSON(http.StatusOK, HistoryResponse{
			SessionID:  session.ID,
			Entries:    pagination.Slice(entries, params),
			Pagination: pagination.NewMeta(params, len(entries)),
		})
	}
}

// returns one history entry so a client can load it back into the editor
func EntryHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := lookupEntry(c, sessionMgr)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, entry)
	}
}

// serves a history entry's code as a file named for its technology
func DownloadHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := lookupEntry(c, sessionMgr)
		if !ok {
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+entry.Technology.Filename()+`"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(entry.Code))
	}
}

// clears a session's history
func ClearHandler(sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := lookup(c, sessionMgr)
		if !ok {
			return
		}

		session.History.Clear()
		c.Status(http.StatusNoContent)
	}
}

func lookup(c *gin.Context, sessionMgr *sessions.Manager) (*sessions.Session, bool) {
	id := c.Param("id")
	if !sessions.ValidID(id) {
		apierrors.BadRequest(c, "invalid session id format", nil)
		return nil, false
	}

	session, ok := sessionMgr.GetSession(id)
	if !ok {
		apierrors.SessionNotFound(c)
		return nil, false
	}

	return session, true
}

func lookupEntry(c *gin.Context, sessionMgr *sessions.Manager) (history.Entry, bool) {
	session, ok := lookup(c, sessionMgr)
	if !ok {
		return history.Entry{}, false
	}

	entry, ok := session.History.Get(c.Param("entry"))
	if !ok {
		apierrors.NotFound(c, "history entry")
		return history.Entry{}, false
	}

	return entry, true
}
