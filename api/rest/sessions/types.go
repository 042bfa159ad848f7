package sessions

import (
	"codeberg.org/forgeui/server/api/rest/pagination"
	"codeberg.org/forgeui/server/internal/history"
)

type SessionResponse struct {
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
}

// HistoryResponse lists a session's entries, most recent first
type HistoryResponse struct {
	SessionID  string          `json:"session_id"`
	Entries    []history.Entry `json:"entries"`
	Pagination pagination.Meta `json:"pagination"`
}
