package tui

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	typeGenerate             = "generate"
	typeCancel               = "cancel"
	typeSessionState         = "session_state"
	typeGenerationStarted    = "generation_started"
	typeFragment             = "fragment"
	typeGenerationComplete   = "generation_complete"
	typeGenerationSuperseded = "generation_superseded"
	typeError                = "error"
	typeServerShutdown       = "server_shutdown"
)

const (
	requestTimeout = 15 * time.Second
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// returns the websocket endpoint for a server base URL
func websocketURL(serverURL, sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}

	u.Path += "/api/v1/ws"

	if sessionID != "" {
		u.RawQuery = url.Values{"session_id": {sessionID}}.Encode()
	}

	return u.String(), nil
}

// wraps code in a markdown fence tagged with the technology's syntax
func fenced(code, tech string) string {
	lang := tech
	switch tech {
	case "react", "":
		lang = "jsx"
	case "angular":
		lang = "typescript"
	case "svelte", "vue":
		lang = "html"
	}

	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```\n"
}

// formats the one-line summary shown below finished output
func formatCompletion(p generationCompletePayload) string {
	parts := []string{
		"technology: " + p.Technology,
		"match: " + p.Match,
	}

	if p.Kind != "" {
		parts = append(parts, "preview: "+p.Kind)
	}

	if p.Entry.Model != "" {
		parts = append(parts, "model: "+p.Entry.Model)
	}

	return strings.Join(parts, " | ")
}
