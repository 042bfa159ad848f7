package websocket

import (
	"context"
	"time"

	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/generator"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/logger"
	"codeberg.org/forgeui/server/internal/sessions"
)

// handles generate messages: streams fragments to the session, then sends
// the extracted code and its preview. a newer generate or a cancel aborts
// the run and only generation_superseded is sent for it
func GenerateHandler(gen *generator.Generator, sessionMgr *sessions.Manager, timeout time.Duration) MessageHandler {
	return func(hub *Hub, client *Client, msg *Message) error {
		// check rate limit
		if !client.checkGenerateRateLimit() {
			client.SendError("too_many_requests", "too many generation requests. maximum 10 per minute.", "")
			return ErrRateLimitExceeded
		}

		// parse payload
		var payload GeneratePayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			client.SendError("validation_error", "failed to parse generate request", err.Error())
			return err
		}

		req := generator.Request{
			Prompt:      payload.Prompt,
			Technology:  payload.Technology,
			Model:       payload.Model,
			Temperature: payload.Temperature,
		}

		if err := req.Normalize(); err != nil {
			client.SendError("validation_error", "invalid generate request", err.Error())
			return err
		}

		ctx, tok, err := sessionMgr.Begin(context.Background(), client.SessionID, timeout)
		if err != nil {
			client.SendError("session_not_found", "session is not available", err.Error())
			return err
		}

		model := req.Model
		if model == "" {
			model = gen.DefaultModel()
		}

		send(hub, client, TypeGenerationStarted, GenerationStartedPayload{
			Generation: tok.Generation,
			Prompt:     req.Prompt,
			Technology: req.Technology,
			Model:      model,
		})

		logger.Info("generation started",
			"client_id", client.ID,
			"session_id", client.SessionID,
			"generation", tok.Generation,
			"technology", req.Technology,
		)

		result, runErr := gen.Run(ctx, req, func(fragment string) {
			// fragments of a superseded run are dropped
			if !sessionMgr.IsCurrent(tok) {
				return
			}

			send(hub, client, TypeFragment, FragmentPayload{
				Generation: tok.Generation,
				Text:       fragment,
			})
		})

		var entry *history.Entry
		if runErr == nil {
			entry = &result.Entry
		}

		if !sessionMgr.Finish(tok, entry) {
			reason := sessions.Reason(ctx)

			send(hub, client, TypeGenerationSuperseded, GenerationSupersededPayload{
				Generation: tok.Generation,
				Reason:     reason,
			})

			logger.Info("generation superseded",
				"session_id", client.SessionID,
				"generation", tok.Generation,
				"reason", reason,
			)

			return nil
		}

		if runErr != nil {
			_, response := apierrors.PipelineResponse(runErr)
			client.sendErrorResponse(response)
			return runErr
		}

		complete := GenerationCompletePayload{
			Generation: tok.Generation,
			Code:       result.Code,
			Technology: result.Snippet.Technology,
			Match:      string(result.Snippet.Match),
			Fallback:   result.Snippet.Fallback(),
			Document:   result.Document,
			Entry:      result.Entry,
		}

		if result.Preview != nil {
			complete.Kind = string(result.Preview.Kind)
		}

		if result.PreviewErr != nil {
			_, response := apierrors.PipelineResponse(result.PreviewErr)
			complete.PreviewError = &response
		}

		send(hub, client, TypeGenerationComplete, complete)

		logger.Info("generation complete",
			"session_id", client.SessionID,
			"generation", tok.Generation,
			"match", result.Snippet.Match,
			"preview_error", result.PreviewErr != nil,
		)

		return nil
	}
}

// handles cancel messages by aborting the run in flight
func CancelHandler(sessionMgr *sessions.Manager) MessageHandler {
	return func(_ *Hub, client *Client, _ *Message) error {
		if !sessionMgr.Cancel(client.SessionID) {
			client.SendError("bad_request", "no generation in progress", "")
			return ErrNothingToCancel
		}

		return nil
	}
}

// handles ping messages from clients (keep-alive)
func PingHandler() MessageHandler {
	return func(_ *Hub, client *Client, _ *Message) error {
		// respond with pong
		pongMsg, err := NewMessage(TypePong, client.SessionID, nil)
		if err != nil {
			return err
		}
		client.Send(pongMsg) //nolint:errcheck,gosec // best-effort pong
		return nil
	}
}

// broadcasts a typed message to every client of the sender's session
func send(hub *Hub, client *Client, msgType string, payload any) {
	msg, err := NewMessage(msgType, client.SessionID, payload)
	if err != nil {
		logger.ErrorErr(err, "failed to create message",
			"message_type", msgType,
			"session_id", client.SessionID,
		)
		return
	}

	hub.BroadcastToSession(client.SessionID, msg, "")
}
