/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Seednode/higherlower/games/higherlower"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const commandTimeout = 5 * time.Second

// request is a single client frame.
type request struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type ack struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	OK        bool   `json:"ok"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

type command func(ctx context.Context, engine *higherlower.Engine, connID string, payload json.RawMessage) (any, error)

var (
	errUnknownCommand = &higherlower.Error{Kind: higherlower.KindValidation, Message: "Unknown command type."}
	errMalformed      = &higherlower.Error{Kind: higherlower.KindValidation, Message: "Malformed message."}
)

var commands = map[string]command{
	"create_session": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.CreateSessionInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return e.CreateSession(ctx, &in)
	},
	"join": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.JoinInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return e.Join(ctx, &in)
	},
	"lock": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.LockInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return nil, e.Lock(ctx, &in)
	},
	"start_game": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.StartGameInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return nil, e.StartGame(ctx, &in)
	},
	"start_round": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.StartRoundInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return nil, e.StartRound(ctx, &in)
	},
	"submit_guess": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.SubmitGuessInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return nil, e.SubmitGuess(ctx, &in)
	},
	"resolve_round": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.ResolveRoundInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return e.ResolveRound(ctx, &in)
	},
	"host_reconnect": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.HostReconnectInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return e.HostReconnect(ctx, &in)
	},
	"player_reconnect": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.PlayerReconnectInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return e.PlayerReconnect(ctx, &in)
	},
	"end_game": func(ctx context.Context, e *higherlower.Engine, connID string, payload json.RawMessage) (any, error) {
		var in higherlower.EndGameInput
		if err := decode(payload, &in); err != nil {
			return nil, err
		}
		in.ConnID = connID

		return nil, e.EndGame(ctx, &in)
	},
}

// decode leaves in untouched for an absent payload so the validator reports
// the missing fields.
func decode(payload json.RawMessage, in any) error {
	if len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, in); err != nil {
		return &higherlower.Error{Kind: higherlower.KindValidation, Message: "Invalid payload."}
	}

	return nil
}

// dispatch runs one frame from connID. Every frame except a heartbeat gets
// exactly one ack.
func dispatch(ctx context.Context, cfg *Config, hub *Hub, engine *higherlower.Engine, connID string, frame []byte) {
	var req request
	if err := json.Unmarshal(frame, &req); err != nil {
		hub.reply(connID, ack{Type: "ack", Error: errMalformed.Message})

		return
	}

	if req.Type == "heartbeat" {
		var in higherlower.HeartbeatInput
		if decode(req.Payload, &in) == nil {
			engine.Heartbeat(ctx, &in)
		}

		return
	}

	reply := ack{Type: "ack", RequestID: req.RequestID}

	run, ok := commands[req.Type]
	if !ok {
		reply.Error = errUnknownCommand.Message
		hub.reply(connID, reply)

		return
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	data, err := run(ctx, engine, connID, req.Payload)
	if err != nil {
		reply.Error = userMessage(cfg, req.Type, err)
		hub.reply(connID, reply)

		return
	}

	reply.OK = true
	reply.Data = data

	hub.reply(connID, reply)
}

// userMessage hides anything that is not a domain error behind the generic
// internal error text.
func userMessage(cfg *Config, kind string, err error) string {
	var e *higherlower.Error
	if errors.As(err, &e) {
		if e.Kind == higherlower.KindInternal {
			logf(cfg, "ERROR: %s: %v", kind, err)
		}

		return e.Message
	}

	logf(cfg, "ERROR: %s: %v", kind, err)

	return higherlower.ErrInternal.Message
}

func serveWebSocket(cfg *Config, hub *Hub, engine *higherlower.Engine, upgrader *websocket.Upgrader) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Upgrading connection from %s: %v", realIP(r), err)

			return
		}

		client := hub.register(conn)

		logf(cfg, "SERVE: Connection %s opened from %s", client.id, realIP(r))

		ctx := context.WithoutCancel(r.Context())

		go client.writePump()

		client.readPump(func(frame []byte) {
			dispatch(ctx, cfg, hub, engine, client.id, frame)
		})

		hub.unregister(client)

		disconnectCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()

		engine.Disconnect(disconnectCtx, client.id)

		logf(cfg, "SERVE: Connection %s closed", client.id)
	}
}
