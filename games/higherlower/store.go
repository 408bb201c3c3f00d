/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"fmt"
	"time"
)

// binding ties a connection to a role in a session. An empty playerID is the
// host role.
type binding struct {
	code     string
	playerID string
}

// Store maps codes to live sessions and indexes which connection is bound to
// which role. It is owned by the engine loop and never locked.
type Store struct {
	sessions map[string]*Session
	conns    map[string]map[binding]struct{}
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		conns:    make(map[string]map[binding]struct{}),
	}
}

// Create inserts a new session bound to hostConnID.
func (s *Store) Create(code, hostConnID, hostName string, now time.Time) (*Session, error) {
	if _, exists := s.sessions[code]; exists {
		return nil, fmt.Errorf("session %s already exists", code)
	}

	sess := newSession(code, "", hostName, now)
	s.sessions[code] = sess
	s.bindHost(sess, hostConnID)

	return sess, nil
}

func (s *Store) Get(code string) (*Session, bool) {
	sess, ok := s.sessions[code]
	return sess, ok
}

func (s *Store) Exists(code string) bool {
	_, ok := s.sessions[code]
	return ok
}

func (s *Store) Len() int {
	return len(s.sessions)
}

// Delete removes the session and every binding that points into it. The code
// is free for reuse as soon as Delete returns.
func (s *Store) Delete(code string) (*Session, bool) {
	sess, ok := s.sessions[code]
	if !ok {
		return nil, false
	}

	s.unbind(sess.HostConnID, binding{code: code})
	for _, p := range sess.Players {
		s.unbind(p.ConnID, binding{code: code, playerID: p.ID})
	}

	delete(s.sessions, code)

	return sess, true
}

func (s *Store) bindHost(sess *Session, connID string) {
	s.unbind(sess.HostConnID, binding{code: sess.Code})
	sess.HostConnID = connID
	s.bind(connID, binding{code: sess.Code})
}

func (s *Store) unbindHost(sess *Session) {
	s.unbind(sess.HostConnID, binding{code: sess.Code})
	sess.HostConnID = ""
}

func (s *Store) bindPlayer(sess *Session, p *Player, connID string) {
	s.unbind(p.ConnID, binding{code: sess.Code, playerID: p.ID})
	p.ConnID = connID
	s.bind(connID, binding{code: sess.Code, playerID: p.ID})
}

// release drops every binding held by connID and returns them.
func (s *Store) release(connID string) []binding {
	held, ok := s.conns[connID]
	if !ok {
		return nil
	}
	delete(s.conns, connID)

	out := make([]binding, 0, len(held))
	for b := range held {
		out = append(out, b)
	}
	return out
}

func (s *Store) bind(connID string, b binding) {
	if connID == "" {
		return
	}

	held, ok := s.conns[connID]
	if !ok {
		held = make(map[binding]struct{})
		s.conns[connID] = held
	}
	held[b] = struct{}{}
}

func (s *Store) unbind(connID string, b binding) {
	if connID == "" {
		return
	}

	held, ok := s.conns[connID]
	if !ok {
		return
	}
	delete(held, b)
	if len(held) == 0 {
		delete(s.conns, connID)
	}
}
