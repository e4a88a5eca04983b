// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/custodian/api/events"
	"github.com/vechain/custodian/api/utils"
	"github.com/vechain/custodian/log"
	"github.com/vechain/custodian/logdb"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 7 / 10

	eventBufferSize = 64
)

// EventSource publishes committed registry events.
type EventSource interface {
	SubscribeEvents(ch chan<- *logdb.Event) event.Subscription
}

type Subscriptions struct {
	source   EventSource
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates the subscriptions api. allowedOrigins lists the origins websocket
// upgrades are accepted from, "*" accepts any.
func New(source EventSource, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		source: source,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func parseCriteria(req *http.Request) (*logdb.EventCriteria, error) {
	query := req.URL.Query()
	criteria := &logdb.EventCriteria{}

	if s := query.Get("kind"); s != "" {
		kind := logdb.EventKind(s)
		if !kind.Valid() {
			return nil, errors.Errorf("kind: unknown value %q", s)
		}
		criteria.Kind = &kind
	}
	if s := query.Get("staker"); s != "" {
		staker, err := utils.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "staker")
		}
		criteria.Staker = &staker
	}
	if s := query.Get("collection"); s != "" {
		index, err := utils.ParseIndex(s)
		if err != nil {
			return nil, errors.WithMessage(err, "collection")
		}
		criteria.Collection = &index
	}
	if s := query.Get("tokenId"); s != "" {
		id, err := utils.ParseTokenID(s)
		if err != nil {
			return nil, errors.WithMessage(err, "tokenId")
		}
		criteria.TokenID = id
	}
	return criteria, nil
}

func (s *Subscriptions) handleSubjectEvent(w http.ResponseWriter, req *http.Request) error {
	criteria, err := parseCriteria(req)
	if err != nil {
		return utils.BadRequest(err)
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		logger.Debug("upgrade failed", "error", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	ch := make(chan *logdb.Event, eventBufferSize)
	sub := s.source.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	closed := make(chan struct{})
	go s.readLoop(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-ch:
			if !criteria.Match(ev) {
				continue
			}
			if err := s.write(conn, events.ConvertEvent(ev)); err != nil {
				logger.Debug("failed to write event", "error", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Debug("failed to write ping", "error", err)
				return nil
			}
		case err := <-sub.Err():
			if err != nil {
				logger.Debug("subscription failed", "error", err)
			}
			s.closeConn(conn, websocket.CloseInternalServerErr, "")
			return nil
		case <-s.done:
			s.closeConn(conn, websocket.CloseGoingAway, "server closing")
			return nil
		case <-closed:
			return nil
		}
	}
}

// readLoop consumes control frames until the peer goes away.
func (s *Subscriptions) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriptions) write(conn *websocket.Conn, msg any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// Close ends all open websocket sessions and waits for their handlers to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubjectEvent))
}
