// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// serve runs handler on a new listener at addr. The returned func stops the server and waits for it.
func serve(addr string, handler http.Handler, srv *http.Server) (net.Addr, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	srv.Handler = handler

	var goes sync.WaitGroup
	goes.Go(func() {
		srv.Serve(listener)
	})
	return listener.Addr(), func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// StartAPIServer serves the registry API at addr.
func StartAPIServer(addr string, handler http.Handler) (string, func(), error) {
	// no write timeout, websocket sessions are long lived
	bound, closeFunc, err := serve(addr, handler, &http.Server{ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second})
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	return "http://" + bound.String() + "/", closeFunc, nil
}
