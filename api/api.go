// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/custodian/api/collections"
	"github.com/vechain/custodian/api/events"
	"github.com/vechain/custodian/api/middleware"
	"github.com/vechain/custodian/api/staking"
	"github.com/vechain/custodian/api/subscriptions"
	"github.com/vechain/custodian/log"
	"github.com/vechain/custodian/logdb"
	"github.com/vechain/custodian/metrics"
	"github.com/vechain/custodian/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	LogsLimit            uint64
	SoloMode             bool
	Timeout              time.Duration
}

// New return api router. The returned func closes open websocket sessions.
// logDB may be nil, the /logs api is disabled then.
func New(rt *runtime.Runtime, logDB *logdb.LogDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(rt).
		Mount(router, "/staking")
	collections.New(rt, opts.SoloMode).
		Mount(router, "/collections")
	if logDB != nil {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}
	if opts.Timeout > 0 {
		router.Use(timeoutMiddleware(opts.Timeout))
	}
	if opts.EnableReqLogger != nil {
		router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	return handler.ServeHTTP, subs.Close
}

// timeoutMiddleware bounds the context of plain requests. Websocket sessions are left alone.
func timeoutMiddleware(timeout time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
