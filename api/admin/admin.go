// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/custodian/api/admin/apilogs"
	"github.com/vechain/custodian/api/admin/health"
	"github.com/vechain/custodian/api/admin/loglevel"
)

// NewHTTPHandler serves the operator endpoints under /admin.
func NewHTTPHandler(logLevel *slog.LevelVar, health *health.Health, apiLogsToggle *atomic.Bool) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(sub, "/loglevel")
	health.Mount(sub, "/health")
	apilogs.New(apiLogsToggle).Mount(sub, "/apilogs")

	return handlers.CompressHandler(router).ServeHTTP
}
