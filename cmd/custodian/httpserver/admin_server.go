// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/custodian/api/admin"
	"github.com/vechain/custodian/api/admin/health"
)

func StartAdminServer(
	addr string,
	logLevel *slog.LevelVar,
	health *health.Health,
	apiLogs *atomic.Bool,
) (string, func(), error) {
	adminHandler := admin.NewHTTPHandler(logLevel, health, apiLogs)

	bound, closeFunc, err := serve(addr, adminHandler, &http.Server{ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second})
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}
	return "http://" + bound.String() + "/admin", closeFunc, nil
}
