// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
		level  string
		errMsg string
	}{
		{"get", http.MethodGet, "", http.StatusOK, "INFO", ""},
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, "DEBUG", ""},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, "ERROR+4", ""},
		{"unknown level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, "", "Invalid verbosity level"},
		{"unknown field", http.MethodPost, `{"verbosity":3}`, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var level slog.LevelVar
			level.Set(slog.LevelInfo)

			router := mux.NewRouter()
			New(&level).Mount(router, "/admin/loglevel")

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, "/admin/loglevel", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rr.Code)

			if tt.level != "" {
				var res Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
				assert.Equal(t, tt.level, res.CurrentLevel)
				assert.Equal(t, tt.level, level.Level().String())
				return
			}
			assert.Equal(t, "INFO", level.Level().String())
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, strings.TrimSpace(rr.Body.String()))
			}
		})
	}
}
