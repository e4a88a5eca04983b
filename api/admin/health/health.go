// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/custodian/api/utils"
	"github.com/vechain/custodian/logdb"
	"github.com/vechain/custodian/runtime"
	"github.com/vechain/custodian/state"
)

type Status struct {
	Healthy        bool   `json:"healthy"`
	Initialized    bool   `json:"initialized"`
	Time           uint64 `json:"time"`
	NewestEventSeq uint64 `json:"newestEventSeq"`
	EventLogError  string `json:"eventLogError,omitempty"`
}

// Health reports whether the registry is initialized and its event log readable.
type Health struct {
	rt    *runtime.Runtime
	logDB logdb.Reader
}

// New creates the health api. logDB may be nil when the event log is disabled.
func New(rt *runtime.Runtime, logDB logdb.Reader) *Health {
	return &Health{rt, logDB}
}

func (h *Health) Status() (*Status, error) {
	status := &Status{Time: h.rt.LastTime()}
	err := h.rt.View(func(st *state.State) (err error) {
		status.Initialized, err = runtime.Staker(st).IsInitialized()
		return
	})
	if err != nil {
		return nil, err
	}

	healthy := status.Initialized
	if h.logDB != nil {
		seq, err := h.logDB.NewestSeq()
		if err != nil {
			status.EventLogError = err.Error()
			healthy = false
		}
		status.NewestEventSeq = seq
	}
	status.Healthy = healthy
	return status, nil
}

func (h *Health) handleGetHealth(w http.ResponseWriter, _ *http.Request) error {
	status, err := h.Status()
	if err != nil {
		return err
	}
	if !status.Healthy {
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
