// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package test

import (
	"fmt"
	"time"
)

// Retry calls fn every period until it succeeds or timeout has passed,
// then reports the last failure.
func Retry(fn func() error, period, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("retry timeout, latest err: %w", err)
		}
		time.Sleep(period)
	}
}
