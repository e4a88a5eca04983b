// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/vechain/custodian/metrics"
)

var (
	metricCallCount       = metrics.LazyLoadCounterVec("runtime_call_count", []string{"op", "result"})
	metricCallDuration    = metrics.LazyLoadHistogramVec("runtime_call_duration_ms", []string{"op"}, metrics.BucketCalls)
	metricActivePositions = metrics.LazyLoadGauge("staker_active_positions")
)
