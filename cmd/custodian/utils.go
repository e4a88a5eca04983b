// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	goruntime "runtime"
	"syscall"
	"time"

	"github.com/beevik/ntp"
)

const (
	ntpServer          = "pool.ntp.org"
	clockCheckInterval = 10 * time.Minute
	// staking periods are counted in seconds, drift beyond this is reported
	maxClockOffset = 5 * time.Second
)

// handleExitSignal returns a context done on the first interrupt or terminate signal.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("invalid value %d, exceeds max int", val)
	}
	return int(val), nil
}

// queryClockOffset is replaced in tests.
var queryClockOffset = func(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

func checkClockOffset(server string) {
	offset, err := queryClockOffset(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if offset.Abs() > maxClockOffset {
		logger.Warn("clock offset detected, position end times may be off", "offset", offset)
	}
}

// watchClockOffset compares the local clock against server every interval until ctx is done.
func watchClockOffset(ctx context.Context, server string, interval time.Duration) {
	checkClockOffset(server)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkClockOffset(server)
		}
	}
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch goruntime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.custodian")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.custodian")
		default:
			return filepath.Join(home, ".org.vechain.custodian")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
