// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/custodian/api"
	"github.com/vechain/custodian/api/admin/health"
	"github.com/vechain/custodian/cmd/custodian/httpserver"
	"github.com/vechain/custodian/genesis"
	"github.com/vechain/custodian/log"
	"github.com/vechain/custodian/logdb"
	"github.com/vechain/custodian/lvldb"
	"github.com/vechain/custodian/metrics"
	"github.com/vechain/custodian/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Custodian",
		Usage:     "NFT custody and staking registry",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			skipLogsFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			disableNTPFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "run the dev registry for test & dev",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					persistFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiLogsLimitFlag,
					apiSlowQueriesThresholdFlag,
					apiLog5xxErrorsFlag,
					enableAPILogsFlag,
					verbosityFlag,
					jsonLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	var logDB *logdb.LogDB
	if !ctx.Bool(skipLogsFlag.Name) {
		if logDB, err = openLogDB(instanceDir); err != nil {
			return err
		}
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	}

	return run(exitSignal, ctx, &node{
		gene:        gene,
		mainDB:      mainDB,
		logDB:       logDB,
		logLevel:    logLevel,
		instanceDir: instanceDir,
		checkClock:  !ctx.Bool(disableNTPFlag.Name),
	})
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}
	gene := genesis.NewDevnet()

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, instanceDir); err != nil {
			return err
		}
		if logDB, err = openLogDB(instanceDir); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		instanceDir = "Memory"
		mainDB = lvldb.NewMem()
		if logDB, err = logdb.NewMem(); err != nil {
			mainDB.Close()
			return err
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	return run(exitSignal, ctx, &node{
		gene:        gene,
		mainDB:      mainDB,
		logDB:       logDB,
		logLevel:    logLevel,
		instanceDir: instanceDir,
		solo:        true,
	})
}

type node struct {
	gene        *genesis.Genesis
	mainDB      *lvldb.LevelDB
	logDB       *logdb.LogDB
	logLevel    *slog.LevelVar
	instanceDir string
	solo        bool
	checkClock  bool
}

// run serves the registry until exitSignal is done or a server fails.
func run(exitSignal context.Context, ctx *cli.Context, n *node) error {
	st, err := initState(n.gene, n.mainDB, stateCacheSize(ctx))
	if err != nil {
		return err
	}
	rt := runtime.New(st, n.logDB, runtime.SystemClock, n.gene.LaunchTime())
	defer rt.Close()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(rt, n.logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		SoloMode:             n.solo,
		Timeout:              time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond,
	})
	defer closeSubs()

	apiURL, srvCloser, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	var metricsURL, adminURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}
	if ctx.Bool(enableAdminFlag.Name) {
		var healthLog logdb.Reader
		if n.logDB != nil {
			healthLog = n.logDB
		}
		url, closeFunc, err := httpserver.StartAdminServer(
			ctx.String(adminAddrFlag.Name),
			n.logLevel,
			health.New(rt, healthLog),
			apiLogs,
		)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	printStartupMessage(n, rt, apiURL, metricsURL, adminURL)

	group, groupCtx := errgroup.WithContext(exitSignal)
	if n.checkClock {
		group.Go(func() error {
			watchClockOffset(groupCtx, ntpServer, clockCheckInterval)
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	return group.Wait()
}
