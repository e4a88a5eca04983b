// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/elastic/gosigar"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/custodian/builtin"
	"github.com/vechain/custodian/genesis"
	"github.com/vechain/custodian/kv"
	"github.com/vechain/custodian/log"
	"github.com/vechain/custodian/logdb"
	"github.com/vechain/custodian/lvldb"
	"github.com/vechain/custodian/runtime"
	"github.com/vechain/custodian/state"
)

var (
	metaBucket   kv.Bucket = "meta/"
	genesisIDKey           = []byte("genesis-id")
)

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "parse verbosity flag")
	}

	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(lvl))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, level)
	} else {
		fd := os.Stderr.Fd()
		useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return level, nil
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		cli.ShowAppHelp(ctx)
		return nil, errors.Errorf("%s flag not specified", genesisFlag.Name)
	}
	custom, err := genesis.LoadCustomGenesis(path)
	if err != nil {
		return nil, errors.Wrap(err, "load genesis file")
	}
	gene, err := genesis.NewCustomNet(custom)
	if err != nil {
		return nil, errors.Wrap(err, "build genesis")
	}
	return gene, nil
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return "", err
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, instanceDir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	logger.Debug("cache size(MB)", "size", cacheMB)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: 500,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

// normalizeCacheSize keeps the cache between 128MB and half of the physical memory.
func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem", "err", err)
	} else {
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

// stateCacheSize turns the other half of the cache flag into a number of cached storage slots.
func stateCacheSize(ctx *cli.Context) int {
	const slotsPerMB = 4096
	return normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name))) / 2 * slotsPerMB
}

func openLogDB(instanceDir string) (*logdb.LogDB, error) {
	dir := filepath.Join(instanceDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", dir)
	}
	return db, nil
}

// initState opens the registry state in db. An empty db gets the genesis state written,
// a db built from another genesis is refused.
func initState(gene *genesis.Genesis, db kv.Store, cacheSize int) (*state.State, error) {
	meta := metaBucket.NewGetter(db)
	stored, err := meta.Get(genesisIDKey)
	if err != nil && !meta.IsNotFound(err) {
		return nil, errors.Wrap(err, "read genesis id")
	}

	st := state.New(db, cacheSize)
	if err == nil {
		if !bytes.Equal(stored, gene.ID().Bytes()) {
			return nil, errors.Errorf("genesis mismatch: database built from 0x%x, want %v", stored, gene.ID())
		}
		return st, nil
	}

	root, err := gene.Build(st)
	if err != nil {
		return nil, errors.Wrap(err, "build genesis state")
	}
	if root != gene.ID() {
		return nil, errors.Errorf("genesis state root %v does not match id %v", root, gene.ID())
	}
	if err := metaBucket.NewPutter(db).Put(genesisIDKey, gene.ID().Bytes()); err != nil {
		return nil, errors.Wrap(err, "write genesis id")
	}
	logger.Info("genesis state written", "id", gene.ID(), "name", gene.Name())
	return st, nil
}

func printStartupMessage(n *node, rt *runtime.Runtime, apiURL, metricsURL, adminURL string) {
	name := "Custodian"
	if n.solo {
		name = "Custodian solo"
	}

	var collections int
	_ = rt.View(func(st *state.State) error {
		addrs, err := builtin.Staker.WithState(st).Collections()
		collections = len(addrs)
		return err
	})

	info := fmt.Sprintf(`Starting %v %v
    Network      [ %v %v ]
    Registry     [ %v, %d collections ]
    Launch time  [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		name, fullVersion(),
		n.gene.ID(), n.gene.Name(),
		builtin.Staker.Address, collections,
		time.Unix(int64(n.gene.LaunchTime()), 0).UTC(),
		n.instanceDir,
		apiURL)
	if metricsURL != "" {
		info += fmt.Sprintf("    Metrics      [ %v ]\n", metricsURL)
	}
	if adminURL != "" {
		info += fmt.Sprintf("    Admin        [ %v ]\n", adminURL)
	}

	if n.solo {
		info += "    Dev accounts\n"
		for i, a := range genesis.DevAccounts() {
			info += fmt.Sprintf("      %v  tokens %v..%v\n",
				a.Address, genesis.DevTokenID(i, 0), genesis.DevTokenID(i, genesis.DevTokensPerAccount-1))
		}
	}
	fmt.Print(info)
}
