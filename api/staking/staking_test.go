// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/custodian/api/staking"
	"github.com/vechain/custodian/builtin"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/genesis"
	"github.com/vechain/custodian/test/datagen"
	"github.com/vechain/custodian/test/testnet"
)

func initStakingServer(t *testing.T) (*testnet.Net, *httptest.Server) {
	net := testnet.New(t)
	router := mux.NewRouter()
	staking.New(net.Runtime).Mount(router, "/staking")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return net, ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) // #nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) // #nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func call(caller custodian.Address, collection uint32, tokenID string) *staking.CallRequest {
	return &staking.CallRequest{Caller: caller.String(), Collection: collection, TokenID: tokenID}
}

func TestGetRegistry(t *testing.T) {
	net, ts := initStakingServer(t)

	body, code := httpGet(t, ts.URL+"/staking")
	require.Equal(t, http.StatusOK, code)

	var reg staking.Registry
	require.NoError(t, json.Unmarshal(body, &reg))
	assert.True(t, reg.Initialized)
	assert.Equal(t, "NFTStaking", reg.Name)
	assert.Equal(t, "NSC", reg.Symbol)
	assert.Equal(t, builtin.Staker.Address, reg.Address)
	assert.Equal(t, custodian.StakingPeriod, reg.StakingPeriod)
	assert.Equal(t, custodian.MaxUserPositions, reg.MaxUserPositions)
	assert.Equal(t, "0", reg.TotalReceipts)
	assert.Equal(t, net.Genesis.LaunchTime(), reg.Time)

	require.Len(t, reg.Collections, 2)
	assert.Equal(t, "DevPunks", reg.Collections[0].Name)
	assert.Equal(t, "DAP", reg.Collections[1].Symbol)
	assert.Equal(t, builtin.CollectionAddress(1), reg.Collections[1].Address)
}

func TestStakeAndClaim(t *testing.T) {
	net, ts := initStakingServer(t)
	acc := genesis.DevAccounts()[0].Address
	tokenID := genesis.DevTokenID(0, 0).String()

	body, code := httpPost(t, ts.URL+"/staking/stake", call(acc, 0, tokenID))
	require.Equal(t, http.StatusOK, code, string(body))
	var staked staking.StakeResult
	require.NoError(t, json.Unmarshal(body, &staked))
	assert.Equal(t, "1", staked.ReceiptID)

	body, code = httpGet(t, ts.URL+"/staking/positions/0/"+tokenID)
	require.Equal(t, http.StatusOK, code)
	var pos staking.Position
	require.NoError(t, json.Unmarshal(body, &pos))
	assert.Equal(t, staking.Position{
		Collection: 0,
		TokenID:    tokenID,
		ReceiptID:  "1",
		EndTime:    net.Genesis.LaunchTime() + custodian.StakingPeriod,
		Staker:     acc,
		Active:     true,
	}, pos)

	body, code = httpGet(t, ts.URL+"/staking/users/"+acc.String()+"/positions")
	require.Equal(t, http.StatusOK, code)
	var grouped staking.UserPositions
	require.NoError(t, json.Unmarshal(body, &grouped))
	assert.Equal(t, [][]string{{tokenID}, {}}, grouped.Collections)

	body, code = httpGet(t, ts.URL+"/staking/users/"+acc.String()+"/positions/count")
	require.Equal(t, http.StatusOK, code)
	var count staking.Count
	require.NoError(t, json.Unmarshal(body, &count))
	assert.Equal(t, uint64(1), count.Count)

	body, code = httpGet(t, ts.URL+"/staking/users/"+acc.String()+"/positions/0")
	require.Equal(t, http.StatusOK, code)
	var entry staking.IndexEntry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, staking.IndexEntry{Index: 0, Collection: 0, TokenID: tokenID}, entry)

	_, code = httpGet(t, ts.URL+"/staking/users/"+acc.String()+"/positions/1")
	assert.Equal(t, http.StatusNotFound, code)

	// too early
	_, code = httpPost(t, ts.URL+"/staking/claim", call(acc, 0, tokenID))
	assert.Equal(t, http.StatusBadRequest, code)

	net.Clock.Advance(custodian.StakingPeriod)
	body, code = httpPost(t, ts.URL+"/staking/claim", call(acc, 0, tokenID))
	require.Equal(t, http.StatusOK, code, string(body))
	var claimed staking.ClaimResult
	require.NoError(t, json.Unmarshal(body, &claimed))
	assert.Equal(t, "2", claimed.RewardID)

	_, code = httpPost(t, ts.URL+"/staking/claim", call(acc, 0, tokenID))
	assert.Equal(t, http.StatusConflict, code)

	body, code = httpGet(t, ts.URL+"/staking/receipts/2")
	require.Equal(t, http.StatusOK, code)
	var rcpt staking.Receipt
	require.NoError(t, json.Unmarshal(body, &rcpt))
	assert.Equal(t, staking.Receipt{ID: "2", Owner: acc, Kind: "reward"}, rcpt)

	body, code = httpGet(t, ts.URL+"/staking/receipts/balance/"+acc.String())
	require.Equal(t, http.StatusOK, code)
	var balance staking.Balance
	require.NoError(t, json.Unmarshal(body, &balance))
	assert.Equal(t, uint64(2), balance.Balance)
}

func TestUnstake(t *testing.T) {
	_, ts := initStakingServer(t)
	acc := genesis.DevAccounts()[1].Address
	tokenID := genesis.DevTokenID(1, 3).String()

	_, code := httpPost(t, ts.URL+"/staking/stake", call(acc, 1, tokenID))
	require.Equal(t, http.StatusOK, code)

	_, code = httpPost(t, ts.URL+"/staking/unstake", call(genesis.DevAccounts()[2].Address, 1, tokenID))
	assert.Equal(t, http.StatusForbidden, code)

	body, code := httpPost(t, ts.URL+"/staking/unstake", call(acc, 1, tokenID))
	require.Equal(t, http.StatusOK, code, string(body))

	body, code = httpGet(t, ts.URL+"/staking/positions/1/"+tokenID)
	require.Equal(t, http.StatusOK, code)
	var pos staking.Position
	require.NoError(t, json.Unmarshal(body, &pos))
	assert.False(t, pos.Active)

	// the position receipt went back to the registry
	body, code = httpGet(t, ts.URL+"/staking/receipts/1")
	require.Equal(t, http.StatusOK, code)
	var rcpt staking.Receipt
	require.NoError(t, json.Unmarshal(body, &rcpt))
	assert.Equal(t, builtin.Staker.Address, rcpt.Owner)
	assert.Equal(t, "position", rcpt.Kind)

	_, code = httpPost(t, ts.URL+"/staking/unstake", call(acc, 1, tokenID))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCallErrors(t *testing.T) {
	_, ts := initStakingServer(t)
	acc := genesis.DevAccounts()[0].Address
	tokenID := genesis.DevTokenID(0, 1).String()

	_, code := httpPost(t, ts.URL+"/staking/stake", call(acc, 0, tokenID))
	require.Equal(t, http.StatusOK, code)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"already staked", "/staking/stake", call(acc, 0, tokenID), http.StatusConflict},
		{"not owner", "/staking/stake", call(datagen.RandAddress(), 0, genesis.DevTokenID(0, 2).String()), http.StatusForbidden},
		{"unknown collection", "/staking/stake", call(acc, 7, tokenID), http.StatusBadRequest},
		{"bad token id", "/staking/stake", call(acc, 0, "twelve"), http.StatusBadRequest},
		{"token id overflow", "/staking/stake", call(acc, 0, "0x1"+string(bytes.Repeat([]byte("0"), 64))), http.StatusBadRequest},
		{"bad caller", "/staking/stake", map[string]any{"caller": "0x12", "collection": 0, "tokenId": "1"}, http.StatusBadRequest},
		{"unknown field", "/staking/stake", map[string]any{"caller": acc.String(), "tokenId": "1", "foo": 1}, http.StatusBadRequest},
		{"never staked", "/staking/unstake", call(acc, 1, "77"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, code := httpPost(t, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, code, string(body))
		})
	}
}

func TestQueryErrors(t *testing.T) {
	_, ts := initStakingServer(t)
	acc := genesis.DevAccounts()[0].Address.String()

	tests := []struct {
		path   string
		status int
	}{
		{"/staking/positions/x/1", http.StatusBadRequest},
		{"/staking/positions/0/-1", http.StatusBadRequest},
		{"/staking/users/0xzz/positions", http.StatusBadRequest},
		{"/staking/users/" + acc + "/positions/abc", http.StatusNotFound},
		{"/staking/receipts/0", http.StatusNotFound},
		{"/staking/receipts/" + strconv.Itoa(99), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, code := httpGet(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, code)
		})
	}
}

func TestNeverStakedPosition(t *testing.T) {
	_, ts := initStakingServer(t)

	body, code := httpGet(t, ts.URL+"/staking/positions/1/0x2a")
	require.Equal(t, http.StatusOK, code)
	var pos staking.Position
	require.NoError(t, json.Unmarshal(body, &pos))
	assert.Equal(t, staking.Position{Collection: 1, TokenID: "42", ReceiptID: "0"}, pos)
}
