// Copyright 2025 Sonic Labs
// This file is part of Aida Testing Infrastructure for Sonic
//
// Aida is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Aida is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Aida. If not, see <http://www.gnu.org/licenses/>.

package state

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	defaultImpersonationPrefix = "anvil"
	receiptPollInterval        = 100 * time.Millisecond
	receiptPollAttempts        = 100
)

// RpcSubstrate drives a disposable development chain (anvil, hardhat or
// ganache fork) over JSON-RPC.
type RpcSubstrate struct {
	client *rpc.Client
	prefix string
	// shift is the time advanced since the last mined block.
	shift uint64
}

type RpcOption func(*RpcSubstrate)

// WithImpersonationPrefix selects the cheat-code namespace, e.g. "hardhat".
func WithImpersonationPrefix(prefix string) RpcOption {
	return func(s *RpcSubstrate) {
		s.prefix = prefix
	}
}

// DialRpcSubstrate connects to the node at the given url.
func DialRpcSubstrate(ctx context.Context, url string, opts ...RpcOption) (*RpcSubstrate, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot dial %v", url)
	}
	return NewRpcSubstrate(client, opts...), nil
}

func NewRpcSubstrate(client *rpc.Client, opts ...RpcOption) *RpcSubstrate {
	s := &RpcSubstrate{client: client, prefix: defaultImpersonationPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type callArgs struct {
	From *common.Address `json:"from,omitempty"`
	To   common.Address  `json:"to"`
	Data hexutil.Bytes   `json:"data"`
}

type rpcLog struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

type rpcReceipt struct {
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	Logs        []rpcLog       `json:"logs"`
}

type rpcBlock struct {
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

func (s *RpcSubstrate) Read(ctx context.Context, call Call) (Value, error) {
	results, err := s.ReadBatch(ctx, []Call{call})
	if err != nil {
		return nil, err
	}
	return results[0].Value, results[0].Err
}

// ReadBatch sends all calls as one JSON-RPC batch.
func (s *RpcSubstrate) ReadBatch(ctx context.Context, calls []Call) ([]Result, error) {
	results := make([]Result, len(calls))
	outputs := make([]hexutil.Bytes, len(calls))
	batch := make([]rpc.BatchElem, 0, len(calls))
	index := make([]int, 0, len(calls))
	for i, c := range calls {
		data, err := EncodeCall(c.Method, c.Args)
		if err != nil {
			results[i].Err = errors.Wrapf(err, "%v", c)
			continue
		}
		batch = append(batch, rpc.BatchElem{
			Method: "eth_call",
			Args:   []any{callArgs{To: c.Target, Data: data}, "latest"},
			Result: &outputs[i],
		})
		index = append(index, i)
	}
	if len(batch) > 0 {
		if err := s.client.BatchCallContext(ctx, batch); err != nil {
			return nil, errors.Wrap(err, "batch read failed")
		}
	}
	for j, elem := range batch {
		i := index[j]
		if elem.Error != nil {
			results[i].Err = classify(errors.Wrapf(elem.Error, "%v", calls[i]))
			continue
		}
		if len(outputs[i]) == 0 {
			results[i].Err = errors.Wrapf(ErrUnknownMethod, "%v returned no data", calls[i])
			continue
		}
		results[i].Value = Value(outputs[i])
	}
	return results, nil
}

// Send impersonates tx.From, submits the transaction and waits for its receipt.
func (s *RpcSubstrate) Send(ctx context.Context, tx Tx) (*Receipt, error) {
	data, err := EncodeCall(tx.Method, tx.Args)
	if err != nil {
		return nil, err
	}
	if err := s.client.CallContext(ctx, nil, s.prefix+"_impersonateAccount", tx.From); err != nil {
		return nil, errors.Wrapf(err, "cannot impersonate %v", tx.From.Hex())
	}
	defer func() {
		_ = s.client.CallContext(ctx, nil, s.prefix+"_stopImpersonatingAccount", tx.From)
	}()

	from := tx.From
	var hash common.Hash
	if err := s.client.CallContext(ctx, &hash, "eth_sendTransaction", callArgs{From: &from, To: tx.To, Data: data}); err != nil {
		return nil, classify(errors.Wrapf(err, "%v", tx))
	}
	receipt, err := s.waitForReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status == 0 {
		return nil, errors.Wrapf(ErrReverted, "%v in tx %v", tx, hash.Hex())
	}
	s.shift = 0
	out := &Receipt{Block: uint64(receipt.BlockNumber)}
	for _, l := range receipt.Logs {
		out.Logs = append(out.Logs, Log{Address: l.Address, Topics: l.Topics, Data: l.Data})
	}
	if out.Time, err = s.blockTime(ctx, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RpcSubstrate) waitForReceipt(ctx context.Context, hash common.Hash) (*rpcReceipt, error) {
	for range receiptPollAttempts {
		var receipt *rpcReceipt
		if err := s.client.CallContext(ctx, &receipt, "eth_getTransactionReceipt", hash); err != nil {
			return nil, errors.Wrapf(err, "cannot fetch receipt of %v", hash.Hex())
		}
		if receipt != nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
	return nil, errors.Newf("transaction %v was not mined", hash.Hex())
}

func (s *RpcSubstrate) AdvanceTime(ctx context.Context, seconds uint64) error {
	if err := s.client.CallContext(ctx, nil, "evm_increaseTime", seconds); err != nil {
		return errors.Wrap(err, "cannot advance time")
	}
	s.shift += seconds
	return nil
}

func (s *RpcSubstrate) MineBlock(ctx context.Context) error {
	if err := s.client.CallContext(ctx, nil, "evm_mine"); err != nil {
		return errors.Wrap(err, "cannot mine block")
	}
	s.shift = 0
	return nil
}

func (s *RpcSubstrate) CurrentHeight(ctx context.Context) (uint64, error) {
	var height hexutil.Uint64
	if err := s.client.CallContext(ctx, &height, "eth_blockNumber"); err != nil {
		return 0, errors.Wrap(err, "cannot read block number")
	}
	return uint64(height), nil
}

// CurrentTime is the latest block time plus the time advanced since.
func (s *RpcSubstrate) CurrentTime(ctx context.Context) (uint64, error) {
	t, err := s.blockTime(ctx, "latest")
	if err != nil {
		return 0, err
	}
	return t + s.shift, nil
}

func (s *RpcSubstrate) blockTime(ctx context.Context, block string) (uint64, error) {
	var b *rpcBlock
	if err := s.client.CallContext(ctx, &b, "eth_getBlockByNumber", block, false); err != nil {
		return 0, errors.Wrapf(err, "cannot read block %v", block)
	}
	if b == nil {
		return 0, errors.Newf("block %v not found", block)
	}
	return uint64(b.Timestamp), nil
}

func (s *RpcSubstrate) Close() error {
	s.client.Close()
	return nil
}

// classify marks node errors reporting a revert with ErrReverted.
func classify(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "revert") {
		return errors.Wrapf(ErrReverted, "%v", err)
	}
	return err
}
