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

// Package multicall reads many independent accessors of the system under
// test in a single round trip.
package multicall

import (
	"context"
	"sort"

	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/cockroachdb/errors"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

// Request is a keyed read; the key is the dotted snapshot path the result is stored under.
type Request struct {
	Key  string
	Call state.Call
}

// Results maps request keys to raw values.
type Results map[string]state.Value

// Uint decodes the value stored under key.
func (r Results) Uint(key string) (*uint256.Int, error) {
	v, found := r[key]
	if !found {
		return nil, errors.Newf("no result for %v", key)
	}
	u, err := v.Uint256()
	if err != nil {
		return nil, errors.Wrapf(err, "result %v", key)
	}
	return u, nil
}

// Reader executes batches of read requests.
type Reader struct {
	sub state.Substrate
}

func NewReader(sub state.Substrate) *Reader {
	return &Reader{sub: sub}
}

// Execute runs all requests in one batch. Every request is executed; the
// failures of individual requests are reported together.
func (r *Reader) Execute(ctx context.Context, requests []Request) (Results, error) {
	results, failures, err := r.ExecutePartial(ctx, requests)
	if err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		return nil, JoinFailures(failures)
	}
	return results, nil
}

// ExecutePartial runs all requests in one batch and returns the failed
// requests separately, leaving the decision about them to the caller.
func (r *Reader) ExecutePartial(ctx context.Context, requests []Request) (Results, map[string]error, error) {
	calls := make([]state.Call, len(requests))
	seen := make(map[string]struct{}, len(requests))
	for i, req := range requests {
		if _, dup := seen[req.Key]; dup {
			return nil, nil, errors.Newf("duplicate read request %v", req.Key)
		}
		seen[req.Key] = struct{}{}
		calls[i] = req.Call
	}
	if len(calls) == 0 {
		return Results{}, nil, nil
	}

	out, err := r.sub.ReadBatch(ctx, calls)
	if err != nil {
		return nil, nil, errors.Wrap(err, "multicall failed")
	}
	if len(out) != len(calls) {
		return nil, nil, errors.Newf("multicall returned %d results for %d requests", len(out), len(calls))
	}

	results := make(Results, len(requests))
	failures := make(map[string]error)
	for i, req := range requests {
		if out[i].Err != nil {
			failures[req.Key] = errors.Wrapf(out[i].Err, "read %v", req.Key)
			continue
		}
		results[req.Key] = out[i].Value
	}
	return results, failures, nil
}

// JoinFailures combines per-request failures in key order.
func JoinFailures(failures map[string]error) error {
	keys := maps.Keys(failures)
	sort.Strings(keys)
	errs := make([]error, len(keys))
	for i, k := range keys {
		errs[i] = failures[k]
	}
	return errors.Join(errs...)
}
