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
	"encoding/binary"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

const wordSize = 32

// Value is the raw ABI encoded data returned by a read.
type Value []byte

func Uint(v *uint256.Int) Value {
	b := v.Bytes32()
	return b[:]
}

func Uint64(v uint64) Value {
	return Uint(uint256.NewInt(v))
}

func Addr(a common.Address) Value {
	return common.LeftPadBytes(a.Bytes(), wordSize)
}

func Bool(b bool) Value {
	if b {
		return Uint64(1)
	}
	return Uint64(0)
}

// Str encodes a dynamic string the way a contract returns it.
func Str(s string) Value {
	n := len(s)
	out := make([]byte, 2*wordSize+(n+wordSize-1)/wordSize*wordSize)
	out[wordSize-1] = wordSize
	binary.BigEndian.PutUint64(out[2*wordSize-8:2*wordSize], uint64(n))
	copy(out[2*wordSize:], s)
	return out
}

func (v Value) Uint256() (*uint256.Int, error) {
	if len(v) < wordSize {
		return nil, errors.Newf("cannot decode uint256 from %d bytes", len(v))
	}
	return new(uint256.Int).SetBytes(v[:wordSize]), nil
}

func (v Value) Address() (common.Address, error) {
	if len(v) < wordSize {
		return common.Address{}, errors.Newf("cannot decode address from %d bytes", len(v))
	}
	return common.BytesToAddress(v[wordSize-common.AddressLength : wordSize]), nil
}

func (v Value) Bool() (bool, error) {
	u, err := v.Uint256()
	if err != nil {
		return false, err
	}
	return !u.IsZero(), nil
}

func (v Value) Text() (string, error) {
	t, err := abi.NewType("string", "", nil)
	if err != nil {
		return "", err
	}
	out, err := abi.Arguments{{Type: t}}.Unpack(v)
	if err != nil {
		return "", errors.Wrap(err, "cannot decode string")
	}
	return out[0].(string), nil
}

// Selector returns the four byte method identifier of a signature.
func Selector(method string) []byte {
	return crypto.Keccak256([]byte(method))[:4]
}

// EncodeCall packs the selector and the arguments of a method invocation.
func EncodeCall(method string, args []any) ([]byte, error) {
	arguments, err := parseArguments(method)
	if err != nil {
		return nil, err
	}
	if len(arguments) != len(args) {
		return nil, errors.Newf("%v expects %d arguments, got %d", method, len(arguments), len(args))
	}
	converted := make([]any, len(args))
	for i, a := range args {
		converted[i], err = convertArg(arguments[i].Type, a)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d of %v", i, method)
		}
	}
	packed, err := arguments.Pack(converted...)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot pack %v", method)
	}
	return append(Selector(method), packed...), nil
}

func parseArguments(method string) (abi.Arguments, error) {
	open := strings.IndexByte(method, '(')
	end := strings.LastIndexByte(method, ')')
	if open <= 0 || end < open {
		return nil, errors.Newf("malformed method signature %q", method)
	}
	inner := strings.TrimSpace(method[open+1 : end])
	if inner == "" {
		return nil, nil
	}
	var arguments abi.Arguments
	for _, name := range strings.Split(inner, ",") {
		t, err := abi.NewType(strings.TrimSpace(name), "", nil)
		if err != nil {
			return nil, errors.Wrapf(err, "unsupported type in %q", method)
		}
		arguments = append(arguments, abi.Argument{Type: t})
	}
	return arguments, nil
}

func convertArg(t abi.Type, a any) (any, error) {
	switch t.T {
	case abi.UintTy:
		var b *big.Int
		switch v := a.(type) {
		case *uint256.Int:
			b = v.ToBig()
		case uint64:
			b = new(big.Int).SetUint64(v)
		case *big.Int:
			b = v
		default:
			return nil, errors.Newf("cannot use %T as %v", a, t)
		}
		switch t.Size {
		case 8:
			return uint8(b.Uint64()), nil
		case 16:
			return uint16(b.Uint64()), nil
		case 32:
			return uint32(b.Uint64()), nil
		case 64:
			return b.Uint64(), nil
		}
		return b, nil
	case abi.AddressTy:
		if v, ok := a.(common.Address); ok {
			return v, nil
		}
		return nil, errors.Newf("cannot use %T as address", a)
	}
	return a, nil
}
