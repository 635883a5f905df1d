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

package rewards

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var entryPrefix = []byte("re")

// storedEntry is the persisted form of an Entry.
type storedEntry struct {
	CurrentDeposited *big.Int
	LastUpdated      uint64
	ShareSeconds     *big.Int
}

// Store persists ledger entries in a leveldb database.
type Store struct {
	db *leveldb.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open ledger db %v", path)
	}
	return &Store{db: db}, nil
}

func entryKey(addr common.Address) []byte {
	return append(append([]byte{}, entryPrefix...), addr.Bytes()...)
}

func (s *Store) Put(e Entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}
	return s.db.Put(entryKey(e.Address), data, nil)
}

// Get returns the entry of addr; found is false if none was stored.
func (s *Store) Get(addr common.Address) (e Entry, found bool, err error) {
	data, err := s.db.Get(entryKey(addr), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e, err = decodeEntry(addr, data)
	return e, err == nil, err
}

// Save stores every entry of the ledger in one batch.
func (s *Store) Save(l *Ledger) error {
	batch := new(leveldb.Batch)
	for _, e := range l.Entries() {
		data, err := encodeEntry(e)
		if err != nil {
			return err
		}
		batch.Put(entryKey(e.Address), data)
	}
	return s.db.Write(batch, nil)
}

// Load rebuilds a ledger from all stored entries.
func (s *Store) Load() (*Ledger, error) {
	l := NewLedger()
	iter := s.db.NewIterator(util.BytesPrefix(entryPrefix), nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		if len(key) != len(entryPrefix)+common.AddressLength {
			return nil, errors.Newf("malformed ledger key %x", key)
		}
		addr := common.BytesToAddress(key[len(entryPrefix):])
		e, err := decodeEntry(addr, iter.Value())
		if err != nil {
			return nil, err
		}
		l.entries[addr] = &e
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "cannot iterate ledger db")
	}
	return l, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func encodeEntry(e Entry) ([]byte, error) {
	data, err := rlp.EncodeToBytes(storedEntry{
		CurrentDeposited: e.CurrentDeposited.ToBig(),
		LastUpdated:      e.LastUpdated,
		ShareSeconds:     e.ShareSeconds.ToBig(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot encode entry of %v", e.Address.Hex())
	}
	return data, nil
}

func decodeEntry(addr common.Address, data []byte) (Entry, error) {
	var stored storedEntry
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return Entry{}, errors.Wrapf(err, "cannot decode entry of %v", addr.Hex())
	}
	deposited, overflow := uint256.FromBig(stored.CurrentDeposited)
	if overflow {
		return Entry{}, errors.Newf("deposit of %v exceeds 256 bits", addr.Hex())
	}
	shareSeconds, overflow := uint256.FromBig(stored.ShareSeconds)
	if overflow {
		return Entry{}, errors.Newf("share-seconds of %v exceed 256 bits", addr.Hex())
	}
	return Entry{Address: addr, CurrentDeposited: deposited, LastUpdated: stored.LastUpdated, ShareSeconds: shareSeconds}, nil
}
