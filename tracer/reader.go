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

package tracer

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

func NewFileReader(filename string) (FileReader, error) {
	stat, err := os.Stat(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not stat file: %s, does it exist?", filename)
	}
	if stat.IsDir() {
		return nil, errors.New("given path to trace file is a directory")
	}
	if stat.Size() == 0 {
		return nil, errors.New("given trace file is empty")
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open trace file: %s", filename)
	}
	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, errors.CombineErrors(
			errors.Wrapf(err, "could not create gzip reader for trace file: %s", filename),
			file.Close())
	}
	return &fileReader{
		reader: bufio.NewReader(gzipReader),
		closer: &fileCloser{gzip: gzipReader, file: file},
	}, nil
}

//go:generate mockgen -source reader.go -destination reader_mock.go -package tracer

type FileReader interface {
	// Read returns the next record or io.EOF after the last one.
	Read() (Record, error)
	Close() error
}

// ReadBuffer is a wrapper around necessary interfaces for reading data to a file for mocking purposes.
type ReadBuffer interface {
	ReadString(delim byte) (string, error)
}

type fileReader struct {
	reader ReadBuffer
	closer io.Closer
}

func (f *fileReader) Read() (Record, error) {
	line, err := f.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return Record{}, errors.Wrap(err, "cannot read trace")
		}
		if line == "" {
			return Record{}, io.EOF
		}
	}
	return ParseRecord(strings.TrimSuffix(line, "\n"))
}

func (f *fileReader) Close() error {
	return f.closer.Close()
}

// ReadAll reads the remaining records of a trace.
func ReadAll(r FileReader) ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
