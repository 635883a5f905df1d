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

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

// NewFileWriter creates a new trace file. An existing file is never overwritten.
func NewFileWriter(filename string) (FileWriter, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return nil, errors.Newf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	gzipWriter := gzip.NewWriter(file)
	return &fileWriter{
		buffer: bufio.NewWriter(gzipWriter),
		closer: &fileCloser{gzip: gzipWriter, file: file},
	}, nil
}

//go:generate mockgen -source writer.go -destination writer_mock.go -package tracer

type FileWriter interface {
	// Write appends one record to the trace.
	Write(r Record) error
	Close() error
}

// WriteBuffer is a wrapper around necessary interfaces for writing data to a file for mocking purposes.
type WriteBuffer interface {
	io.StringWriter
	Flush() error
}

type fileWriter struct {
	buffer WriteBuffer
	closer io.Closer
}

func (f *fileWriter) Write(r Record) error {
	if _, err := f.buffer.WriteString(r.format()); err != nil {
		return errors.Wrapf(err, "error writing record of round %d", r.Round)
	}
	return nil
}

func (f *fileWriter) Close() error {
	// Flush the buffer to ensure all data is written to the file
	// then close the file
	return errors.Join(f.buffer.Flush(), f.closer.Close())
}

// fileCloser finishes the gzip stream before closing the file below it.
type fileCloser struct {
	gzip io.Closer
	file io.Closer
}

func (c *fileCloser) Close() error {
	return errors.Join(c.gzip.Close(), c.file.Close())
}
