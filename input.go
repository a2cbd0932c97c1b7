/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package gomarc

import (
	"bufio"
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewInput prepares r for format detection and reading.
//
// Gzip and zstd compressed input is detected by its magic number and decompressed transparently.
// The returned reader has room for PushbackBufferSize bytes of lookahead. The closer releases
// decompressor resources; it does not close r.
func NewInput(r io.Reader) (*bufio.Reader, io.Closer, error) {
	br := bufio.NewReaderSize(r, PushbackBufferSize)
	magic, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, nil, err
	}

	switch {
	case len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		log.Debug("detected gzip input")
		g, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return bufio.NewReaderSize(g, PushbackBufferSize), g, nil
	case bytes.Equal(magic, zstdMagic):
		log.Debug("detected zstd input")
		z, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return bufio.NewReaderSize(z, PushbackBufferSize), closerFunc(func() error {
			z.Close()
			return nil
		}), nil
	}
	return br, nopCloser{}, nil
}
