// Copyright 2017 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mp3

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/soundkit/mp3dec/internal/consts"
	"github.com/soundkit/mp3dec/internal/frame"
	"github.com/soundkit/mp3dec/internal/reservoir"
)

// id3v2HeaderSize is the fixed size of an ID3v2 tag header itself, which
// precedes the synchsafe body-size field read from the stream. A naive
// transliteration of the synchsafe formula uses the body size alone as the
// byte offset to skip, under-skipping every stream that carries a tag by
// exactly this many bytes.
const id3v2HeaderSize = 10

type source struct {
	reader io.ReadCloser
	buf    []byte
	pos    int64
	log    zerolog.Logger
}

// newSource wraps r with a silent-by-default logger; callers that want
// diagnostics can reassign log after construction.
func newSource(r io.ReadCloser) *source {
	return &source{reader: r, log: zerolog.Nop()}
}

func (s *source) Seek(position int64, whence int) (int64, error) {
	seeker, ok := s.reader.(io.Seeker)
	if !ok {
		panic("mp3: source must be io.Seeker")
	}
	s.buf = nil
	n, err := seeker.Seek(position, whence)
	if err != nil {
		return 0, err
	}
	s.pos = n
	return n, nil
}

func (s *source) Close() error {
	s.buf = nil
	return s.reader.Close()
}

// skipTags consumes a leading ID3v1 "TAG" trailer-style marker (unused at
// stream start in practice, but harmless to check) or an ID3v2 header,
// advancing past its declared size.
func (s *source) skipTags() error {
	buf := make([]byte, 3)
	if _, err := s.ReadFull(buf); err != nil {
		return err
	}
	switch string(buf) {
	case "TAG":
		buf := make([]byte, 125)
		if _, err := s.ReadFull(buf); err != nil {
			return err
		}
	case "ID3":
		// Skip version (2 bytes) and flags (1 byte).
		buf := make([]byte, 3)
		if _, err := s.ReadFull(buf); err != nil {
			return err
		}
		buf = make([]byte, 4)
		n, err := s.ReadFull(buf)
		if err != nil {
			return err
		}
		if n != 4 {
			return nil
		}
		bodySize := (uint32(buf[0]) << 21) | (uint32(buf[1]) << 14) |
			(uint32(buf[2]) << 7) | uint32(buf[3])
		size := id3v2HeaderSize + int(bodySize) - 3 /* "ID3" */ - 3 /* version+flags */ - 4 /* size field */
		if size < 0 {
			size = 0
		}
		buf = make([]byte, size)
		if _, err := s.ReadFull(buf); err != nil {
			return err
		}
	default:
		s.Unread(buf)
	}
	return nil
}

func (s *source) rewind() error {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.pos = 0
	s.buf = nil
	return nil
}

func (s *source) Unread(buf []byte) {
	s.buf = append(s.buf, buf...)
	s.pos -= int64(len(buf))
}

func (s *source) ReadFull(buf []byte) (int, error) {
	read := 0
	if s.buf != nil {
		read = copy(buf, s.buf)
		if len(s.buf) > read {
			s.buf = s.buf[read:]
		} else {
			s.buf = nil
		}
		if len(buf) == read {
			return read, nil
		}
	}

	n, err := io.ReadFull(s.reader, buf[read:])
	if err != nil {
		// Allow if all data can't be read. This is common at end of stream.
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
	}
	s.pos += int64(n)
	return n + read, err
}

// readNextFrame decodes the next frame's header, side-info and main data,
// appending main-data bytes to res regardless of whether this frame's
// granules end up decodable (the bit reservoir may not be primed yet).
func (s *source) readNextFrame(prev *frame.Frame, res *reservoir.Reservoir) (f *frame.Frame, startPosition int64, err error) {
	f, pos, err := frame.Read(s, s.pos, prev, res)
	if err != nil {
		if _, ok := err.(*consts.EndOfStream); ok {
			return nil, 0, io.EOF
		}
		return nil, 0, errors.Wrap(err, "mp3: readNextFrame")
	}
	return f, pos, nil
}
