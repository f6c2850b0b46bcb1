// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package bridge

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// cappedBuffer keeps at most limit bytes and silently discards the rest,
// so a runaway engine cannot exhaust gateway memory. Writes never fail,
// which keeps the child from blocking on a full pipe.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.limit - c.buf.Len()
	if c.limit <= 0 {
		room = len(p)
	}
	switch {
	case room <= 0:
		c.truncated = c.truncated || len(p) > 0
	case len(p) > room:
		c.buf.Write(p[:room])
		c.truncated = true
	default:
		c.buf.Write(p)
	}
	return len(p), nil
}

func (c *cappedBuffer) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.buf.Bytes())
}

func (c *cappedBuffer) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}

// textDecoder converts engine output from its declared encoding to UTF-8.
type textDecoder struct {
	name string
	enc  encoding.Encoding
}

// newTextDecoder resolves an encoding by its WHATWG/IANA label
// (for example "utf-8", "latin1", "windows-1252", "shift_jis").
func newTextDecoder(name string) (*textDecoder, error) {
	label := strings.TrimSpace(name)
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported engine output encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = label
	}
	return &textDecoder{name: canonical, enc: enc}, nil
}

// decode returns b as UTF-8 text. Invalid sequences become U+FFFD.
func (d *textDecoder) decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("�")))
	}
	return string(out)
}
