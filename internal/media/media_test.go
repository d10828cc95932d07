// Copyright 2025 Umpire Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package media

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrameRate(t *testing.T) {
	fps, ok := parseFrameRate("30000/1001")
	assert.True(t, ok)
	assert.InDelta(t, 29.97, fps, 0.01)

	fps, ok = parseFrameRate("25/1")
	assert.True(t, ok)
	assert.Equal(t, 25.0, fps)

	_, ok = parseFrameRate("0/0")
	assert.False(t, ok)

	_, ok = parseFrameRate("garbage")
	assert.False(t, ok)

	_, ok = parseFrameRate("")
	assert.False(t, ok)
}

func TestAcceptedVideoType(t *testing.T) {
	assert.True(t, AcceptedVideoType("video/mp4"))
	assert.True(t, AcceptedVideoType("video/quicktime"))
	assert.True(t, AcceptedVideoType(" VIDEO/MP4 "))
	assert.False(t, AcceptedVideoType("image/png"))
	assert.False(t, AcceptedVideoType("application/pdf"))
	assert.False(t, AcceptedVideoType(""))
}

func TestSniffMIMETypePrefersMagicBytes(t *testing.T) {
	// Minimal MP4 signature: size box + "ftyp" brand.
	head := []byte{0x00, 0x00, 0x00, 0x18, 0x66, 0x74, 0x79, 0x70, 0x69, 0x73, 0x6F, 0x6D}
	assert.Equal(t, "video/mp4", SniffMIMEType(head, "application/octet-stream"))
}

func TestSniffMIMETypeFallsBackToDeclared(t *testing.T) {
	assert.Equal(t, "video/mp4", SniffMIMEType([]byte("not a real container"), "video/mp4"))
	assert.Equal(t, "", SniffMIMEType(nil, ""))
}

func TestEncodeBase64RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	payload := []byte("fake-video-bytes")
	assert.NoError(t, os.WriteFile(path, payload, 0o600))

	e := NewFFmpegExtractor("", "")
	encoded, err := e.EncodeBase64(path)
	assert.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestEncodeBase64MissingFile(t *testing.T) {
	e := NewFFmpegExtractor("", "")
	_, err := e.EncodeBase64(filepath.Join(t.TempDir(), "absent.mp4"))
	assert.Error(t, err)
}
