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
	"strings"

	"github.com/h2non/filetype"
)

// acceptedVideoMIMETypes is the upload allow-list. Declared-or-sniffed types
// outside this set are rejected before any pipeline stage runs.
var acceptedVideoMIMETypes = map[string]bool{
	"video/mp4":       true,
	"video/avi":       true,
	"video/x-msvideo": true,
	"video/mov":       true,
	"video/wmv":       true,
	"video/x-ms-wmv":  true,
	"video/quicktime": true,
}

// AcceptedVideoType reports whether mimeType is an accepted upload type.
func AcceptedVideoType(mimeType string) bool {
	return acceptedVideoMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// SniffMIMEType determines the MIME type from the first bytes of an upload,
// falling back to the client-declared type when the magic bytes are not
// recognized.
func SniffMIMEType(head []byte, declared string) string {
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return declared
}
