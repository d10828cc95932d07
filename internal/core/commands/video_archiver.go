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

// Package commands provides the concrete Command implementations that make up
// the umpire review pipeline. This file defines the optional archive step:
// after a decision is reached, the original clip is streamed to a Cloud
// Storage bucket for later audit. Archiving is best effort; a failed upload
// is logged but never fails a request that already has its decision.
package commands

import (
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
)

// VideoArchiver streams the reviewed clip to the archive bucket.
type VideoArchiver struct {
	cor.BaseCommand
	client *storage.Client
	bucket string
}

// NewVideoArchiver creates the archive command. The command disables itself
// when the client is nil or the bucket is empty, so unconfigured deployments
// can keep it in the chain.
func NewVideoArchiver(name string, client *storage.Client, bucket string) *VideoArchiver {
	return &VideoArchiver{BaseCommand: *cor.NewBaseCommand(name), client: client, bucket: bucket}
}

// IsExecutable requires an archive configuration and the video asset.
func (c *VideoArchiver) IsExecutable(context cor.Context) bool {
	return c.client != nil &&
		c.bucket != "" &&
		context != nil &&
		context.GetContext() != nil &&
		context.Get(GetVideoAssetParamName()) != nil
}

// Execute streams the clip to the bucket and passes the piped decision
// through untouched.
func (c *VideoArchiver) Execute(context cor.Context) {
	// The decision produced by the previous command stays the chain output.
	defer func() {
		if in := context.Get(c.GetInputParam()); in != nil {
			context.Add(c.GetOutputParam(), in)
		}
	}()

	asset := context.Get(GetVideoAssetParamName()).(*model.VideoAsset)

	dat, err := os.Open(asset.Path)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "archive skipped: failed to open clip",
			"video", asset.BaseName, "error", err)
		return
	}
	defer func() { _ = dat.Close() }()

	obj := c.client.Bucket(c.bucket).Object(asset.BaseName)
	writer := obj.NewWriter(context.GetContext())

	if _, err := io.Copy(writer, dat); err != nil {
		_ = writer.Close()
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "archive upload failed",
			"video", asset.BaseName, "bucket", c.bucket, "error", err)
		return
	}
	if err := writer.Close(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "archive writer close failed",
			"video", asset.BaseName, "bucket", c.bucket, "error", err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "archived clip",
		"video", asset.BaseName, "bucket", c.bucket)
}
