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

package cor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
)

// appendCommand records its execution and emits its name as output.
type appendCommand struct {
	cor.BaseCommand
	log  *[]string
	fail bool
}

func newAppendCommand(name string, log *[]string, fail bool) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), log: log, fail: fail}
}

func (c *appendCommand) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil
}

func (c *appendCommand) Execute(context cor.Context) {
	*c.log = append(*c.log, c.GetName())
	if c.fail {
		context.AddError(c.GetName(), errors.New("scripted failure"))
		return
	}
	context.Add(c.GetOutputParam(), c.GetName())
}

func newChainContext() cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	return ctx
}

func TestChainExecutesCommandsInOrder(t *testing.T) {
	var log []string
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", &log, false))
	chain.AddCommand(newAppendCommand("second", &log, false))
	chain.AddCommand(newAppendCommand("third", &log, false))

	ctx := newChainContext()
	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, []string{"first", "second", "third"}, log)
}

func TestChainPipesOutputToNextInput(t *testing.T) {
	var log []string
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("producer", &log, false))

	ctx := newChainContext()
	chain.Execute(ctx)

	// After the chain, the last output has been piped into CtxIn.
	assert.Equal(t, "producer", ctx.Get(cor.CtxIn))
	assert.Nil(t, ctx.Get(cor.CtxOut))
}

func TestChainStopsAtFirstError(t *testing.T) {
	var log []string
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", &log, false))
	chain.AddCommand(newAppendCommand("boom", &log, true))
	chain.AddCommand(newAppendCommand("after", &log, false))

	ctx := newChainContext()
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, []string{"first", "boom"}, log, "commands after a failure must not run")
}

func TestChainContinueOnFailure(t *testing.T) {
	var log []string
	chain := cor.NewBaseChain("test-chain")
	chain.ContinueOnFailure(true)
	chain.AddCommand(newAppendCommand("boom", &log, true))
	chain.AddCommand(newAppendCommand("after", &log, false))

	ctx := newChainContext()
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, []string{"boom", "after"}, log)
}

func TestContextCloseRemovesTempResourcesOnce(t *testing.T) {
	dir := t.TempDir()
	tempFile := filepath.Join(dir, "staged.mp4")
	assert.NoError(t, os.WriteFile(tempFile, []byte("x"), 0o600))
	tempDir := filepath.Join(dir, "frames")
	assert.NoError(t, os.MkdirAll(tempDir, 0o750))

	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.AddTempFile(tempFile)
	ctx.AddTempDir(tempDir)

	ctx.Close()
	_, err := os.Stat(tempFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(tempDir)
	assert.True(t, os.IsNotExist(err))

	// Second Close is a no-op, not a double delete.
	ctx.Close()
}

func TestContextErrorBookkeeping(t *testing.T) {
	ctx := cor.NewBaseContext()
	assert.False(t, ctx.HasErrors())

	ctx.AddError("stage", errors.New("failed"))
	assert.True(t, ctx.HasErrors())
	assert.Len(t, ctx.GetErrors(), 1)
}
