package mcp

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/config/bulk"
	"github.com/joshuapare/mcpkit/pkg/types"
)

func TestApplyBatchLiteralAndTemplate(t *testing.T) {
	path := writeSample(t)
	bf := &bulk.BatchFile{Servers: []bulk.BatchEntry{
		{Name: "echo", Command: "/bin/echo", Args: []string{"hello"}},
		{Name: "db", Template: "sqlite", Vars: map[string]string{"db_path": "/tmp/app.db"}},
	}}

	res, err := ApplyBatch(context.Background(), path, bf, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "db"}, res.Applied)
	assert.True(t, res.OK())

	s, err := Get(path, "db")
	require.NoError(t, err)
	assert.Equal(t, "uvx", s.Command)
	assert.Contains(t, s.Args, "/tmp/app.db")
}

func TestApplyBatchStopsOnExisting(t *testing.T) {
	path := writeSample(t)
	bf := &bulk.BatchFile{Servers: []bulk.BatchEntry{
		{Name: "github", Command: "/bin/true"}, // already in the document
		{Name: "fresh", Command: "/bin/true"},
	}}

	res, err := ApplyBatch(context.Background(), path, bf, nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.True(t, types.IsKind(res.Failed[0].Err, types.ErrKindExists))
	assert.Equal(t, []string{"fresh"}, res.Skipped)
	assert.Empty(t, res.Applied)

	res, err = ApplyBatch(context.Background(), path, bf, nil, &Options{ContinueOnError: true})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, []string{"fresh"}, res.Applied)
}

func TestApplyBatchDryRun(t *testing.T) {
	path := writeSample(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	bf := &bulk.BatchFile{Servers: []bulk.BatchEntry{
		{Name: "twin", Command: "/bin/true"},
		{Name: "twin", Command: "/bin/false"}, // duplicate inside the file
	}}
	res, err := ApplyBatch(context.Background(), path, bf, nil, &Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Plans, 2)
	assert.NotNil(t, res.Plans[0])
	assert.Nil(t, res.Plans[1])
	require.Len(t, res.Failed, 1)
	assert.True(t, types.IsKind(res.Failed[0].Err, types.ErrKindExists))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestApplyBatchUnknownTemplate(t *testing.T) {
	path := writeSample(t)
	bf := &bulk.BatchFile{Servers: []bulk.BatchEntry{
		{Name: "mystery", Template: "no-such-template"},
	}}

	res, err := ApplyBatch(context.Background(), path, bf, nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.True(t, types.IsKind(res.Failed[0].Err, types.ErrKindNotFound))
}

func TestApplyBatchEmptyFile(t *testing.T) {
	path := writeSample(t)

	res, err := ApplyBatch(context.Background(), path, &bulk.BatchFile{}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
	assert.Len(t, res.Issues.Warnings(), 1)
}
