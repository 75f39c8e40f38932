package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redfire-io/pcb-tutor/internal/model"
)

func newTestDatasetStore(t *testing.T) *DatasetStore {
	t.Helper()
	s, err := NewDatasetStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDatasetStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestDatasetStore(t)

	ds := &model.Dataset{
		ID:      "ds-1",
		Subject: "biology",
		Source:  "https://example.com/bio.txt",
		Hash:    "abc123",
		Status:  model.DatasetStatusPending,
	}
	require.NoError(t, s.Create(ctx, ds))

	got, err := s.Get(ctx, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, "biology", got.Subject)
	assert.Equal(t, model.DatasetStatusPending, got.Status)
}

func TestDatasetStoreSetStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestDatasetStore(t)

	require.NoError(t, s.Create(ctx, &model.Dataset{ID: "ds-1", Subject: "physics", Source: "x"}))
	require.NoError(t, s.SetStatus(ctx, "ds-1", model.DatasetStatusIndexed, 42, ""))

	got, err := s.Get(ctx, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, model.DatasetStatusIndexed, got.Status)
	assert.Equal(t, 42, got.ChunkNum)
}

func TestDatasetStoreFindByHash(t *testing.T) {
	ctx := context.Background()
	s := newTestDatasetStore(t)

	require.NoError(t, s.Create(ctx, &model.Dataset{ID: "ds-1", Subject: "chemistry", Source: "x", Hash: "h1"}))

	found, err := s.FindByHash(ctx, model.SubjectChemistry, "h1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "ds-1", found.ID)

	// Same hash under a different subject is a different dataset.
	found, err = s.FindByHash(ctx, model.SubjectBiology, "h1")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDatasetStoreList(t *testing.T) {
	ctx := context.Background()
	s := newTestDatasetStore(t)

	require.NoError(t, s.Create(ctx, &model.Dataset{ID: "a", Subject: "biology", Source: "1"}))
	require.NoError(t, s.Create(ctx, &model.Dataset{ID: "b", Subject: "physics", Source: "2"}))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bio, err := s.List(ctx, model.SubjectBiology)
	require.NoError(t, err)
	require.Len(t, bio, 1)
	assert.Equal(t, "a", bio[0].ID)
}
