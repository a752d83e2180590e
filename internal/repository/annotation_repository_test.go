package repository

import (
	"Casework/internal/models"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotationFor(pageID uint, ref *models.NodeRef) *models.Annotation {
	a := &models.Annotation{PageID: pageID, AnnotationType: "room", ViewType: "plan", Width: 0.2, Height: 0.2}
	a.SetNode(ref)
	return a
}

func TestAnnotationRepository_CountsExcludeSoftDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnotationRepository(db)
	ctx := context.Background()
	room := &models.NodeRef{Kind: models.KindRoom, ID: 7}
	other := &models.NodeRef{Kind: models.KindRoom, ID: 8}
	sameIDOtherKind := &models.NodeRef{Kind: models.KindRun, ID: 7}

	var batch []*models.Annotation
	for i := 0; i < 5; i++ {
		batch = append(batch, annotationFor(1, room))
	}
	batch = append(batch, annotationFor(2, other), annotationFor(3, sameIDOtherKind))
	require.NoError(t, repo.CreateBatch(ctx, nil, batch))
	require.NoError(t, repo.SoftDeleteByIDs(ctx, nil, []uint{batch[0].ID, batch[1].ID}))

	counts, err := repo.CountByNodes(ctx, nil, models.KindRoom, []uint{7, 8, 9})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[7])
	assert.Equal(t, 1, counts[8])
	assert.Equal(t, 0, counts[9])
}

func TestAnnotationRepository_PagesByNodes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnotationRepository(db)
	ctx := context.Background()
	room := &models.NodeRef{Kind: models.KindRoom, ID: 7}

	batch := []*models.Annotation{annotationFor(3, room), annotationFor(1, room), annotationFor(3, room), annotationFor(5, room)}
	require.NoError(t, repo.CreateBatch(ctx, nil, batch))
	require.NoError(t, repo.SoftDeleteByIDs(ctx, nil, []uint{batch[3].ID}))

	pages, err := repo.PagesByNodes(ctx, nil, models.KindRoom, []uint{7})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, pages[7])
}

func TestAnnotationRepository_FindDescendantIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnotationRepository(db)
	ctx := context.Background()

	root := annotationFor(1, nil)
	require.NoError(t, repo.Create(ctx, nil, root))
	child := annotationFor(1, nil)
	child.ParentAnnotationID = &root.ID
	require.NoError(t, repo.Create(ctx, nil, child))
	grandchild := annotationFor(1, nil)
	grandchild.ParentAnnotationID = &child.ID
	require.NoError(t, repo.Create(ctx, nil, grandchild))
	unrelated := annotationFor(1, nil)
	require.NoError(t, repo.Create(ctx, nil, unrelated))

	ids, err := repo.FindDescendantIDs(ctx, nil, root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{child.ID, grandchild.ID}, ids)
}

func TestAnnotationRepository_PurgeDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnotationRepository(db)
	ctx := context.Background()

	batch := []*models.Annotation{annotationFor(1, nil), annotationFor(1, nil)}
	require.NoError(t, repo.CreateBatch(ctx, nil, batch))
	require.NoError(t, repo.SoftDeleteByIDs(ctx, nil, []uint{batch[0].ID}))

	active, err := repo.FindActiveByPage(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	deleted, err := repo.FindDeletedBefore(ctx, nil, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, batch[0].ID, deleted[0].ID)

	notYet, err := repo.FindDeletedBefore(ctx, nil, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, notYet)

	require.NoError(t, repo.PurgeByIDs(ctx, nil, []uint{batch[0].ID}))
	var total int64
	require.NoError(t, db.Unscoped().Model(&models.Annotation{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestAnnotationRepository_History(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnotationRepository(db)
	ctx := context.Background()

	id := uint(4)
	require.NoError(t, repo.CreateHistory(ctx, nil, []*models.AnnotationHistory{
		{PageID: 1, AnnotationID: &id, Action: models.HistoryDeleted},
		{PageID: 1, AnnotationID: &id, Action: models.HistoryCreated},
		{PageID: 2, Action: models.HistoryCreated},
	}))

	entries, err := repo.FindHistoryByPage(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.HistoryDeleted, entries[0].Action)
}
