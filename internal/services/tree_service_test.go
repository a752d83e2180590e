package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/models"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) annotate(t *testing.T, pageID uint, ref models.NodeRef, n int) []*models.Annotation {
	batch := make([]*models.Annotation, 0, n)
	for i := 0; i < n; i++ {
		a := &models.Annotation{PageID: pageID, AnnotationType: "room", ViewType: "plan", Width: 0.1, Height: 0.1}
		a.SetNode(&ref)
		batch = append(batch, a)
	}
	require.NoError(t, e.annotationRepo.CreateBatch(context.Background(), nil, batch))
	return batch
}

func TestTreeService_CountsOnlyActiveAnnotations(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Scenario D")
	e.mustSubmit(t, project.ID, `{"tree":[{"type":"room","name":"Kitchen"},{"type":"room","name":"Bath"}]}`)
	rooms := e.rooms(t, project.ID)
	kitchen := models.NodeRef{Kind: models.KindRoom, ID: rooms[0].ID}
	page1 := e.page(t, project.ID, 1)
	page2 := e.page(t, project.ID, 2)

	e.annotate(t, page2.ID, kitchen, 2)
	e.annotate(t, page1.ID, kitchen, 1)
	deleted := e.annotate(t, page1.ID, kitchen, 2)
	require.NoError(t, e.annotationRepo.SoftDeleteByIDs(context.Background(), nil, []uint{deleted[0].ID, deleted[1].ID}))

	tree, err := e.tree.LoadTree(context.Background(), project.ID)
	require.NoError(t, err)
	require.Len(t, tree.Tree, 2)
	require.NotNil(t, tree.Tree[0].AnnotationCount)
	assert.Equal(t, 3, *tree.Tree[0].AnnotationCount)
	assert.Equal(t, []uint{page1.ID, page2.ID}, tree.Tree[0].Pages)
	require.NotNil(t, tree.Tree[1].AnnotationCount)
	assert.Equal(t, 0, *tree.Tree[1].AnnotationCount)
	assert.Empty(t, tree.Tree[1].Pages)
}

func TestTreeService_RollsUpLinearFeetAndPrices(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Totals")
	e.mustSubmit(t, project.ID, `{"tree":[{"type":"room","children":[
		{"type":"room_location","cabinet_level":1,"children":[
			{"type":"cabinet_run","children":[
				{"type":"cabinet","length_inches":36,"quantity":1},
				{"type":"cabinet","length_inches":18,"quantity":2}
			]}
		]},
		{"type":"room_location","children":[
			{"type":"cabinet_run","children":[{"type":"cabinet","length_inches":12}]}
		]}
	]}]}`)
	// out-of-range tiers are rejected on submit, so store one directly
	require.NoError(t, e.db.Model(&models.Location{}).Where("cabinet_level = ?", 2).Update("cabinet_level", 9).Error)

	tree, err := e.tree.LoadTree(context.Background(), project.ID)
	require.NoError(t, err)

	room := tree.Tree[0]
	first, second := room.Children[0], room.Children[1]
	assert.Equal(t, 6.0, *first.LinearFeet)
	assert.Equal(t, "828.00", first.EstimatedPrice.StringFixed(2))
	assert.Equal(t, 6.0, *first.Children[0].LinearFeet)
	assert.Equal(t, 1.0, *second.LinearFeet)
	assert.Equal(t, "168.00", second.EstimatedPrice.StringFixed(2))
	assert.Equal(t, 7.0, *room.LinearFeet)
	assert.Equal(t, "996.00", room.EstimatedPrice.StringFixed(2))
	assert.Equal(t, 7.0, tree.TotalLinearFeet)
	assert.Equal(t, "996.00", tree.TotalEstimatedPrice.StringFixed(2))
	assert.Equal(t, 3.0, *first.Children[0].Children[1].LinearFeet)
}

func TestTreeService_UnknownProject(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.tree.LoadTree(context.Background(), 99)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTreeService_VersionMatchesLoadedTree(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Versioned")
	e.mustSubmit(t, project.ID, `{"tree":[{"type":"room","name":"Kitchen"}]}`)
	second := e.mustSubmit(t, project.ID, `{"tree":[{"type":"room","name":"Kitchen"},{"type":"room","name":"Pantry"}]}`)

	tree, err := e.tree.LoadTree(context.Background(), project.ID)

	require.NoError(t, err)
	assert.Equal(t, second.Version, tree.Version)
	require.Len(t, tree.Tree, 2)

	// a submission pinned to the loaded version is accepted
	encoded, err := json.Marshal(dto.ReconcileRequest{Tree: tree.Tree, ExpectedVersion: &tree.Version})
	require.NoError(t, err)
	result := e.mustSubmit(t, project.ID, string(encoded))
	assert.False(t, result.Changed)
}
