package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/models"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func saveRequest(t *testing.T, body string) dto.SaveAnnotationsRequest {
	var req dto.SaveAnnotationsRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestAnnotationService_ReplaceLeavesOnlySubmittedAnnotations(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Scenario E")
	page := e.page(t, project.ID, 1)
	e.mustSubmit(t, project.ID, `{"tree":[{"type":"room","name":"Kitchen"}]}`)
	room := models.NodeRef{Kind: models.KindRoom, ID: e.rooms(t, project.ID)[0].ID}
	existing := e.annotate(t, page.ID, room, 1)

	response, err := e.annotations.ReplacePageAnnotations(testRequest(), page.ID, saveRequest(t, `{"annotations":[
		{"label":"A","x":0.1,"y":0.1,"width":0.2,"height":0.2},
		{"label":"B","x":0.3,"y":0.1,"width":0.2,"height":0.2,"view_type":"elevation"},
		{"label":"C","x":0.5,"y":0.1,"width":0.2,"height":0.2,"metadata":{"source":"scan"}}
	]}`))

	require.NoError(t, err)
	assert.Equal(t, ReplaceStrategy, response.Strategy)
	assert.Equal(t, 3, response.Count)
	active, err := e.annotationRepo.FindActiveByPage(context.Background(), nil, page.ID)
	require.NoError(t, err)
	require.Len(t, active, 3)
	for _, annotation := range active {
		assert.NotEqual(t, existing[0].ID, annotation.ID)
		assert.Equal(t, "room", annotation.AnnotationType)
	}
	assert.Equal(t, "plan", active[0].ViewType)
	assert.Equal(t, "elevation", active[1].ViewType)
	assert.JSONEq(t, `{"source":"scan"}`, string(active[2].Metadata))

	var total int64
	require.NoError(t, e.db.Unscoped().Model(&models.Annotation{}).Where("page_id = ?", page.ID).Count(&total).Error)
	assert.Equal(t, int64(4), total)

	history, err := e.annotations.PageHistory(context.Background(), page.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, models.HistoryDeleted, history[0].Action)
	assert.Equal(t, existing[0].ID, *history[0].AnnotationID)
	assert.NotEmpty(t, history[0].Before)
	for _, entry := range history[1:] {
		assert.Equal(t, models.HistoryCreated, entry.Action)
		assert.NotEmpty(t, entry.After)
		assert.Equal(t, history[0].RequestID, entry.RequestID)
	}

	tree, err := e.tree.LoadTree(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *tree.Tree[0].AnnotationCount)
}

func TestAnnotationService_CreateEntitiesReusesByName(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Entities")
	page := e.page(t, project.ID, 1)
	e.mustSubmit(t, project.ID, `{"tree":[{"type":"room","name":"Kitchen","room_type":"kitchen","children":[
		{"type":"room_location","name":"North wall","children":[{"type":"cabinet_run","run_type":"tall"}]}
	]}]}`)
	kitchen := e.rooms(t, project.ID)[0]
	run := kitchen.Locations[0].Runs[0]

	response, err := e.annotations.ReplacePageAnnotations(testRequest(), page.ID, saveRequest(t, `{
		"create_entities": true,
		"context": {"cabinet_run_id": `+uintJSON(run.ID)+`},
		"annotations":[
			{"annotation_type":"room","label":"Kitchen","room_type":"kitchen","x":0,"y":0,"width":0.5,"height":0.5},
			{"annotation_type":"room","label":"Pantry","x":0.5,"y":0,"width":0.5,"height":0.5},
			{"annotation_type":"cabinet","x":0.1,"y":0.1,"width":0.1,"height":0.1,"notes":"Oven tower"}
		]
	}`))

	require.NoError(t, err)
	require.Len(t, response.CreatedEntities, 3)
	assert.Equal(t, dto.CreatedEntity{AnnotationIndex: 0, EntityType: "room", EntityID: kitchen.ID, Reused: true}, response.CreatedEntities[0])
	assert.False(t, response.CreatedEntities[1].Reused)
	assert.Equal(t, "cabinet", response.CreatedEntities[2].EntityType)
	assert.Equal(t, 2, response.EntitiesCreatedCount)

	rooms := e.rooms(t, project.ID)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Pantry", rooms[1].Name)
	assert.Equal(t, "other", rooms[1].RoomType)
	assert.Equal(t, 2, rooms[1].SortOrder)
	cabinets := rooms[0].Locations[0].Runs[0].Cabinets
	require.Len(t, cabinets, 1)
	assert.Equal(t, "T1", cabinets[0].CabinetNumber)
	assert.Equal(t, "Oven tower", cabinets[0].Notes)

	require.Len(t, response.Annotations, 3)
	node, ok := response.Annotations[0].Node()
	require.True(t, ok)
	assert.Equal(t, models.NodeRef{Kind: models.KindRoom, ID: kitchen.ID}, node)

	stored, err := e.projectRepo.FindByID(context.Background(), nil, project.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), stored.TreeVersion)
}

func TestAnnotationService_CreateEntitiesNeedsContext(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Context")
	page := e.page(t, project.ID, 1)

	_, err := e.annotations.ReplacePageAnnotations(testRequest(), page.ID, saveRequest(t, `{
		"create_entities": true,
		"annotations":[{"annotation_type":"location","label":"Island","x":0,"y":0,"width":0.5,"height":0.5}]
	}`))

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "annotations[0]", verr.Issues[0].Path)
	assert.Zero(t, e.count(t, &models.Annotation{}))
}

func TestAnnotationService_ForeignNodeReferenceIsDropped(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Mine")
	other := e.project(t, "Theirs")
	page := e.page(t, project.ID, 1)
	e.mustSubmit(t, other.ID, `{"tree":[{"type":"room","name":"Elsewhere"}]}`)
	foreign := e.rooms(t, other.ID)[0]

	response, err := e.annotations.ReplacePageAnnotations(testRequest(), page.ID, saveRequest(t, `{"annotations":[
		{"node_kind":"room","node_id":`+uintJSON(foreign.ID)+`,"x":0,"y":0,"width":0.5,"height":0.5}
	]}`))

	require.NoError(t, err)
	require.Len(t, response.Annotations, 1)
	_, linked := response.Annotations[0].Node()
	assert.False(t, linked)
}

func TestAnnotationService_ParentKeyAndNotesSync(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Nesting")
	page := e.page(t, project.ID, 1)
	e.mustSubmit(t, project.ID, `{"tree":[{"type":"room","name":"Kitchen"}]}`)
	kitchen := e.rooms(t, project.ID)[0]

	response, err := e.annotations.ReplacePageAnnotations(testRequest(), page.ID, saveRequest(t, `{"annotations":[
		{"key":"outline","node_kind":"room","node_id":`+uintJSON(kitchen.ID)+`,"notes":"Tile floor","x":0,"y":0,"width":1,"height":1},
		{"parent_key":"outline","x":0.2,"y":0.2,"width":0.1,"height":0.1},
		{"parent_key":"missing","x":0.4,"y":0.2,"width":0.1,"height":0.1}
	]}`))

	require.NoError(t, err)
	require.Len(t, response.Annotations, 3)
	parent := response.Annotations[0]
	require.NotNil(t, response.Annotations[1].ParentAnnotationID)
	assert.Equal(t, parent.ID, *response.Annotations[1].ParentAnnotationID)
	assert.Nil(t, response.Annotations[2].ParentAnnotationID)
	assert.Equal(t, "Tile floor", e.rooms(t, project.ID)[0].Notes)
}

func TestAnnotationService_RejectsOutOfRangeGeometry(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Geometry")
	page := e.page(t, project.ID, 1)

	_, err := e.annotations.ReplacePageAnnotations(testRequest(), page.ID, saveRequest(t, `{"annotations":[
		{"x":1.5,"y":0,"width":0.5,"height":0.5,"view_type":"isometric"}
	]}`))

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	paths := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		paths = append(paths, issue.Path)
	}
	assert.ElementsMatch(t, []string{"annotations[0].x", "annotations[0].view_type"}, paths)
}

func TestAnnotationService_UnknownPage(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.annotations.ListPageAnnotations(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = e.annotations.ReplacePageAnnotations(testRequest(), 42, dto.SaveAnnotationsRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAnnotationService_DeleteRemovesNestedAnnotations(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Delete")
	page := e.page(t, project.ID, 1)
	response, err := e.annotations.ReplacePageAnnotations(testRequest(), page.ID, saveRequest(t, `{"annotations":[
		{"key":"a","x":0,"y":0,"width":1,"height":1},
		{"key":"b","parent_key":"a","x":0,"y":0,"width":0.5,"height":0.5},
		{"parent_key":"b","x":0,"y":0,"width":0.2,"height":0.2},
		{"x":0.5,"y":0.5,"width":0.2,"height":0.2}
	]}`))
	require.NoError(t, err)

	deleted, err := e.annotations.DeleteAnnotation(testRequest(), response.Annotations[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	listed, err := e.annotations.ListPageAnnotations(context.Background(), page.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, listed.Count)
	assert.NotNil(t, listed.LastModified)

	_, err = e.annotations.DeleteAnnotation(testRequest(), response.Annotations[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAnnotationService_PurgeDeletedHonoursRetention(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Purge")
	page := e.page(t, project.ID, 1)
	batch := e.annotate(t, page.ID, models.NodeRef{Kind: models.KindRoom, ID: 1}, 3)
	ctx := context.Background()
	require.NoError(t, e.annotationRepo.SoftDeleteByIDs(ctx, nil, []uint{batch[0].ID, batch[1].ID}))
	require.NoError(t, e.db.Unscoped().Model(&models.Annotation{}).
		Where("id = ?", batch[0].ID).
		Update("deleted_at", time.Now().Add(-40*24*time.Hour)).Error)

	purged, err := e.annotations.PurgeDeleted(ctx, 30*24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	var remaining int64
	require.NoError(t, e.db.Unscoped().Model(&models.Annotation{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)
	history, err := e.annotationRepo.FindHistoryByPage(ctx, nil, page.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryPurged, history[0].Action)
}

func TestAnnotationService_ParentKeyCycleIsBroken(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Cycle")
	page := e.page(t, project.ID, 1)

	response, err := e.annotations.ReplacePageAnnotations(testRequest(), page.ID, saveRequest(t, `{"annotations":[
		{"key":"a","parent_key":"b","x":0,"y":0,"width":0.5,"height":0.5},
		{"key":"b","parent_key":"a","x":0.5,"y":0,"width":0.5,"height":0.5},
		{"key":"c","parent_key":"c","x":0,"y":0.5,"width":0.5,"height":0.5}
	]}`))
	require.NoError(t, err)
	require.Len(t, response.Annotations, 3)
	first, second := response.Annotations[0], response.Annotations[1]
	require.NotNil(t, first.ParentAnnotationID)
	assert.Equal(t, second.ID, *first.ParentAnnotationID)
	assert.Nil(t, second.ParentAnnotationID)
	assert.Nil(t, response.Annotations[2].ParentAnnotationID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	deleted, err := e.annotations.DeleteAnnotation(NewRequestContext(ctx, nil), second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
}

func TestAnnotationService_DeleteTerminatesOnStoredCycle(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Stored cycle")
	page := e.page(t, project.ID, 1)
	batch := e.annotate(t, page.ID, models.NodeRef{Kind: models.KindRoom, ID: 1}, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.annotationRepo.SetParent(ctx, nil, batch[0].ID, &batch[1].ID))
	require.NoError(t, e.annotationRepo.SetParent(ctx, nil, batch[1].ID, &batch[0].ID))

	deleted, err := e.annotations.DeleteAnnotation(NewRequestContext(ctx, nil), batch[0].ID)

	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	active, err := e.annotationRepo.FindActiveByPage(ctx, nil, page.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, batch[2].ID, active[0].ID)
}

func TestHistoryEntry_ReportsUnencodableSnapshot(t *testing.T) {
	annotation := &models.Annotation{PageID: 1, Metadata: datatypes.JSON(`{"broken"`)}

	entry, err := historyEntry(testRequest(), annotation, models.HistoryCreated)

	assert.Error(t, err)
	assert.Nil(t, entry)
}

func uintJSON(id uint) string {
	encoded, _ := json.Marshal(id)
	return string(encoded)
}
