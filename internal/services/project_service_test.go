package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CreateProject(t *testing.T) {
	e := newTestEnv(t)

	project, err := e.projects.CreateProject(testRequest(), dto.CreateProjectRequest{Name: "Lake house"})

	require.NoError(t, err)
	assert.NotZero(t, project.ID)
	assert.Equal(t, uint(0), project.TreeVersion)
	require.NotNil(t, project.CreatorID)
	assert.Equal(t, uint(7), *project.CreatorID)
}

func TestProjectService_CreateProjectRequiresName(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.projects.CreateProject(testRequest(), dto.CreateProjectRequest{})

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Issues[0].Path)
	assert.Zero(t, e.count(t, &models.Project{}))
}

func TestProjectService_DeleteNodeRemovesSubtreeAndAnnotations(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Delete")
	page := e.page(t, project.ID, 1)
	e.mustSubmit(t, project.ID, `{"tree":[{"type":"room","name":"Kitchen","children":[
		{"type":"room_location","name":"North","children":[
			{"type":"cabinet_run","children":[{"type":"cabinet"}]}
		]},
		{"type":"room_location","name":"South"}
	]}]}`)
	room := e.rooms(t, project.ID)[0]
	north := room.Locations[0]
	cabinet := north.Runs[0].Cabinets[0]
	e.annotate(t, page.ID, models.NodeRef{Kind: models.KindRoom, ID: room.ID}, 1)
	e.annotate(t, page.ID, models.NodeRef{Kind: models.KindLocation, ID: north.ID}, 1)
	e.annotate(t, page.ID, models.NodeRef{Kind: models.KindCabinet, ID: cabinet.ID}, 2)

	removed, err := e.projects.DeleteNode(testRequest(), models.KindLocation, north.ID)

	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"room_location": 1,
		"cabinet_run":   1,
		"cabinet":       1,
		"annotation":    3,
	}, removed)

	rooms := e.rooms(t, project.ID)
	require.Len(t, rooms[0].Locations, 1)
	assert.Equal(t, "South", rooms[0].Locations[0].Name)
	assert.Zero(t, e.count(t, &models.Cabinet{}))

	active, err := e.annotationRepo.FindActiveByPage(context.Background(), nil, page.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, room.ID, *active[0].NodeID)

	history, err := e.annotations.PageHistory(context.Background(), page.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	stored, err := e.projectRepo.FindByID(context.Background(), nil, project.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), stored.TreeVersion)
}

func TestProjectService_DeleteNodeUnknown(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.projects.DeleteNode(testRequest(), models.KindCabinet, 99)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProjectService_DeleteNodeRejectsProjectKind(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Keep")

	_, err := e.projects.DeleteNode(testRequest(), models.KindProject, project.ID)

	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
	assert.Equal(t, int64(1), e.count(t, &models.Project{}))
}
