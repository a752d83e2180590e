package repository

import (
	"Casework/internal/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := &models.Project{Name: "Pantry"}
	require.NoError(t, repo.Create(ctx, nil, project))
	assert.NotZero(t, project.ID)

	found, err := repo.FindByID(ctx, nil, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pantry", found.Name)

	missing, err := repo.FindByID(ctx, nil, project.ID+1)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProjectRepository_BumpVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := &models.Project{Name: "Vanity"}
	require.NoError(t, repo.Create(ctx, nil, project))

	ok, err := repo.BumpVersion(ctx, nil, project.ID, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.BumpVersion(ctx, nil, project.ID, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByID(ctx, nil, project.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), found.TreeVersion)
}
