package services

import (
	"Casework/internal/config"
	"Casework/internal/models"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJanitor(e *testEnv, retention time.Duration) *Janitor {
	configuration := &config.Configuration{
		Server: config.ServerConfig{
			CleanConfig: config.CleanConfig{Schedule: "@daily", Retention: retention},
		},
	}
	return NewJanitorService(e.annotations, e.logService, configuration)
}

func (e *testEnv) expireDeleted(t *testing.T, age time.Duration, annotations ...*models.Annotation) {
	ids := make([]uint, 0, len(annotations))
	for _, annotation := range annotations {
		ids = append(ids, annotation.ID)
	}
	require.NoError(t, e.annotationRepo.SoftDeleteByIDs(context.Background(), nil, ids))
	require.NoError(t, e.db.Unscoped().Model(&models.Annotation{}).
		Where("id IN ?", ids).
		Update("deleted_at", time.Now().Add(-age)).Error)
}

func TestJanitor_RunOncePurgesExpiredAnnotations(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Janitor")
	page := e.page(t, project.ID, 1)
	batch := e.annotate(t, page.ID, models.NodeRef{Kind: models.KindRoom, ID: 1}, 3)
	e.expireDeleted(t, 48*time.Hour, batch[0], batch[1])
	janitor := newTestJanitor(e, 24*time.Hour)

	purged, err := janitor.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, purged)
	assert.False(t, janitor.IsCleaning())
	assert.Equal(t, int64(1), e.count(t, &models.Annotation{}))

	purged, err = janitor.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestJanitor_KeepsAnnotationsInsideRetention(t *testing.T) {
	e := newTestEnv(t)
	project := e.project(t, "Janitor")
	page := e.page(t, project.ID, 1)
	batch := e.annotate(t, page.ID, models.NodeRef{Kind: models.KindRoom, ID: 1}, 1)
	e.expireDeleted(t, time.Hour, batch[0])
	janitor := newTestJanitor(e, 24*time.Hour)

	purged, err := janitor.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, purged)
	var total int64
	require.NoError(t, e.db.Unscoped().Model(&models.Annotation{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestJanitor_RejectsOverlappingCycles(t *testing.T) {
	e := newTestEnv(t)
	janitor := newTestJanitor(e, time.Hour)
	require.True(t, janitor.begin())

	_, err := janitor.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrCleaningInProgress)
	assert.ErrorIs(t, janitor.ForceStartCleanCycle(), ErrCleaningInProgress)

	janitor.end()
	require.NoError(t, janitor.ForceStartCleanCycle())
	assert.Eventually(t, func() bool { return !janitor.IsCleaning() }, time.Second, 10*time.Millisecond)
}
