package services

import (
	"Casework/internal/config"
	"context"
	"errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"sync"
)

var ErrCleaningInProgress = errors.New("cleaning is in progress")

// Janitor purges annotations that have been soft-deleted for longer than the
// configured retention, on a cron schedule or on demand.
type Janitor struct {
	annotationService AnnotationService
	configuration     *config.Configuration
	logService        LogService
	cleaning          bool
	mutex             sync.Mutex
	cron              *cron.Cron
}

func NewJanitorService(
	annotationService AnnotationService,
	logService LogService,
	configuration *config.Configuration,
) *Janitor {
	return &Janitor{
		annotationService: annotationService,
		logService:        logService,
		configuration:     configuration,
		cron:              cron.New(),
	}
}

// begin claims the janitor for one cycle. It reports false when a cycle is
// already running.
func (j *Janitor) begin() bool {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	if j.cleaning {
		return false
	}
	j.cleaning = true
	return true
}

func (j *Janitor) end() {
	j.mutex.Lock()
	j.cleaning = false
	j.mutex.Unlock()
}

func (j *Janitor) ForceStartCleanCycle() error {
	if !j.begin() {
		return ErrCleaningInProgress
	}
	go func() {
		defer j.end()
		j.startClean(true)
	}()
	return nil
}

func (j *Janitor) StartCleanCycle() {
	j.logService.Log.Debug("starting cleaning job")
	cronSchedule := j.configuration.Server.CleanConfig.Schedule
	_, err := j.cron.AddFunc(cronSchedule, func() {
		if !j.begin() {
			return
		}
		defer j.end()
		j.startClean(false)
	})
	if err != nil {
		j.logService.Log.WithFields(logrus.Fields{
			"job":   "clean",
			"error": err.Error(),
		}).Error("Failed to start cleaning job")
		return
	}
	j.cron.Start()
}

func (j *Janitor) StopClean() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logService.Log.WithFields(logrus.Fields{
		"job":    "clean",
		"status": "stopped",
	}).Info("Janitor clean stopped")
}

func (j *Janitor) IsCleaning() bool {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.cleaning
}

// RunOnce runs one purge cycle in the caller's goroutine and returns how many
// annotations were removed.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	if !j.begin() {
		return 0, ErrCleaningInProgress
	}
	defer j.end()
	return j.purge(ctx)
}

func (j *Janitor) purge(ctx context.Context) (int, error) {
	return j.annotationService.PurgeDeleted(ctx, j.configuration.Server.CleanConfig.Retention)
}

func (j *Janitor) startClean(forced bool) {
	logFields := logrus.Fields{
		"job":       "clean",
		"status":    "start",
		"cron":      j.configuration.Server.CleanConfig.Schedule,
		"retention": j.configuration.Server.CleanConfig.Retention.String(),
	}
	if forced {
		logFields = logrus.Fields{
			"job":       "clean",
			"status":    "forced",
			"retention": j.configuration.Server.CleanConfig.Retention.String(),
		}
	}
	j.logService.Log.WithFields(logFields).Debug("purging deleted annotations")

	count, err := j.purge(context.Background())
	if err != nil {
		j.logService.Log.WithFields(logrus.Fields{
			"job":    "clean",
			"status": "error",
			"error":  err.Error(),
		}).Error("Failed to purge deleted annotations")
		return
	}
	if count > 0 {
		j.logService.Log.WithFields(logrus.Fields{
			"job":    "clean",
			"status": "success",
			"count":  count,
		}).Info("cleaning job finished")
	}
}
