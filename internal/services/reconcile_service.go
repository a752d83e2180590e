package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/models"
	"Casework/internal/repository"
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"sort"
	"time"
)

type ReconcileResult struct {
	Stats   map[string]dto.LevelStats
	Version uint
	Changed bool
}

type ReconcileService interface {
	// Reconcile makes the project's stored hierarchy match the submitted tree in
	// a single transaction.
	Reconcile(rc RequestContext, projectID uint, req dto.ReconcileRequest) (*ReconcileResult, error)
}

type reconcileServiceImpl struct {
	db            *gorm.DB
	projectRepo   repository.ProjectRepository
	hierarchyRepo repository.HierarchyRepository
	catalog       CatalogLookup
	logService    LogService
}

func NewReconcileService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	hierarchyRepo repository.HierarchyRepository,
	catalog CatalogLookup,
	logService LogService,
) ReconcileService {
	return &reconcileServiceImpl{
		db:            db,
		projectRepo:   projectRepo,
		hierarchyRepo: hierarchyRepo,
		catalog:       catalog,
		logService:    logService,
	}
}

func (s *reconcileServiceImpl) Reconcile(rc RequestContext, projectID uint, req dto.ReconcileRequest) (*ReconcileResult, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		reconcileDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()
	ctx := rc.context()
	log := s.logService.WithRequest(rc).WithField("project_id", projectID)

	plan, err := planCandidates(req.Tree)
	if err != nil {
		outcome = "invalid"
		return nil, err
	}
	catalog, err := s.catalog.Resolve(ctx, plan.catalogIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range plan.catalogIDs {
		if _, ok := catalog[id]; !ok {
			outcome = "invalid"
			return nil, apperrors.NewConstraintViolation("catalog item %d does not exist or is inactive", id)
		}
	}

	r := &reconciler{
		rc:      rc,
		repo:    s.hierarchyRepo,
		plan:    plan,
		catalog: catalog,
		stats:   make(map[models.NodeKind]*dto.LevelStats),
		log:     log,
	}
	result := &ReconcileResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r.tx = tx
		project, err := s.projectRepo.FindByID(ctx, tx, projectID)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		if project == nil {
			return apperrors.NotFoundf("project %d", projectID)
		}
		if req.ExpectedVersion != nil && *req.ExpectedVersion != project.TreeVersion {
			return fmt.Errorf("project %d is at version %d, submission expected %d: %w",
				projectID, project.TreeVersion, *req.ExpectedVersion, apperrors.ErrConflict)
		}

		root := models.NodeRef{Kind: models.KindProject, ID: projectID}
		if _, err := reconcileLevel[models.Room, roomPatch](r, roomAdapter{}, root, positioned(req.Tree)); err != nil {
			return err
		}

		result.Version = project.TreeVersion
		if r.changed() {
			bumped, err := s.projectRepo.BumpVersion(ctx, tx, projectID, project.TreeVersion)
			if err != nil {
				return fmt.Errorf("bump tree version: %w", err)
			}
			if !bumped {
				return fmt.Errorf("project %d changed during reconcile: %w", projectID, apperrors.ErrConflict)
			}
			result.Version++
			result.Changed = true
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("reconcile rolled back")
		return nil, err
	}

	outcome = "committed"
	result.Stats = r.statsByName()
	r.recordMetrics()
	log.WithFields(logrus.Fields{
		"version": result.Version,
		"changed": result.Changed,
		"stats":   result.Stats,
	}).Info("reconcile committed")
	return result, nil
}

// reconciler carries the state of one reconcile transaction through every level.
type reconciler struct {
	rc      RequestContext
	tx      *gorm.DB
	repo    repository.HierarchyRepository
	plan    *candidatePlan
	catalog map[uint]models.CatalogItem
	stats   map[models.NodeKind]*dto.LevelStats
	log     *logrus.Entry
}

func (r *reconciler) ctx() context.Context {
	return r.rc.context()
}

func (r *reconciler) statsFor(kind models.NodeKind) *dto.LevelStats {
	stats, ok := r.stats[kind]
	if !ok {
		stats = &dto.LevelStats{}
		r.stats[kind] = stats
	}
	return stats
}

func (r *reconciler) changed() bool {
	for _, stats := range r.stats {
		if stats.Changed() {
			return true
		}
	}
	return false
}

func (r *reconciler) statsByName() map[string]dto.LevelStats {
	out := make(map[string]dto.LevelStats, len(r.stats))
	for kind, stats := range r.stats {
		out[string(kind)] = *stats
	}
	return out
}

func (r *reconciler) recordMetrics() {
	for kind, stats := range r.stats {
		label := string(kind)
		reconcileOperations.WithLabelValues(label, "created").Add(float64(stats.Created))
		reconcileOperations.WithLabelValues(label, "updated").Add(float64(stats.Updated))
		reconcileOperations.WithLabelValues(label, "deleted").Add(float64(stats.Deleted))
		reconcileOperations.WithLabelValues(label, "skipped").Add(float64(stats.Skipped))
	}
}

// candidate is a submitted node with its 1-based position among its siblings.
type candidate struct {
	node     *dto.TreeNode
	position int
}

func positioned(nodes []*dto.TreeNode) []candidate {
	candidates := make([]candidate, 0, len(nodes))
	for i, node := range nodes {
		candidates = append(candidates, candidate{node: node, position: i + 1})
	}
	return candidates
}

// levelAdapter supplies the per-level behavior reconcileLevel needs. M is the
// stored model and P the decoded patch of a candidate node.
type levelAdapter[M any, P any] interface {
	kind() models.NodeKind
	load(r *reconciler, parent models.NodeRef) ([]*M, error)
	id(m *M) uint
	// build returns a new record with defaults and the patch applied. siblings
	// holds every record already under the parent.
	build(r *reconciler, parent models.NodeRef, patch P, position int, siblings []*M) (*M, error)
	// apply merges the patch into an existing record and reports whether
	// anything changed.
	apply(r *reconciler, m *M, patch P, position int) bool
	// skip reports whether a candidate that would be created must be dropped.
	skip(r *reconciler, patch P) bool
	descend(r *reconciler, m *M, node *dto.TreeNode) error
}

// reconcileLevel diffs the stored children of parent against candidates: it
// updates matched records, creates new ones, recurses into each, and finally
// deletes the stored children no candidate claimed together with their
// subtrees. It returns the surviving ids in candidate order.
func reconcileLevel[M any, P any](r *reconciler, a levelAdapter[M, P], parent models.NodeRef, candidates []candidate) ([]uint, error) {
	kind := a.kind()
	stats := r.statsFor(kind)
	existing, err := a.load(r, parent)
	if err != nil {
		return nil, fmt.Errorf("load %s children of %s: %w", kind, parent, err)
	}
	byID := make(map[uint]*M, len(existing))
	for _, record := range existing {
		byID[a.id(record)] = record
	}
	siblings := append(make([]*M, 0, len(existing)+len(candidates)), existing...)
	surviving := make(map[uint]bool, len(candidates))
	survivingIDs := make([]uint, 0, len(candidates))

	for _, c := range candidates {
		patch := patchFor[P](r.plan, c.node)
		var record *M
		stale := false
		if c.node.DBID != nil {
			if found, ok := byID[*c.node.DBID]; ok && !surviving[*c.node.DBID] {
				record = found
				if a.apply(r, record, patch, c.position) {
					if err := r.repo.Save(r.ctx(), r.tx, record); err != nil {
						return nil, fmt.Errorf("update %s %d: %w", kind, *c.node.DBID, err)
					}
					stats.Updated++
				}
			} else {
				stale = true
			}
		}
		if record == nil {
			if a.skip(r, patch) {
				stats.Skipped++
				continue
			}
			if stale {
				r.log.WithFields(logrus.Fields{
					"kind":   kind,
					"db_id":  *c.node.DBID,
					"parent": parent.String(),
					"path":   r.plan.paths[c.node],
				}).Warn("stable id not found under parent, creating a new record")
				stats.Recreated++
			}
			record, err = a.build(r, parent, patch, c.position, siblings)
			if err != nil {
				return nil, err
			}
			if err := r.repo.Insert(r.ctx(), r.tx, record); err != nil {
				return nil, fmt.Errorf("create %s under %s: %w", kind, parent, err)
			}
			stats.Created++
			siblings = append(siblings, record)
		}
		id := a.id(record)
		surviving[id] = true
		survivingIDs = append(survivingIDs, id)
		if err := a.descend(r, record, c.node); err != nil {
			return nil, err
		}
	}

	var toDelete []uint
	for _, record := range existing {
		if id := a.id(record); !surviving[id] {
			toDelete = append(toDelete, id)
		}
	}
	if len(toDelete) == 0 {
		return survivingIDs, nil
	}
	removed, err := r.repo.DeleteSubtree(r.ctx(), r.tx, kind, toDelete)
	if err != nil {
		return nil, fmt.Errorf("delete %s under %s: %w", kind, parent, err)
	}
	kinds := make([]string, 0, len(removed))
	for removedKind, ids := range removed {
		r.statsFor(removedKind).Deleted += len(ids)
		kinds = append(kinds, string(removedKind))
	}
	sort.Strings(kinds)
	r.log.WithFields(logrus.Fields{
		"kind":    kind,
		"parent":  parent.String(),
		"ids":     toDelete,
		"cascade": kinds,
	}).Debug("deleted records missing from submission")
	return survivingIDs, nil
}
