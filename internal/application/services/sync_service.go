package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/observability"
	"github.com/farmacliniq/fieldcrm/backend/internal/seed"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

// SyncChannel returns the event bus channel carrying sync notifications
// for one user.
func SyncChannel(uid string) string {
	return "fieldcrm:sync:" + uid
}

// SeedLoader supplies the starter dataset for first-time accounts
type SeedLoader func() ([]*entities.Doctor, error)

// SyncService reconciles the per-user local cache with the remote
// document collection. Local edits never reach the remote store on
// their own; callers push explicitly. At most one sync operation runs
// per user at a time, enforced by an in-flight flag rather than a
// queue, so a failed operation leaves nothing to drain and the user
// simply retries.
type SyncService struct {
	doctorRepo  repositories.DoctorRepository
	accountRepo repositories.AccountRepository
	cache       providers.DoctorCache
	searchRepo  repositories.DoctorSearchRepository
	bus         providers.EventBus
	metrics     *observability.Metrics
	loadSeed    SeedLoader
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewSyncService creates a new sync service. searchRepo, bus and
// metrics may be nil; the corresponding side effects are skipped.
func NewSyncService(
	doctorRepo repositories.DoctorRepository,
	accountRepo repositories.AccountRepository,
	cache providers.DoctorCache,
	searchRepo repositories.DoctorSearchRepository,
	bus providers.EventBus,
	metrics *observability.Metrics,
) *SyncService {
	return &SyncService{
		doctorRepo:  doctorRepo,
		accountRepo: accountRepo,
		cache:       cache,
		searchRepo:  searchRepo,
		bus:         bus,
		metrics:     metrics,
		loadSeed:    seed.Doctors,
		now:         time.Now,
		inFlight:    make(map[string]bool),
	}
}

// SetSeedLoader replaces the bundled dataset source
func (s *SyncService) SetSeedLoader(loader SeedLoader) {
	s.loadSeed = loader
}

// beginOp marks uid's sync as in flight, or reports a conflict when one
// is already running. This is a guard flag, not a lock around the whole
// operation; see the service doc comment.
func (s *SyncService) beginOp(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[uid] {
		return apperrors.NewConflictError("a sync operation is already in progress")
	}
	s.inFlight[uid] = true
	return nil
}

func (s *SyncService) endOp(uid string) {
	s.mu.Lock()
	delete(s.inFlight, uid)
	s.mu.Unlock()
}

func (s *SyncService) requireUID(uid string) error {
	if uid == "" {
		return apperrors.NewUnauthenticatedError("sync requires an authenticated user")
	}
	return nil
}

func (s *SyncService) publish(ctx context.Context, uid string, kind entities.SyncEventKind, count int, opErr error) {
	if s.bus == nil {
		return
	}
	event := &entities.SyncEvent{
		ID:         uuid.New().String(),
		UID:        uid,
		Kind:       kind,
		Count:      count,
		OccurredAt: s.now(),
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if err := s.bus.Publish(ctx, SyncChannel(uid), event); err != nil {
		log.Warn().Str("uid", uid).Err(err).Msg("failed to publish sync event")
	}
}

// OpenSession runs the sign-in reconciliation for uid and returns the
// resulting record list:
//
//  1. pull the remote collection
//  2. if it is empty, seed the starter dataset and pull again
//  3. replace the local cache with the pulled records only when the
//     result is non-empty; an empty pull leaves existing local data as
//     the source of truth
func (s *SyncService) OpenSession(ctx context.Context, uid string) ([]*entities.Doctor, error) {
	if err := s.requireUID(uid); err != nil {
		return nil, err
	}
	if err := s.beginOp(uid); err != nil {
		return nil, err
	}
	defer s.endOp(uid)

	ctx, span := observability.StartSpan(ctx, "SyncService.OpenSession")
	defer span.End()
	start := s.now()

	remote, err := s.doctorRepo.PullAll(ctx, uid)
	if err != nil {
		s.publish(ctx, uid, entities.SyncEventPull, 0, err)
		observability.RecordSyncMetric(ctx, s.metrics, "open_session", false, s.now().Sub(start))
		return nil, apperrors.NewExternalError("failed to pull doctor records", err)
	}

	if len(remote) == 0 {
		seeded, seedErr := s.seedAccount(ctx, uid)
		if seedErr != nil {
			// Seeding failed; the account stays empty and local data,
			// if any, remains authoritative.
			log.Warn().Str("uid", uid).Err(seedErr).Msg("starter dataset seed failed")
			s.publish(ctx, uid, entities.SyncEventSeed, 0, seedErr)
		} else if seeded > 0 {
			s.publish(ctx, uid, entities.SyncEventSeed, seeded, nil)
			remote, err = s.doctorRepo.PullAll(ctx, uid)
			if err != nil {
				s.publish(ctx, uid, entities.SyncEventPull, 0, err)
				observability.RecordSyncMetric(ctx, s.metrics, "open_session", false, s.now().Sub(start))
				return nil, apperrors.NewExternalError("failed to pull doctor records after seeding", err)
			}
		}
	}

	local, found, cacheErr := s.cache.Get(ctx, uid)
	if cacheErr != nil {
		log.Warn().Str("uid", uid).Err(cacheErr).Msg("failed to read local doctor cache")
	}

	result := remote
	if len(remote) > 0 {
		if err := s.cache.Put(ctx, uid, remote); err != nil {
			log.Warn().Str("uid", uid).Err(err).Msg("failed to write local doctor cache")
		}
	} else if found {
		result = local
	}

	s.publish(ctx, uid, entities.SyncEventPull, len(remote), nil)
	observability.RecordSyncMetric(ctx, s.metrics, "open_session", true, s.now().Sub(start))

	log.Info().Str("uid", uid).Int("remote", len(remote)).Int("resolved", len(result)).
		Msg("session opened")

	return result, nil
}

// seedAccount writes the bundled starter dataset under uid, giving each
// entry a fresh identifier so dataset IDs never collide across users.
// Nothing marks the account as already seeded; a transient empty pull
// re-triggers it and duplicates the data, which callers accept.
func (s *SyncService) seedAccount(ctx context.Context, uid string) (int, error) {
	doctors, err := s.loadSeed()
	if err != nil {
		return 0, err
	}
	if len(doctors) == 0 {
		return 0, nil
	}

	now := s.now().Format(time.RFC3339)
	for _, doctor := range doctors {
		doctor.ID = uuid.New().String()
		doctor.OwnerUID = uid
		doctor.Consultant = uid
		if doctor.LastContactAt == "" {
			doctor.LastContactAt = now
		}
	}

	if err := s.doctorRepo.UpsertBatch(ctx, uid, doctors); err != nil {
		return 0, fmt.Errorf("failed to write seed batch: %w", err)
	}

	log.Info().Str("uid", uid).Int("count", len(doctors)).Msg("seeded starter dataset")
	return len(doctors), nil
}

// Push writes every locally cached record to the remote collection as a
// merge upsert and stamps the account's last-sync timestamp. The local
// cache is left untouched; on failure it remains the sole source of
// truth and the user retries manually.
func (s *SyncService) Push(ctx context.Context, uid string) (int, error) {
	if err := s.requireUID(uid); err != nil {
		return 0, err
	}
	if err := s.beginOp(uid); err != nil {
		return 0, err
	}
	defer s.endOp(uid)

	ctx, span := observability.StartSpan(ctx, "SyncService.Push")
	defer span.End()
	start := s.now()

	doctors, found, err := s.cache.Get(ctx, uid)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read local doctor cache", err)
	}
	if !found || len(doctors) == 0 {
		return 0, nil
	}

	if err := s.doctorRepo.UpsertBatch(ctx, uid, doctors); err != nil {
		s.publish(ctx, uid, entities.SyncEventPush, 0, err)
		observability.RecordSyncMetric(ctx, s.metrics, "push", false, s.now().Sub(start))
		return 0, err
	}

	if err := s.accountRepo.TouchLastSync(ctx, uid, s.now()); err != nil {
		log.Warn().Str("uid", uid).Err(err).Msg("failed to stamp last sync")
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.IndexBatch(ctx, uid, doctors); err != nil {
			log.Warn().Str("uid", uid).Err(err).Msg("failed to refresh search index")
		}
	}

	s.publish(ctx, uid, entities.SyncEventPush, len(doctors), nil)
	observability.RecordSyncMetric(ctx, s.metrics, "push", true, s.now().Sub(start))

	log.Info().Str("uid", uid).Int("count", len(doctors)).Msg("pushed doctor records")
	return len(doctors), nil
}

// Pull refreshes the local cache from the remote collection. An empty
// remote result does not wipe local data.
func (s *SyncService) Pull(ctx context.Context, uid string) ([]*entities.Doctor, error) {
	if err := s.requireUID(uid); err != nil {
		return nil, err
	}
	if err := s.beginOp(uid); err != nil {
		return nil, err
	}
	defer s.endOp(uid)

	ctx, span := observability.StartSpan(ctx, "SyncService.Pull")
	defer span.End()
	start := s.now()

	remote, err := s.doctorRepo.PullAll(ctx, uid)
	if err != nil {
		s.publish(ctx, uid, entities.SyncEventPull, 0, err)
		observability.RecordSyncMetric(ctx, s.metrics, "pull", false, s.now().Sub(start))
		return nil, apperrors.NewExternalError("failed to pull doctor records", err)
	}

	result := remote
	if len(remote) > 0 {
		if err := s.cache.Put(ctx, uid, remote); err != nil {
			log.Warn().Str("uid", uid).Err(err).Msg("failed to write local doctor cache")
		}
	} else {
		if local, found, _ := s.cache.Get(ctx, uid); found {
			result = local
		}
	}

	s.publish(ctx, uid, entities.SyncEventPull, len(remote), nil)
	observability.RecordSyncMetric(ctx, s.metrics, "pull", true, s.now().Sub(start))
	return result, nil
}

// CloseSession ends uid's session. The on-disk cache is retained under
// its user-scoped key for the next login.
func (s *SyncService) CloseSession(ctx context.Context, uid string) error {
	if err := s.requireUID(uid); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.inFlight, uid)
	s.mu.Unlock()

	log.Info().Str("uid", uid).Msg("session closed")
	return nil
}
