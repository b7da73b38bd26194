package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

// Mocks

type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) PullAll(ctx context.Context, uid string) ([]*entities.Doctor, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) UpsertBatch(ctx context.Context, uid string, doctors []*entities.Doctor) error {
	args := m.Called(ctx, uid, doctors)
	return args.Error(0)
}

func (m *MockDoctorRepository) Delete(ctx context.Context, uid, doctorID string) error {
	args := m.Called(ctx, uid, doctorID)
	return args.Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUID(ctx context.Context, uid string) (*entities.Account, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) TouchLastSync(ctx context.Context, uid string, at time.Time) error {
	args := m.Called(ctx, uid, at)
	return args.Error(0)
}

type MockDoctorCache struct {
	mock.Mock
}

func (m *MockDoctorCache) Get(ctx context.Context, uid string) ([]*entities.Doctor, bool, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Doctor), args.Bool(1), args.Error(2)
}

func (m *MockDoctorCache) Put(ctx context.Context, uid string, doctors []*entities.Doctor) error {
	args := m.Called(ctx, uid, doctors)
	return args.Error(0)
}

func (m *MockDoctorCache) Delete(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func newSyncService(repo *MockDoctorRepository, accounts *MockAccountRepository, cache *MockDoctorCache) *services.SyncService {
	return services.NewSyncService(repo, accounts, cache, nil, nil, nil)
}

func seedLoaderWith(doctors ...*entities.Doctor) services.SeedLoader {
	return func() ([]*entities.Doctor, error) {
		return doctors, nil
	}
}

// Tests

func TestSyncService_OpenSession(t *testing.T) {
	t.Run("non-empty remote pull replaces the local cache and skips seeding", func(t *testing.T) {
		// Arrange
		repo := new(MockDoctorRepository)
		accounts := new(MockAccountRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, accounts, cache)
		service.SetSeedLoader(seedLoaderWith(&entities.Doctor{Name: "Should Not Be Written"}))

		remote := []*entities.Doctor{{ID: "d1", Name: "Dr. Remote"}}
		repo.On("PullAll", mock.Anything, "user-1").Return(remote, nil).Once()
		cache.On("Get", mock.Anything, "user-1").Return(nil, false, nil)
		cache.On("Put", mock.Anything, "user-1", remote).Return(nil)

		// Act
		result, err := service.OpenSession(context.Background(), "user-1")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, remote, result)
		repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("empty remote collection seeds the starter dataset with fresh ids", func(t *testing.T) {
		// Arrange
		repo := new(MockDoctorRepository)
		accounts := new(MockAccountRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, accounts, cache)
		service.SetSeedLoader(seedLoaderWith(
			&entities.Doctor{Name: "Dr. Starter One"},
			&entities.Doctor{Name: "Dr. Starter Two"},
		))

		seeded := []*entities.Doctor{
			{ID: "s1", Name: "Dr. Starter One", OwnerUID: "user-1"},
			{ID: "s2", Name: "Dr. Starter Two", OwnerUID: "user-1"},
		}
		repo.On("PullAll", mock.Anything, "user-1").Return([]*entities.Doctor{}, nil).Once()
		repo.On("UpsertBatch", mock.Anything, "user-1", mock.MatchedBy(func(doctors []*entities.Doctor) bool {
			if len(doctors) != 2 {
				return false
			}
			for _, d := range doctors {
				if d.ID == "" || d.OwnerUID != "user-1" || d.Consultant != "user-1" {
					return false
				}
			}
			return doctors[0].ID != doctors[1].ID
		})).Return(nil).Once()
		repo.On("PullAll", mock.Anything, "user-1").Return(seeded, nil).Once()
		cache.On("Get", mock.Anything, "user-1").Return(nil, false, nil)
		cache.On("Put", mock.Anything, "user-1", seeded).Return(nil)

		// Act
		result, err := service.OpenSession(context.Background(), "user-1")

		// Assert
		assert.NoError(t, err)
		assert.Len(t, result, 2)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("empty pull with nothing to seed preserves the local cache", func(t *testing.T) {
		// Arrange
		repo := new(MockDoctorRepository)
		accounts := new(MockAccountRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, accounts, cache)
		service.SetSeedLoader(seedLoaderWith())

		local := []*entities.Doctor{{ID: "local-1", Name: "Dr. Offline"}}
		repo.On("PullAll", mock.Anything, "user-1").Return([]*entities.Doctor{}, nil).Once()
		cache.On("Get", mock.Anything, "user-1").Return(local, true, nil)

		// Act
		result, err := service.OpenSession(context.Background(), "user-1")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, local, result)
		cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("seed runs again when a later pull transiently reads empty", func(t *testing.T) {
		// Nothing marks an account as already seeded, so a transient
		// empty read duplicates the starter data. This pins down the
		// known behavior rather than endorsing it.
		repo := new(MockDoctorRepository)
		accounts := new(MockAccountRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, accounts, cache)
		service.SetSeedLoader(seedLoaderWith(&entities.Doctor{Name: "Dr. Starter"}))

		repo.On("PullAll", mock.Anything, "user-1").Return([]*entities.Doctor{}, nil)
		repo.On("UpsertBatch", mock.Anything, "user-1", mock.Anything).Return(nil)
		cache.On("Get", mock.Anything, "user-1").Return(nil, false, nil)

		_, err := service.OpenSession(context.Background(), "user-1")
		assert.NoError(t, err)
		_, err = service.OpenSession(context.Background(), "user-1")
		assert.NoError(t, err)

		repo.AssertNumberOfCalls(t, "UpsertBatch", 2)
	})

	t.Run("fails without an authenticated user", func(t *testing.T) {
		service := newSyncService(new(MockDoctorRepository), new(MockAccountRepository), new(MockDoctorCache))

		_, err := service.OpenSession(context.Background(), "")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthenticated))
	})

	t.Run("pull failure surfaces an external error", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, new(MockAccountRepository), cache)

		repo.On("PullAll", mock.Anything, "user-1").Return(nil, errors.New("store unreachable"))

		_, err := service.OpenSession(context.Background(), "user-1")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
		cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSyncService_Push(t *testing.T) {
	t.Run("pushes cached records and stamps last sync", func(t *testing.T) {
		// Arrange
		repo := new(MockDoctorRepository)
		accounts := new(MockAccountRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, accounts, cache)

		local := []*entities.Doctor{
			{ID: "d1", Name: "Dr. One"},
			{ID: "d2", Name: "Dr. Two"},
		}
		cache.On("Get", mock.Anything, "user-1").Return(local, true, nil)
		repo.On("UpsertBatch", mock.Anything, "user-1", local).Return(nil)
		accounts.On("TouchLastSync", mock.Anything, "user-1", mock.Anything).Return(nil)

		// Act
		count, err := service.Push(context.Background(), "user-1")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 2, count)
		repo.AssertExpectations(t)
		accounts.AssertExpectations(t)
	})

	t.Run("empty cache pushes nothing", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		accounts := new(MockAccountRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, accounts, cache)

		cache.On("Get", mock.Anything, "user-1").Return(nil, false, nil)

		count, err := service.Push(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Zero(t, count)
		repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything, mock.Anything)
		accounts.AssertNotCalled(t, "TouchLastSync", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("batch failure leaves the cache authoritative and skips the sync stamp", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		accounts := new(MockAccountRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, accounts, cache)

		local := []*entities.Doctor{{ID: "d1"}}
		cache.On("Get", mock.Anything, "user-1").Return(local, true, nil)
		repo.On("UpsertBatch", mock.Anything, "user-1", local).Return(errors.New("batch rejected"))

		_, err := service.Push(context.Background(), "user-1")

		assert.Error(t, err)
		accounts.AssertNotCalled(t, "TouchLastSync", mock.Anything, mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("second trigger while one is in flight reports a conflict", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		accounts := new(MockAccountRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, accounts, cache)

		local := []*entities.Doctor{{ID: "d1"}}
		var reentrantErr error
		cache.On("Get", mock.Anything, "user-1").Return(local, true, nil)
		repo.On("UpsertBatch", mock.Anything, "user-1", local).Run(func(args mock.Arguments) {
			_, reentrantErr = service.Push(context.Background(), "user-1")
		}).Return(nil)
		accounts.On("TouchLastSync", mock.Anything, "user-1", mock.Anything).Return(nil)

		_, err := service.Push(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.True(t, apperrors.IsType(reentrantErr, apperrors.ErrorTypeConflict))
	})
}

func TestSyncService_Pull(t *testing.T) {
	t.Run("non-empty pull refreshes the cache", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, new(MockAccountRepository), cache)

		remote := []*entities.Doctor{{ID: "d1"}}
		repo.On("PullAll", mock.Anything, "user-1").Return(remote, nil)
		cache.On("Put", mock.Anything, "user-1", remote).Return(nil)

		result, err := service.Pull(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Equal(t, remote, result)
		cache.AssertExpectations(t)
	})

	t.Run("empty pull keeps local records instead of wiping them", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		cache := new(MockDoctorCache)
		service := newSyncService(repo, new(MockAccountRepository), cache)

		local := []*entities.Doctor{{ID: "local-1"}}
		repo.On("PullAll", mock.Anything, "user-1").Return([]*entities.Doctor{}, nil)
		cache.On("Get", mock.Anything, "user-1").Return(local, true, nil)

		result, err := service.Pull(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Equal(t, local, result)
		cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})
}
