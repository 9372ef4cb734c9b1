package services

import (
	"context"
	"encoding/json"
	"time"

	"pessoas-backend/application/ports"
	"pessoas-backend/application/sagas"
	"pessoas-backend/domain/core/entities"
	"pessoas-backend/domain/core/valueobjects"
	"pessoas-backend/pkg/errors"
	"pessoas-backend/pkg/observability"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Options tunes PersonService behavior.
type Options struct {
	// ReleaseOnFailure releases a claimed nickname when the durable insert
	// fails. Off by default: a failed insert then leaves the nickname
	// permanently reserved with no record behind it.
	ReleaseOnFailure bool

	// BackendTimeout bounds every reservation, store and cache call.
	BackendTimeout time.Duration

	// Metrics is optional; nil disables business metrics.
	Metrics *observability.Collector
}

// CreateInput carries the already-validated fields of a new person.
type CreateInput struct {
	Nickname  string
	Name      string
	BirthDate valueobjects.Date
	Stack     []string
}

// PersonService orchestrates person creation and lookups over the
// reservation store, the durable store and the optional read-through cache.
type PersonService struct {
	repo         ports.PersonRepository
	reservations ports.ReservationStore
	cache        ports.PersonCache // nil when running without a cache
	logger       *zap.Logger
	opts         Options
	lookups      singleflight.Group
}

// NewPersonService creates a person service. cache may be nil; every read
// path then goes straight to the durable store.
func NewPersonService(
	repo ports.PersonRepository,
	reservations ports.ReservationStore,
	cache ports.PersonCache,
	logger *zap.Logger,
	opts Options,
) *PersonService {
	if opts.BackendTimeout <= 0 {
		opts.BackendTimeout = 2 * time.Second
	}
	return &PersonService{
		repo:         repo,
		reservations: reservations,
		cache:        cache,
		logger:       logger,
		opts:         opts,
	}
}

// Create registers a new person: reserve the nickname, persist the record,
// then best-effort populate the cache. The reserve and persist steps run as
// a saga; the reservation step only carries a compensation when
// ReleaseOnFailure is enabled.
func (s *PersonService) Create(ctx context.Context, input CreateInput) (*entities.Person, error) {
	person, err := entities.NewPerson(input.Nickname, input.Name, input.BirthDate, input.Stack)
	if err != nil {
		return nil, err
	}

	var release func(ctx context.Context, data interface{}) error
	if s.opts.ReleaseOnFailure {
		release = func(ctx context.Context, _ interface{}) error {
			callCtx, cancel := s.backendContext(ctx)
			defer cancel()
			return s.reservations.Release(callCtx, person.Nickname)
		}
	}

	saga := sagas.New("create-person", s.logger)
	saga.AddStep(sagas.Step{
		Name: "reserve-nickname",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			callCtx, cancel := s.backendContext(ctx)
			defer cancel()
			ok, err := s.reservations.Reserve(callCtx, person.Nickname)
			if err != nil {
				if errors.IsAppError(err) {
					return nil, err
				}
				return nil, errors.NewReservationUnavailableError(err)
			}
			if !ok {
				if s.opts.Metrics != nil {
					s.opts.Metrics.DuplicateNicknames.Inc()
				}
				return nil, errors.NewDuplicateNicknameError(person.Nickname)
			}
			return data, nil
		},
		Compensate: release,
	})
	saga.AddStep(sagas.Step{
		Name: "persist-person",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			callCtx, cancel := s.backendContext(ctx)
			defer cancel()
			if err := s.repo.Insert(callCtx, person); err != nil {
				return nil, err
			}
			return data, nil
		},
	})

	if _, err := saga.Execute(ctx, nil); err != nil {
		return nil, err
	}

	s.cachePerson(ctx, person)

	if s.opts.Metrics != nil {
		s.opts.Metrics.PersonsCreated.Inc()
	}
	s.logger.Info("person created",
		zap.String("id", person.ID.String()),
		zap.String("nickname", person.Nickname),
	)
	return person, nil
}

// GetByID returns the serialized person. Cache hits are returned as-is:
// records are immutable after creation, so a hit never needs re-validation
// against the store. On a miss the store result is serialized, returned and
// best-effort written back to the cache; concurrent misses for the same id
// collapse into a single store query.
func (s *PersonService) GetByID(ctx context.Context, id valueobjects.PersonID) (json.RawMessage, error) {
	key := id.String()

	if s.cache != nil {
		callCtx, cancel := s.backendContext(ctx)
		data, ok, err := s.cache.Get(callCtx, key)
		cancel()
		switch {
		case err != nil:
			// Cache failures are never propagated; fall through to the store.
			s.logger.Debug("person cache read failed", zap.String("id", key), zap.Error(err))
		case ok:
			if s.opts.Metrics != nil {
				s.opts.Metrics.CacheHits.Inc()
			}
			return data, nil
		}
		if s.opts.Metrics != nil {
			s.opts.Metrics.CacheMisses.Inc()
		}
	}

	v, err, _ := s.lookups.Do(key, func() (interface{}, error) {
		callCtx, cancel := s.backendContext(ctx)
		defer cancel()
		person, err := s.repo.GetByID(callCtx, id)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(person)
		if err != nil {
			return nil, errors.NewInternalError("failed to serialize person").WithCause(err)
		}
		s.cachePut(ctx, key, data)
		return json.RawMessage(data), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// Search returns up to 50 persons whose search text contains the term.
// Results bypass the cache: the query space is unbounded, so they are not
// individually cacheable by key.
func (s *PersonService) Search(ctx context.Context, term string) ([]*entities.Person, error) {
	callCtx, cancel := s.backendContext(ctx)
	defer cancel()
	return s.repo.Search(callCtx, term)
}

// Count returns the total number of person records, straight from the store.
func (s *PersonService) Count(ctx context.Context) (int64, error) {
	callCtx, cancel := s.backendContext(ctx)
	defer cancel()
	return s.repo.Count(callCtx)
}

// cachePerson serializes and stores a person in the cache, best-effort.
func (s *PersonService) cachePerson(ctx context.Context, person *entities.Person) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(person)
	if err != nil {
		s.logger.Warn("failed to serialize person for cache",
			zap.String("id", person.ID.String()), zap.Error(err))
		return
	}
	s.cachePut(ctx, person.ID.String(), data)
}

// cachePut writes to the cache and swallows any failure.
func (s *PersonService) cachePut(ctx context.Context, key string, data []byte) {
	if s.cache == nil {
		return
	}
	callCtx, cancel := s.backendContext(ctx)
	defer cancel()
	if err := s.cache.Put(callCtx, key, data); err != nil {
		s.logger.Warn("person cache write failed", zap.String("id", key), zap.Error(err))
	}
}

// backendContext bounds a single backend call.
func (s *PersonService) backendContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.BackendTimeout)
}
