package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"pessoas-backend/application/ports"
	"pessoas-backend/domain/core/entities"
	"pessoas-backend/domain/core/valueobjects"
	"pessoas-backend/infrastructure/persistence/memory"
	apperrors "pessoas-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRepo is an in-memory PersonRepository with switchable failures.
type fakeRepo struct {
	mu        sync.Mutex
	records   map[string]*entities.Person
	insertErr error
	getErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*entities.Person)}
}

func (f *fakeRepo) setInsertErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertErr = err
}

func (f *fakeRepo) setGetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

func (f *fakeRepo) Insert(_ context.Context, person *entities.Person) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	clone := *person
	f.records[person.ID.String()] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id valueobjects.PersonID) (*entities.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	person, ok := f.records[id.String()]
	if !ok {
		return nil, apperrors.NewNotFoundError("person")
	}
	clone := *person
	return &clone, nil
}

func (f *fakeRepo) Search(_ context.Context, term string) ([]*entities.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	term = strings.ToLower(term)
	matches := make([]*entities.Person, 0)
	for _, person := range f.records {
		if strings.Contains(person.SearchText(), term) {
			clone := *person
			matches = append(matches, &clone)
			if len(matches) == 50 {
				break
			}
		}
	}
	return matches, nil
}

func (f *fakeRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

// downCache fails every call, simulating an unreachable cache backend.
type downCache struct{}

func (downCache) Put(context.Context, string, []byte) error {
	return apperrors.NewCacheError("put person", fmt.Errorf("connection refused"))
}

func (downCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, apperrors.NewCacheError("get person", fmt.Errorf("connection refused"))
}

// downReservations fails every call, simulating an unreachable reservation
// backend.
type downReservations struct{}

func (downReservations) Reserve(context.Context, string) (bool, error) {
	return false, fmt.Errorf("connection refused")
}

func (downReservations) Release(context.Context, string) error {
	return fmt.Errorf("connection refused")
}

func newTestService(repo ports.PersonRepository, reservations ports.ReservationStore, cache ports.PersonCache, opts Options) *PersonService {
	return NewPersonService(repo, reservations, cache, zap.NewNop(), opts)
}

func testInput(nickname string) CreateInput {
	return CreateInput{
		Nickname:  nickname,
		Name:      "Jose",
		BirthDate: valueobjects.NewDate(1990, time.January, 1),
		Stack:     []string{"rust"},
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), memory.NewPersonCache(), Options{})

	input := testInput("zeca")
	person, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.False(t, person.ID.IsZero())

	data, err := svc.GetByID(context.Background(), person.ID)
	require.NoError(t, err)

	var got entities.Person
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, person.ID.Equals(got.ID))
	assert.Equal(t, input.Nickname, got.Nickname)
	assert.Equal(t, input.Name, got.Name)
	assert.True(t, input.BirthDate.Equals(got.BirthDate))
	assert.Equal(t, input.Stack, got.Stack)
}

func TestConcurrentCreatesWithDistinctNicknames(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), memory.NewPersonCache(), Options{})

	const n = 32
	ids := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			person, err := svc.Create(context.Background(), testInput(fmt.Sprintf("nick-%d", i)))
			errs[i] = err
			if err == nil {
				ids[i] = person.ID.String()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "identifier %s assigned twice", ids[i])
		seen[ids[i]] = true
	}
}

func TestConcurrentCreatesWithSameNickname(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), memory.NewPersonCache(), Options{})

	const n = 32
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), testInput("disputed"))
		}(i)
	}
	wg.Wait()

	successes := 0
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			successes++
			continue
		}
		assert.True(t, apperrors.IsConflict(errs[i]), "unexpected error: %v", errs[i])
	}
	assert.Equal(t, 1, successes, "exactly one create must win the nickname")

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetFallsBackWhenCacheIsDown(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), downCache{}, Options{})

	person, err := svc.Create(context.Background(), testInput("zeca"))
	require.NoError(t, err, "cache failures must not fail the create")

	data, err := svc.GetByID(context.Background(), person.ID)
	require.NoError(t, err, "cache failures must not fail the read")

	var got entities.Person
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "zeca", got.Nickname)
}

func TestGetWorksWithoutCache(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), nil, Options{})

	person, err := svc.Create(context.Background(), testInput("zeca"))
	require.NoError(t, err)

	data, err := svc.GetByID(context.Background(), person.ID)
	require.NoError(t, err)

	var got entities.Person
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "zeca", got.Nickname)
}

func TestCacheHitSkipsStore(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), memory.NewPersonCache(), Options{})

	person, err := svc.Create(context.Background(), testInput("zeca"))
	require.NoError(t, err)

	// Break the store; the record must still be served from the cache.
	repo.setGetErr(apperrors.NewStoreError("get person", fmt.Errorf("connection refused")))

	data, err := svc.GetByID(context.Background(), person.ID)
	require.NoError(t, err)

	var got entities.Person
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "zeca", got.Nickname)
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), memory.NewReservationSet(), nil, Options{})

	_, err := svc.GetByID(context.Background(), valueobjects.NewPersonID())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestOrphanedReservationAfterPersistFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), nil, Options{})

	repo.setInsertErr(apperrors.NewStoreError("insert person", fmt.Errorf("connection refused")))
	_, err := svc.Create(context.Background(), testInput("orphan"))
	require.Error(t, err)
	assert.True(t, apperrors.IsDatabase(err))

	// The reservation is not rolled back: the nickname stays claimed even
	// though no record exists.
	repo.setInsertErr(nil)
	_, err = svc.Create(context.Background(), testInput("orphan"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err), "nickname should remain unreservable")
}

func TestReleaseOnFailureFreesTheNickname(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), nil, Options{ReleaseOnFailure: true})

	repo.setInsertErr(apperrors.NewStoreError("insert person", fmt.Errorf("connection refused")))
	_, err := svc.Create(context.Background(), testInput("reusable"))
	require.Error(t, err)

	repo.setInsertErr(nil)
	person, err := svc.Create(context.Background(), testInput("reusable"))
	require.NoError(t, err, "compensation should have released the nickname")
	assert.Equal(t, "reusable", person.Nickname)
}

func TestReservationBackendDownFailsTheRequest(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, downReservations{}, nil, Options{})

	_, err := svc.Create(context.Background(), testInput("zeca"))
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))

	// Nothing may be persisted when uniqueness cannot be determined.
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSearchMatchesStackAndExcludesMisses(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), nil, Options{})

	_, err := svc.Create(context.Background(), CreateInput{
		Nickname:  "joao",
		Name:      "Joao Silva",
		BirthDate: valueobjects.NewDate(1985, time.June, 15),
		Stack:     []string{"java", "go"},
	})
	require.NoError(t, err)

	matches, err := svc.Search(context.Background(), "jav")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "joao", matches[0].Nickname)

	matches, err = svc.Search(context.Background(), "python")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCountGrowsWithEachCreate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), nil, Options{})

	before, err := svc.Count(context.Background())
	require.NoError(t, err)

	const k = 5
	for i := 0; i < k; i++ {
		_, err := svc.Create(context.Background(), testInput(fmt.Sprintf("counted-%d", i)))
		require.NoError(t, err)
	}

	after, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before+k, after)
}

func TestCreateRejectsInvalidDomainInput(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, memory.NewReservationSet(), nil, Options{})

	_, err := svc.Create(context.Background(), CreateInput{
		Nickname:  strings.Repeat("x", 33),
		Name:      "Jose",
		BirthDate: valueobjects.NewDate(1990, time.January, 1),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// Nothing was reserved or persisted.
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
