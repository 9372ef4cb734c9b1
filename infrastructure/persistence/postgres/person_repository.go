package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"pessoas-backend/application/ports"
	"pessoas-backend/domain/core/entities"
	"pessoas-backend/domain/core/valueobjects"
	apperrors "pessoas-backend/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

const searchLimit = 50

// PersonRepository is the durable person store backed by Postgres. The
// nickname column carries a uniqueness constraint as a backstop only; the
// reservation store is the primary gate.
type PersonRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPersonRepository creates a Postgres-backed person repository
func NewPersonRepository(pool *pgxpool.Pool, logger *zap.Logger) *PersonRepository {
	return &PersonRepository{
		pool:   pool,
		logger: logger,
	}
}

var _ ports.PersonRepository = (*PersonRepository)(nil)

// Insert persists a new person record together with its derived search text.
func (r *PersonRepository) Insert(ctx context.Context, person *entities.Person) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pessoas (id, apelido, nome, nascimento, stack, search_text)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		person.ID.String(),
		person.Nickname,
		person.Name,
		person.BirthDate.Time(),
		person.Stack,
		person.SearchText(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// The backstop constraint tripped despite a successful
			// reservation. That points at a reservation bug, not user error.
			r.logger.Error("backstop uniqueness constraint rejected insert",
				zap.String("nickname", person.Nickname),
				zap.Error(err),
			)
			return apperrors.NewStoreConflictError("insert person", err)
		}
		return apperrors.NewStoreError("insert person", err)
	}
	return nil
}

// GetByID retrieves a person by identifier
func (r *PersonRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id::text, apelido, nome, nascimento, stack
		 FROM pessoas WHERE id = $1`,
		id.String(),
	)
	person, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("person")
		}
		return nil, apperrors.NewStoreError("get person", err)
	}
	return person, nil
}

// Search returns up to 50 persons whose search text contains the lowercased
// term, in store-defined order.
func (r *PersonRepository) Search(ctx context.Context, term string) ([]*entities.Person, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, apelido, nome, nascimento, stack
		 FROM pessoas
		 WHERE search_text LIKE '%' || $1 || '%'
		 LIMIT $2`,
		strings.ToLower(term),
		searchLimit,
	)
	if err != nil {
		return nil, apperrors.NewStoreError("search persons", err)
	}
	defer rows.Close()

	persons := make([]*entities.Person, 0)
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scan person", err)
		}
		persons = append(persons, person)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("search persons", err)
	}
	return persons, nil
}

// Count returns the total number of person records
func (r *PersonRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(id) FROM pessoas`).Scan(&count); err != nil {
		return 0, apperrors.NewStoreError("count persons", err)
	}
	return count, nil
}

// scanPerson maps one row onto the domain entity.
func scanPerson(row pgx.Row) (*entities.Person, error) {
	var (
		idStr    string
		nickname string
		name     string
		birth    time.Time
		stack    []string
	)
	if err := row.Scan(&idStr, &nickname, &name, &birth, &stack); err != nil {
		return nil, err
	}

	id, err := valueobjects.NewPersonIDFromString(idStr)
	if err != nil {
		return nil, err
	}
	return &entities.Person{
		ID:        id,
		Nickname:  nickname,
		Name:      name,
		BirthDate: valueobjects.NewDateFromTime(birth),
		Stack:     stack,
	}, nil
}
