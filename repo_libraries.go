package booktracker

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Libraries interface {
	repository.Repository[*Library]

	GetByUserID(ctx context.Context, userID uuid.UUID) (*Library, error)
	GetByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Library, error)
	GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*Library, error)
	GetOrCreateByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Library, error)
	AddBook(ctx context.Context, userID uuid.UUID, book Book) (*Library, error)
	AddBookTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, book Book) (*Library, error)
}

type libraries struct {
	repository.Repository[*Library]
	db *bun.DB
}

var (
	_ Libraries                       = (*libraries)(nil)
	_ repository.Repository[*Library] = (*libraries)(nil)
)

func NewLibrariesRepository(db *bun.DB) Libraries {
	repo := repository.NewRepository[*Library](db, repository.ModelHandlers[*Library]{
		NewRecord: func() *Library { return &Library{} },
		GetID: func(l *Library) uuid.UUID {
			if l == nil {
				return uuid.Nil
			}
			return l.ID
		},
		SetID: func(l *Library, id uuid.UUID) {
			if l != nil {
				l.ID = id
			}
		},
	})

	return &libraries{
		Repository: repo,
		db:         db,
	}
}

func (r *libraries) GetByUserID(ctx context.Context, userID uuid.UUID) (*Library, error) {
	return r.GetByUserIDTx(ctx, r.db, userID)
}

func (r *libraries) GetByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Library, error) {
	record := &Library{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

// GetOrCreateByUserID creates the library lazily so accounts that were
// registered before their library materialized still get one selected.
func (r *libraries) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*Library, error) {
	return r.GetOrCreateByUserIDTx(ctx, r.db, userID)
}

func (r *libraries) GetOrCreateByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Library, error) {
	record, err := r.GetByUserIDTx(ctx, tx, userID)
	if err == nil {
		return record, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record = &Library{
		ID:     uuid.New(),
		UserID: &userID,
		Books:  []Book{},
	}

	return r.Repository.CreateTx(ctx, tx, record)
}

func (r *libraries) AddBook(ctx context.Context, userID uuid.UUID, book Book) (*Library, error) {
	return r.AddBookTx(ctx, r.db, userID, book)
}

func (r *libraries) AddBookTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, book Book) (*Library, error) {
	record, err := r.GetOrCreateByUserIDTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if record.Contains(book.GoogleBooksID) {
		return record, nil
	}

	record.AddBook(book)

	return r.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
}
