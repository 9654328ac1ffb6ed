package book

import (
	"context"
	"errors"
	"strings"

	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/book/entity"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/book/repo"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/pkg/utilities"
)

// Store is the persistence the service depends on; *repo.Repo implements it.
type Store interface {
	Create(ctx context.Context, b *entity.Book) error
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	Update(ctx context.Context, id string, p entity.Patch) (*entity.Book, error)
	Delete(ctx context.Context, id string) (*entity.Book, error)
}

// Service encapsulates business logic for books and depends on a repo.
type Service struct {
	repo  Store
	newID func() string
}

// NewService constructs a Service with the provided repository.
func NewService(r Store) *Service {
	return &Service{repo: r, newID: utilities.NewSnowflakeID}
}

var ErrNotFound = errors.New("not found")

// Create stores a new book on behalf of createdBy.
func (s *Service) Create(ctx context.Context, in *entity.Book, createdBy string) (*entity.Book, error) {
	b := entity.NewBook(
		s.newID(),
		strings.TrimSpace(in.Title),
		strings.TrimSpace(in.Author),
		strings.TrimSpace(in.Genre),
		strings.TrimSpace(in.PublishedDate),
		strings.TrimSpace(in.Description),
		createdBy,
	)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns a book by id.
func (s *Service) Get(ctx context.Context, id string) (*entity.Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	return b, mapErr(err)
}

// Update changes the fields set in p.
func (s *Service) Update(ctx context.Context, id string, p entity.Patch) (*entity.Book, error) {
	b, err := s.repo.Update(ctx, id, p)
	return b, mapErr(err)
}

// Delete removes a book by id and returns what was removed.
func (s *Service) Delete(ctx context.Context, id string) (*entity.Book, error) {
	b, err := s.repo.Delete(ctx, id)
	return b, mapErr(err)
}

func mapErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
