package feedback

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
)

// MockCommentRepository is a mock implementation of domain.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetByPerfumeAndAuthor(ctx context.Context, perfumeID, authorID uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, perfumeID, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPerfumeID(ctx context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error) {
	args := m.Called(ctx, perfumeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) PerfumeIDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPerfumeLookup is a mock implementation of PerfumeLookup
type MockPerfumeLookup struct {
	mock.Mock
}

func (m *MockPerfumeLookup) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCommentCache is a mock implementation of CommentCache
type MockCommentCache struct {
	mock.Mock
}

func (m *MockCommentCache) Generation(ctx context.Context, perfumeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, perfumeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentCache) GetCommentsList(ctx context.Context, perfumeID uuid.UUID, gen int64) ([]*domain.Comment, error) {
	args := m.Called(ctx, perfumeID, gen)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentCache) SetCommentsList(ctx context.Context, perfumeID uuid.UUID, gen int64, comments []*domain.Comment) error {
	args := m.Called(ctx, perfumeID, gen, comments)
	return args.Error(0)
}

func (m *MockCommentCache) InvalidatePerfume(ctx context.Context, perfumeID uuid.UUID) error {
	args := m.Called(ctx, perfumeID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

// memoryStore is an in-memory comment store and perfume catalog. It does not
// enforce the (perfume, author) uniqueness itself, so tests exercise the service.
type memoryStore struct {
	mu       sync.Mutex
	perfumes map[uuid.UUID]bool
	comments []*domain.Comment
	names    map[uuid.UUID]string
}

func newMemoryStore(perfumes ...uuid.UUID) *memoryStore {
	s := &memoryStore{
		perfumes: make(map[uuid.UUID]bool),
		names:    make(map[uuid.UUID]string),
	}
	for _, id := range perfumes {
		s.perfumes[id] = true
	}
	return s
}

func (s *memoryStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perfumes[id], nil
}

func (s *memoryStore) Create(_ context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.perfumes[comment.PerfumeID] {
		return domain.ErrProductNotFound
	}
	comment.ID = uuid.New()
	comment.AuthorName = s.names[comment.AuthorID]
	stored := *comment
	s.comments = append(s.comments, &stored)
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.comments {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrCommentNotFound
}

func (s *memoryStore) GetByPerfumeAndAuthor(_ context.Context, perfumeID, authorID uuid.UUID) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.comments {
		if c.PerfumeID == perfumeID && c.AuthorID == authorID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrCommentNotFound
}

func (s *memoryStore) ListByPerfumeID(_ context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.Comment{}
	for _, c := range s.comments {
		if c.PerfumeID == perfumeID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memoryStore) PerfumeIDsByAuthor(_ context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]bool)
	out := []uuid.UUID{}
	for _, c := range s.comments {
		if c.AuthorID == authorID && !seen[c.PerfumeID] {
			seen[c.PerfumeID] = true
			out = append(out, c.PerfumeID)
		}
	}
	return out, nil
}

func (s *memoryStore) Update(_ context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.comments {
		if c.ID == comment.ID {
			stored := *comment
			s.comments[i] = &stored
			return nil
		}
	}
	return domain.ErrCommentNotFound
}

func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.comments {
		if c.ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return nil
		}
	}
	return domain.ErrCommentNotFound
}

func (s *memoryStore) count(perfumeID, authorID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.comments {
		if c.PerfumeID == perfumeID && c.AuthorID == authorID {
			n++
		}
	}
	return n
}

// gatedStore parks the first ListByPerfumeID call after it has read its rows,
// signalling on read and waiting for release before returning them.
type gatedStore struct {
	*memoryStore
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore(perfumes ...uuid.UUID) *gatedStore {
	return &gatedStore{
		memoryStore: newMemoryStore(perfumes...),
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) ListByPerfumeID(ctx context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error) {
	comments, err := g.memoryStore.ListByPerfumeID(ctx, perfumeID)
	g.once.Do(func() {
		close(g.read)
		<-g.release
	})
	return comments, err
}

// missCache never holds anything
type missCache struct{}

func (missCache) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (missCache) GetCommentsList(context.Context, uuid.UUID, int64) ([]*domain.Comment, error) {
	return nil, domain.ErrNotFound
}

func (missCache) SetCommentsList(context.Context, uuid.UUID, int64, []*domain.Comment) error {
	return nil
}

func (missCache) InvalidatePerfume(context.Context, uuid.UUID) error { return nil }

// recordingPublisher keeps every published payload
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CommentEvent
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, data []byte) error {
	var event domain.CommentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
