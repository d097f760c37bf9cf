package service

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go-user-api/internal/core/cache"
	"go-user-api/internal/domain"
	"go-user-api/pkg/utils"
)

var (
	usersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "users_created_total", Help: "Accounts created"})
	usersRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "users_removed_total", Help: "Accounts soft-deleted"})
)

func init() { prometheus.MustRegister(usersCreated, usersRemoved) }

// UserService owns the user lifecycle rules: email uniqueness, active-only
// reads, partial updates with re-validation, soft deletion.
//
// The service is stateless; the store is the only shared state. The email
// pre-check here is a fast path for a friendly conflict answer. Two racing
// creates can both pass it, so the unique index behind the repository's
// writes is what actually holds the invariant, and the repo maps that
// violation back to domain.ErrEmailTaken.
type UserService struct {
	repo   domain.UserRepository
	hasher domain.PasswordHasher
	cache  *cache.Cache
	ttl    time.Duration
	log    *zap.Logger
}

func New(repo domain.UserRepository, hasher domain.PasswordHasher, log *zap.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log}
}

// WithCache enables a read-through cache for id lookups. Mutations and
// removals invalidate the entry so retired users never resurface.
func (s *UserService) WithCache(c *cache.Cache, ttl time.Duration) *UserService {
	s.cache = c
	s.ttl = ttl
	return s
}

// Create registers a new account. On an email already held by an active
// user it fails before hashing or writing anything.
func (s *UserService) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	}
	// A caller gone away must not trigger a fresh write.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	usersCreated.Inc()
	s.log.Info("user created", zap.String("id", u.ID))
	return u, nil
}

// FindAll returns every active user.
func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListActive(ctx)
}

// FindOne returns the active user with the given id or ErrUserNotFound.
func (s *UserService) FindOne(ctx context.Context, id string) (*domain.User, error) {
	if s.cache == nil {
		return s.lookup(ctx, id)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, userKey(id), s.ttl,
		func(ctx context.Context) (*domain.User, error) { return s.lookup(ctx, id) })
}

func (s *UserService) lookup(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// FindByEmail returns the active holder of the email, or (nil, nil) when
// nobody holds it. Absence is a normal answer here, not an error: this is
// the same lookup Create and Update use as their uniqueness pre-check.
// It deliberately bypasses the cache so the pre-check sees the freshest
// state the store can give.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

// Update applies a partial change to an active user. Checks run in a fixed
// order, each aborting the whole operation: existence, then email
// uniqueness (updating to one's own current email is allowed), then
// password policy. The policy check precedes the hash call, so an invalid
// password never costs a hash; and nothing is persisted until every staged
// field has passed.
func (s *UserService) Update(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error) {
	u, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != u.Email {
			holder, err := s.repo.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if holder != nil && holder.ID != u.ID {
				return nil, domain.ErrEmailTaken
			}
			u.Email = email
		}
	}

	if in.Password != nil {
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx, u.ID)
	return u, nil
}

// Remove retires the user via soft delete. The row stays in storage for
// audit; no path in this service ever deletes it physically or brings it
// back. A second Remove on the same id reports not found, because the
// first one already moved the row out of the delete's scope.
func (s *UserService) Remove(ctx context.Context, id string) error {
	affected, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	s.invalidate(ctx, id)
	usersRemoved.Inc()
	s.log.Info("user removed", zap.String("id", id))
	return nil
}

func (s *UserService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, userKey(id)); err != nil {
		s.log.Warn("cache invalidate failed", zap.String("id", id), zap.Error(err))
	}
}

func userKey(id string) string { return "user:id:" + id }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
