package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-user-api/internal/domain"
)

func newService(repo *fakeRepo, hasher *fakeHasher) *UserService {
	return New(repo, hasher, zap.NewNop())
}

func mustCreate(t *testing.T, svc *UserService, name, email, password string) *domain.User {
	t.Helper()
	u, err := svc.Create(context.Background(), domain.CreateUserInput{
		Name: name, Email: email, Password: password,
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func TestCreatePersistsHashedPassword(t *testing.T) {
	repo := newFakeRepo()
	hasher := &fakeHasher{}
	svc := newService(repo, hasher)

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")

	require.NotEmpty(t, u.ID)
	require.Equal(t, "juan@example.com", u.Email)
	require.NotEqual(t, "passwordSeguro", u.PasswordHash)
	require.Equal(t, 1, hasher.calls)
	require.Equal(t, 1, repo.saves)
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	repo := newFakeRepo()
	hasher := &fakeHasher{}
	svc := newService(repo, hasher)

	mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	hasher.calls = 0
	repo.saves = 0

	_, err := svc.Create(context.Background(), domain.CreateUserInput{
		Name: "Impostor", Email: "juan@example.com", Password: "otraClave123",
	})

	require.ErrorIs(t, err, domain.ErrEmailTaken)
	require.Equal(t, domain.KindConflict, domain.KindOf(err))
	require.Zero(t, hasher.calls, "conflict must short-circuit before hashing")
	require.Zero(t, repo.saves, "conflict must not write")
}

func TestCreateNormalizesEmailCase(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeHasher{})

	u := mustCreate(t, svc, "Demo", "  Demo@Example.COM ", "passwordSeguro")
	require.Equal(t, "demo@example.com", u.Email)

	_, err := svc.Create(context.Background(), domain.CreateUserInput{
		Name: "Other", Email: "demo@example.com", Password: "passwordSeguro",
	})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestEmailFreedAfterRemove(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeHasher{})

	first := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	require.NoError(t, svc.Remove(context.Background(), first.ID))

	second := mustCreate(t, svc, "Juana", "juan@example.com", "passwordSeguro")
	require.NotEqual(t, first.ID, second.ID)
}

func TestRemovedUserIsInvisible(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeHasher{})
	ctx := context.Background()

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	require.NoError(t, svc.Remove(ctx, u.ID))

	_, err := svc.FindOne(ctx, u.ID)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	byEmail, err := svc.FindByEmail(ctx, "juan@example.com")
	require.NoError(t, err)
	require.Nil(t, byEmail)
}

func TestRemoveTwiceReportsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeHasher{})
	ctx := context.Background()

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	require.NoError(t, svc.Remove(ctx, u.ID))

	err := svc.Remove(ctx, u.ID)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRemoveUnknownIDReportsNotFound(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeHasher{})
	err := svc.Remove(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestFindByEmailAbsenceIsNotAnError(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeHasher{})
	u, err := svc.FindByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeHasher{})
	name := "X"
	_, err := svc.Update(context.Background(), "missing", domain.UpdateUserInput{Name: &name})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateToOwnEmailIsNotAConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeHasher{})
	ctx := context.Background()

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")

	email := "juan@example.com"
	got, err := svc.Update(ctx, u.ID, domain.UpdateUserInput{Email: &email})
	require.NoError(t, err)
	require.Equal(t, "juan@example.com", got.Email)
}

func TestUpdateEmailHeldByAnotherConflicts(t *testing.T) {
	repo := newFakeRepo()
	hasher := &fakeHasher{}
	svc := newService(repo, hasher)
	ctx := context.Background()

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	mustCreate(t, svc, "Ana", "ana@example.com", "passwordSeguro")
	repo.saves = 0
	hasher.calls = 0

	email := "ana@example.com"
	pw := "nuevaClave123"
	_, err := svc.Update(ctx, u.ID, domain.UpdateUserInput{Email: &email, Password: &pw})

	require.ErrorIs(t, err, domain.ErrEmailTaken)
	require.Zero(t, repo.saves, "conflict must not write")
	require.Zero(t, hasher.calls, "email check precedes any hashing")
}

func TestUpdatePasswordPolicyBeforeHashing(t *testing.T) {
	repo := newFakeRepo()
	hasher := &fakeHasher{}
	svc := newService(repo, hasher)
	ctx := context.Background()

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	repo.saves = 0
	hasher.calls = 0

	empty := ""
	_, err := svc.Update(ctx, u.ID, domain.UpdateUserInput{Password: &empty})
	require.ErrorIs(t, err, domain.ErrPasswordEmpty)
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	short := "short"
	_, err = svc.Update(ctx, u.ID, domain.UpdateUserInput{Password: &short})
	require.ErrorIs(t, err, domain.ErrPasswordTooShort)
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	require.Zero(t, hasher.calls, "invalid passwords must never be hashed")
	require.Zero(t, repo.saves, "invalid passwords must never be written")
}

func TestUpdatePartialLeavesOtherFieldsAlone(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeHasher{})
	ctx := context.Background()

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	originalHash := u.PasswordHash

	name := "Juan Carlos"
	got, err := svc.Update(ctx, u.ID, domain.UpdateUserInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Juan Carlos", got.Name)
	require.Equal(t, "juan@example.com", got.Email)
	require.Equal(t, originalHash, got.PasswordHash)
}

func TestUpdateAllFieldsTogether(t *testing.T) {
	repo := newFakeRepo()
	hasher := &fakeHasher{}
	svc := newService(repo, hasher)
	ctx := context.Background()

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	oldHash := u.PasswordHash

	name, email, pw := "Nuevo", "nuevo@example.com", "claveNueva123"
	got, err := svc.Update(ctx, u.ID, domain.UpdateUserInput{Name: &name, Email: &email, Password: &pw})
	require.NoError(t, err)
	require.Equal(t, "Nuevo", got.Name)
	require.Equal(t, "nuevo@example.com", got.Email)
	require.NotEqual(t, oldHash, got.PasswordHash)
	require.True(t, strings.HasPrefix(got.PasswordHash, "hashed:"))
}

func TestUpdatedUserNoLongerFoundByOldEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeHasher{})
	ctx := context.Background()

	u := mustCreate(t, svc, "Juan", "juan@example.com", "passwordSeguro")
	email := "nuevo@example.com"
	_, err := svc.Update(ctx, u.ID, domain.UpdateUserInput{Email: &email})
	require.NoError(t, err)

	old, err := svc.FindByEmail(ctx, "juan@example.com")
	require.NoError(t, err)
	require.Nil(t, old)

	fresh, err := svc.FindByEmail(ctx, "nuevo@example.com")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	require.Equal(t, u.ID, fresh.ID)
}

func TestCancelledContextSkipsWrite(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeHasher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, domain.CreateUserInput{
		Name: "Juan", Email: "juan@example.com", Password: "passwordSeguro",
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, repo.saves)
}

func TestStoreFailurePropagatesUnchanged(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("connection reset")
	svc := newService(repo, &fakeHasher{})

	_, err := svc.Create(context.Background(), domain.CreateUserInput{
		Name: "Juan", Email: "juan@example.com", Password: "passwordSeguro",
	})
	require.ErrorIs(t, err, repo.failWith)
	require.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestSaveRaceSurfacesConflict(t *testing.T) {
	// The pre-check can miss a concurrent writer; the store's unique
	// index reports it through Save and the caller still sees a conflict.
	repo := newFakeRepo()
	repo.saveErr = domain.ErrEmailTaken
	svc := newService(repo, &fakeHasher{})

	_, err := svc.Create(context.Background(), domain.CreateUserInput{
		Name: "Juan", Email: "juan@example.com", Password: "passwordSeguro",
	})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

// fakeRepo mimics the store's soft-delete semantics in memory.
type fakeRepo struct {
	users    map[string]domain.User
	saves    int
	failWith error // returned by every method when set
	saveErr  error // returned by the next write only, once
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]domain.User)}
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, nil
	}
	out := u
	return &out, nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if u.Email == email && !u.DeletedAt.Valid {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ListActive(_ context.Context) ([]domain.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []domain.User
	for _, u := range r.users {
		if !u.DeletedAt.Valid {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeRepo) Create(ctx context.Context, u *domain.User) error {
	return r.write(ctx, u)
}

func (r *fakeRepo) Update(ctx context.Context, u *domain.User) error {
	return r.write(ctx, u)
}

func (r *fakeRepo) write(_ context.Context, u *domain.User) error {
	if r.failWith != nil {
		return r.failWith
	}
	if r.saveErr != nil {
		err := r.saveErr
		r.saveErr = nil
		return err
	}
	for _, other := range r.users {
		if other.ID != u.ID && other.Email == u.Email && !other.DeletedAt.Valid {
			return domain.ErrEmailTaken
		}
	}
	r.saves++
	r.users[u.ID] = *u
	return nil
}

func (r *fakeRepo) SoftDelete(_ context.Context, id string) (int64, error) {
	if r.failWith != nil {
		return 0, r.failWith
	}
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return 0, nil
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.users[id] = u
	return 1, nil
}

type fakeHasher struct{ calls int }

func (h *fakeHasher) Hash(_ context.Context, plaintext string) (string, error) {
	h.calls++
	return "hashed:" + plaintext, nil
}
