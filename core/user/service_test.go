package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

// ctxAwareRepo records the context it is queried with.
type ctxAwareRepo struct {
	user.Repository
	lastCtx context.Context
}

func (repo *ctxAwareRepo) CheckEmailUniqueness(ctx context.Context, email string) error {
	repo.lastCtx = ctx
	return repo.Repository.CheckEmailUniqueness(ctx, email)
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	enLocale := en.New()
	translator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	require.True(t, found)
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func Test_service_CheckEmailUniqueness_usesCallerContext(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := &ctxAwareRepo{Repository: inmemdb.NewUserRepository(db)}
	svc := user.NewService(repo)
	validate := newTestValidator(t)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")

	nu := user.NewUser{
		Email:    "kofi@test.cd",
		Name:     "Kofi Mensah",
		Password: "Bienvenue1!",
	}
	require.NoError(t, nu.Validate(ctx, validate, svc))
	require.NotNil(t, repo.lastCtx)
	assert.Equal(t, "req-1", repo.lastCtx.Value(ctxKey{}))

	// a cancelled request context reaches the store as-is
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_ = nu.Validate(cancelled, validate, svc)
	assert.ErrorIs(t, repo.lastCtx.Err(), context.Canceled)
}

func Test_service_CheckEmailUniqueness_duplicate(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewUserRepository(db)
	svc := user.NewService(repo)
	validate := newTestValidator(t)
	ctx := context.Background()

	_, err = svc.Create(ctx, user.NewUser{
		Email:    "zola@test.cd",
		Name:     "Zola Banda",
		Password: "Bienvenue1!",
	})
	require.NoError(t, err)

	nu := user.NewUser{
		Email:    "Zola@Test.cd",
		Name:     "Zola B",
		Password: "Bienvenue1!",
	}
	err = nu.Validate(ctx, validate, svc)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []core.FieldError{{Field: "email", Error: user.ErrEmailExists.Error()}}, vErr.Fields)
}
