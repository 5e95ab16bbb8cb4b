package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio-api/internal/application/auth"
	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain"
	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/pkg/jwt"
)

type memUsers struct{ items map[string]*entity.User }

func (r *memUsers) Create(u *entity.User) error { r.items[u.ID] = u; return nil }
func (r *memUsers) GetByID(id string) (*entity.User, error) { return r.items[id], nil }
func (r *memUsers) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

const testSecret = "test-secret-key-for-unit-tests"

func newUC() (*auth.AuthUseCase, *memUsers) {
	users := &memUsers{items: map[string]*entity.User{}}
	uc := auth.NewAuthUseCase(users, auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "facturio-test",
	})
	return uc, users
}

func TestRegister_PuisLogin(t *testing.T) {
	uc, users := newUC()

	resp, err := uc.Register(context.Background(), dto.RegisterRequest{
		FirstName: "Jean",
		LastName:  "Dupont",
		Email:     "jean@exemple.fr",
		Password:  "s3cret-solide",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jean@exemple.fr", resp.Email)

	// Le jeton est valide et porte l'identifiant de l'utilisateur.
	userID, err := jwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, userID)

	// Le mot de passe n'est jamais stocké en clair.
	stocke := users.items[resp.UserID]
	assert.NotEqual(t, "s3cret-solide", stocke.PasswordHash)

	connecte, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "jean@exemple.fr",
		Password: "s3cret-solide",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, connecte.UserID)
}

func TestRegister_EmailDejaPris(t *testing.T) {
	uc, _ := newUC()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "jean@exemple.fr", Password: "x"})
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), dto.RegisterRequest{Email: "jean@exemple.fr", Password: "y"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyUsed)
}

func TestRegister_ChampsRequis(t *testing.T) {
	uc, _ := newUC()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "jean@exemple.fr"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin_UtilisateurInconnu(t *testing.T) {
	uc, _ := newUC()
	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "absent@exemple.fr", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_MauvaisMotDePasse(t *testing.T) {
	uc, _ := newUC()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "jean@exemple.fr", Password: "bon"})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "jean@exemple.fr", Password: "mauvais"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
