package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/GoArmGo/RecipeApp/internal/adapter/storage/local"
	"github.com/GoArmGo/RecipeApp/internal/core/ports/portstest"
	"github.com/GoArmGo/RecipeApp/internal/database/dbtest"
	"github.com/GoArmGo/RecipeApp/internal/database/storage"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/logger"
	"github.com/GoArmGo/RecipeApp/internal/validation"
	"github.com/stretchr/testify/require"
)

type env struct {
	users      UserUseCase
	recipes    RecipeUseCase
	attributes AttributeUseCase
	files      *local.Storage
	events     *portstest.Publisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	log := logger.Discard()
	v := validation.New()

	files, err := local.NewStorage(filepath.Join(t.TempDir(), "media"), "/media/", log)
	require.NoError(t, err)
	events := &portstest.Publisher{}

	return &env{
		users:      NewUserUseCase(storage.NewUserStorage(db, log), log),
		recipes:    NewRecipeUseCase(storage.NewRecipeStorage(db, log), files, events, v, log),
		attributes: NewAttributeUseCase(storage.NewAttributeStorage(db, log), v, log),
		files:      files,
		events:     events,
	}
}

func (e *env) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), email, "testpass123", domain.UserFields{})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T {
	return &v
}

func sampleInput(title string) domain.RecipeInput {
	price := domain.Price(500)
	return domain.RecipeInput{
		Title:       ptr(title),
		TimeMinutes: ptr(10),
		Price:       &price,
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
