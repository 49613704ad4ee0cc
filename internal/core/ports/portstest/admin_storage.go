// Package portstest содержит реализации портов в памяти для тестов.
package portstest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/GoArmGo/RecipeApp/internal/domain"
)

// AdminStorage — ports.AdminStorage в памяти
type AdminStorage struct {
	mu         sync.Mutex
	nextID     int64
	users      map[int64]domain.User
	recipes    map[int64]domain.Recipe
	attributes map[domain.AttributeKind]map[int64]domain.Attribute
}

func NewAdminStorage() *AdminStorage {
	return &AdminStorage{
		users:   map[int64]domain.User{},
		recipes: map[int64]domain.Recipe{},
		attributes: map[domain.AttributeKind]map[int64]domain.Attribute{
			domain.KindTag:        {},
			domain.KindIngredient: {},
		},
	}
}

func (s *AdminStorage) id() int64 {
	s.nextID++
	return s.nextID
}

// AddRecipe кладет рецепт напрямую, минуя API
func (s *AdminStorage) AddRecipe(r domain.Recipe) domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.recipes[r.ID] = r
	return r
}

// AddAttribute кладет тег или ингредиент напрямую
func (s *AdminStorage) AddAttribute(kind domain.AttributeKind, a domain.Attribute) domain.Attribute {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.attributes[kind][a.ID] = a
	return a
}

func (s *AdminStorage) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *AdminStorage) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *AdminStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *AdminStorage) SaveUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email && u.ID != user.ID {
			return domain.FieldError("email", "user with this email already exists")
		}
	}
	if user.ID == 0 {
		user.ID = s.id()
	} else if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	s.users[user.ID] = *user
	return nil
}

func (s *AdminStorage) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *AdminStorage) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *AdminStorage) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[recipe.ID]; !ok {
		return domain.ErrNotFound
	}
	s.recipes[recipe.ID] = *recipe
	return nil
}

func (s *AdminStorage) DeleteRecipe(ctx context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	delete(s.recipes, id)
	return r.Image, nil
}

func (s *AdminStorage) ListAttributes(ctx context.Context, kind domain.AttributeKind) ([]domain.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Attribute, 0, len(s.attributes[kind]))
	for _, a := range s.attributes[kind] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (s *AdminStorage) GetAttribute(ctx context.Context, kind domain.AttributeKind, id int64) (*domain.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attributes[kind][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *AdminStorage) RenameAttribute(ctx context.Context, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attributes[kind][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, other := range s.attributes[kind] {
		if other.ID != id && other.UserID == a.UserID && other.Name == name {
			return nil, domain.FieldError("name", fmt.Sprintf("%s with this name already exists", kind))
		}
	}
	a.Name = name
	s.attributes[kind][id] = a
	return &a, nil
}

func (s *AdminStorage) DeleteAttribute(ctx context.Context, kind domain.AttributeKind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attributes[kind][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.attributes[kind], id)
	return nil
}
