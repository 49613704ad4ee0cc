package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Модели строк для GORM. Доменные типы остаются без gorm-тегов.

type userRow struct {
	ID           int64 `gorm:"primaryKey"`
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	LastLogin    *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (userRow) TableName() string { return "users" }

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		IsActive:     r.IsActive,
		IsStaff:      r.IsStaff,
		IsSuperuser:  r.IsSuperuser,
		LastLogin:    r.LastLogin,
		CreatedAt:    r.CreatedAt,
	}
}

type recipeRow struct {
	ID            int64 `gorm:"primaryKey"`
	UserID        int64
	Title         string
	TimeMinutes   int
	Price         domain.Price
	Description   string
	Link          string
	Image         *string
	ImageBlurHash *string `gorm:"column:image_blurhash"`
}

func (recipeRow) TableName() string { return "recipes" }

func (r recipeRow) toDomain() domain.Recipe {
	rec := domain.Recipe{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Description: r.Description,
		Link:        r.Link,
		Tags:        []domain.Attribute{},
		Ingredients: []domain.Attribute{},
	}
	if r.Image != nil {
		rec.Image = *r.Image
	}
	if r.ImageBlurHash != nil {
		rec.ImageBlurHash = *r.ImageBlurHash
	}
	return rec
}

type attributeRow struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64
	Name   string
}

type linkedAttributeRow struct {
	RecipeID int64
	ID       int64
	UserID   int64
	Name     string
}

type attributeTables struct {
	table  string
	link   string
	column string
}

func tablesFor(kind domain.AttributeKind) (attributeTables, error) {
	switch kind {
	case domain.KindTag:
		return attributeTables{table: "tags", link: "recipe_tags", column: "tag_id"}, nil
	case domain.KindIngredient:
		return attributeTables{table: "ingredients", link: "recipe_ingredients", column: "ingredient_id"}, nil
	default:
		return attributeTables{}, fmt.Errorf("unknown attribute kind %q", kind)
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}

// AdminStorage реализует ports.AdminStorage с использованием GORM.
// Запросы не ограничены владельцем.
type AdminStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewAdminStorage создает новый экземпляр AdminStorage
func NewAdminStorage(db *gorm.DB, logger *slog.Logger) *AdminStorage {
	return &AdminStorage{db: db, logger: logger}
}

// ListUsers возвращает всех пользователей в порядке id
func (s *AdminStorage) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении списка пользователей с GORM: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, nil
}

func (s *AdminStorage) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *AdminStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *AdminStorage) findUser(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where(cond, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении пользователя с GORM: %w", err)
	}
	u := row.toDomain()
	return &u, nil
}

// SaveUser создает пользователя при ID == 0, иначе обновляет все изменяемые поля
func (s *AdminStorage) SaveUser(ctx context.Context, user *domain.User) error {
	row := userRow{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
		IsStaff:      user.IsStaff,
		IsSuperuser:  user.IsSuperuser,
	}

	var err error
	if row.ID == 0 {
		err = s.db.WithContext(ctx).Create(&row).Error
	} else {
		res := s.db.WithContext(ctx).Model(&userRow{ID: row.ID}).
			Select("email", "name", "password_hash", "is_active", "is_staff", "is_superuser").
			Updates(&row)
		err = res.Error
		if err == nil && res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
	}
	if err != nil {
		if isDuplicate(err) {
			return domain.FieldError("email", "user with this email already exists")
		}
		s.logger.Error("admin failed to save user", "user_id", user.ID, "error", err)
		return fmt.Errorf("ошибка при сохранении пользователя с GORM: %w", err)
	}

	user.ID = row.ID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = row.CreatedAt
	}
	s.logger.Info("admin saved user", "user_id", user.ID)
	return nil
}

// ListRecipes возвращает рецепты всех пользователей, новые первыми
func (s *AdminStorage) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	var rows []recipeRow
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении списка рецептов с GORM: %w", err)
	}
	recipes := make([]domain.Recipe, 0, len(rows))
	for _, r := range rows {
		recipes = append(recipes, r.toDomain())
	}
	if err := s.loadAttributes(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *AdminStorage) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	var row recipeRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении рецепта с GORM: %w", err)
	}
	recipes := []domain.Recipe{row.toDomain()}
	if err := s.loadAttributes(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

func (s *AdminStorage) loadAttributes(ctx context.Context, recipes []domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]int64, len(recipes))
	index := make(map[int64]int, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		index[r.ID] = i
	}

	for _, kind := range []domain.AttributeKind{domain.KindTag, domain.KindIngredient} {
		t, err := tablesFor(kind)
		if err != nil {
			return err
		}
		var rows []linkedAttributeRow
		err = s.db.WithContext(ctx).
			Table(t.table).
			Select(t.link+".recipe_id, "+t.table+".id, "+t.table+".user_id, "+t.table+".name").
			Joins("JOIN "+t.link+" ON "+t.link+"."+t.column+" = "+t.table+".id").
			Where(t.link+".recipe_id IN ?", ids).
			Order(t.table + ".id").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("ошибка при получении связей %s с GORM: %w", t.link, err)
		}
		for _, row := range rows {
			r := &recipes[index[row.RecipeID]]
			a := domain.Attribute{ID: row.ID, UserID: row.UserID, Name: row.Name}
			if kind == domain.KindTag {
				r.Tags = append(r.Tags, a)
			} else {
				r.Ingredients = append(r.Ingredients, a)
			}
		}
	}
	return nil
}

// UpdateRecipe сохраняет скалярные поля рецепта; владелец не меняется
func (s *AdminStorage) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	res := s.db.WithContext(ctx).Model(&recipeRow{ID: recipe.ID}).Updates(map[string]any{
		"title":        recipe.Title,
		"time_minutes": recipe.TimeMinutes,
		"price":        recipe.Price,
		"description":  recipe.Description,
		"link":         recipe.Link,
	})
	if res.Error != nil {
		return fmt.Errorf("ошибка при обновлении рецепта с GORM: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	s.logger.Info("admin updated recipe", "id", recipe.ID)
	return nil
}

// DeleteRecipe удаляет рецепт и возвращает ключ его изображения
func (s *AdminStorage) DeleteRecipe(ctx context.Context, id int64) (string, error) {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row recipeRow
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if row.Image != nil {
			image = *row.Image
		}
		return tx.Delete(&recipeRow{}, id).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("ошибка при удалении рецепта с GORM: %w", err)
	}
	s.logger.Info("admin deleted recipe", "id", id)
	return image, nil
}

// ListAttributes возвращает теги или ингредиенты всех пользователей
func (s *AdminStorage) ListAttributes(ctx context.Context, kind domain.AttributeKind) ([]domain.Attribute, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	var rows []attributeRow
	if err := s.db.WithContext(ctx).Table(t.table).Order("name DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении списка %s с GORM: %w", t.table, err)
	}
	out := make([]domain.Attribute, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Attribute{ID: r.ID, UserID: r.UserID, Name: r.Name})
	}
	return out, nil
}

func (s *AdminStorage) GetAttribute(ctx context.Context, kind domain.AttributeKind, id int64) (*domain.Attribute, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	var row attributeRow
	if err := s.db.WithContext(ctx).Table(t.table).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении %s с GORM: %w", kind, err)
	}
	return &domain.Attribute{ID: row.ID, UserID: row.UserID, Name: row.Name}, nil
}

func (s *AdminStorage) RenameAttribute(ctx context.Context, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Table(t.table).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return nil, domain.FieldError("name", fmt.Sprintf("%s with this name already exists", kind))
		}
		return nil, fmt.Errorf("ошибка при переименовании %s с GORM: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return s.GetAttribute(ctx, kind, id)
}

func (s *AdminStorage) DeleteAttribute(ctx context.Context, kind domain.AttributeKind, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Table(t.table).Where("id = ?", id).Delete(&attributeRow{})
	if res.Error != nil {
		return fmt.Errorf("ошибка при удалении %s с GORM: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	s.logger.Info("admin deleted attribute", "kind", kind, "id", id)
	return nil
}
