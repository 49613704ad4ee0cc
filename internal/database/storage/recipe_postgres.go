package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/jmoiron/sqlx"
)

const recipeColumns = `r.id, r.user_id, r.title, r.time_minutes, r.price, r.description, r.link,
	COALESCE(r.image, '') AS image, COALESCE(r.image_blurhash, '') AS image_blurhash`

// RecipeStorage реализует ports.RecipeStorage поверх sqlx
type RecipeStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewRecipeStorage(db *sqlx.DB, logger *slog.Logger) *RecipeStorage {
	return &RecipeStorage{db: db, logger: logger}
}

// CreateRecipe сохраняет рецепт вместе с тегами и ингредиентами в одной транзакции
func (s *RecipeStorage) CreateRecipe(ctx context.Context, recipe *domain.Recipe, tags, ingredients domain.AttributeUpdate) error {
	start := time.Now()

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &recipe.ID, tx.Rebind(`
			INSERT INTO recipes (user_id, title, time_minutes, price, description, link)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id`),
			recipe.UserID, recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Description, recipe.Link,
		)
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return s.saveAttributes(ctx, tx, recipe, tags, ingredients)
	})
	if err != nil {
		s.logger.Error("failed to create recipe", "user_id", recipe.UserID, "error", err)
		return fmt.Errorf("ошибка при создании рецепта: %w", err)
	}

	s.logger.Info("recipe created",
		"id", recipe.ID,
		"user_id", recipe.UserID,
		"title", recipe.Title,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// UpdateRecipe сохраняет поля рецепта и применяет изменения связей
func (s *RecipeStorage) UpdateRecipe(ctx context.Context, recipe *domain.Recipe, tags, ingredients domain.AttributeUpdate) error {
	start := time.Now()

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE recipes
			SET title = ?, time_minutes = ?, price = ?, description = ?, link = ?
			WHERE id = ? AND user_id = ?`),
			recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Description, recipe.Link,
			recipe.ID, recipe.UserID,
		)
		if err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return s.saveAttributes(ctx, tx, recipe, tags, ingredients)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to update recipe", "id", recipe.ID, "error", err)
		return fmt.Errorf("ошибка при обновлении рецепта: %w", err)
	}

	s.logger.Info("recipe updated",
		"id", recipe.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// saveAttributes применяет оба набора связей и перечитывает их в рецепт
func (s *RecipeStorage) saveAttributes(ctx context.Context, tx *sqlx.Tx, recipe *domain.Recipe, tags, ingredients domain.AttributeUpdate) error {
	if err := applyAttributes(ctx, tx, domain.KindTag, recipe, tags); err != nil {
		return err
	}
	if err := applyAttributes(ctx, tx, domain.KindIngredient, recipe, ingredients); err != nil {
		return err
	}
	recipes := []domain.Recipe{*recipe}
	if err := loadAttributes(ctx, tx, recipes); err != nil {
		return err
	}
	recipe.Tags, recipe.Ingredients = recipes[0].Tags, recipes[0].Ingredients
	return nil
}

// applyAttributes заменяет связи рецепта указанного вида.
// Непереданное поле (Set=false) связи не меняет.
func applyAttributes(ctx context.Context, tx *sqlx.Tx, kind domain.AttributeKind, recipe *domain.Recipe, upd domain.AttributeUpdate) error {
	if !upd.Set {
		return nil
	}
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+t.link+` WHERE recipe_id = ?`), recipe.ID); err != nil {
		return fmt.Errorf("clear %s: %w", t.link, err)
	}

	for _, name := range upd.UniqueNames() {
		a, _, err := getOrCreateAttribute(ctx, tx, t, recipe.UserID, name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO `+t.link+` (recipe_id, `+t.column+`, user_id) VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING`),
			recipe.ID, a.ID, recipe.UserID,
		)
		if err != nil {
			return fmt.Errorf("link %s: %w", t.link, err)
		}
	}
	return nil
}

type linkedAttribute struct {
	RecipeID int64 `db:"recipe_id"`
	domain.Attribute
}

// loadAttributes заполняет теги и ингредиенты для набора рецептов двумя запросами на вид
func loadAttributes(ctx context.Context, q sqlx.ExtContext, recipes []domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, len(recipes))
	index := make(map[int64]int, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		index[recipes[i].ID] = i
		recipes[i].Tags = []domain.Attribute{}
		recipes[i].Ingredients = []domain.Attribute{}
	}

	for _, kind := range []domain.AttributeKind{domain.KindTag, domain.KindIngredient} {
		t, err := tablesFor(kind)
		if err != nil {
			return err
		}
		query, args, err := sqlx.In(`
			SELECT l.recipe_id, a.id, a.user_id, a.name
			FROM `+t.link+` l
			JOIN `+t.table+` a ON a.id = l.`+t.column+`
			WHERE l.recipe_id IN (?)
			ORDER BY a.id`, ids)
		if err != nil {
			return fmt.Errorf("build %s query: %w", t.link, err)
		}

		var rows []linkedAttribute
		if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
			return fmt.Errorf("select %s: %w", t.link, err)
		}
		for _, row := range rows {
			r := &recipes[index[row.RecipeID]]
			if kind == domain.KindTag {
				r.Tags = append(r.Tags, row.Attribute)
			} else {
				r.Ingredients = append(r.Ingredients, row.Attribute)
			}
		}
	}
	return nil
}

// GetRecipe получает рецепт владельца по ID
func (s *RecipeStorage) GetRecipe(ctx context.Context, userID, id int64) (*domain.Recipe, error) {
	start := time.Now()

	var recipe domain.Recipe
	err := s.db.GetContext(ctx, &recipe,
		s.db.Rebind(`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ? AND r.user_id = ?`),
		id, userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("recipe not found", "id", id, "user_id", userID)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get recipe", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении рецепта: %w", err)
	}

	recipes := []domain.Recipe{recipe}
	if err := loadAttributes(ctx, s.db, recipes); err != nil {
		return nil, fmt.Errorf("ошибка при получении связей рецепта: %w", err)
	}

	s.logger.Info("recipe retrieved",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &recipes[0], nil
}

// ListRecipes возвращает рецепты владельца, новые первыми.
// Внутри одного фильтра id объединяются через ИЛИ, фильтры между собой через И.
func (s *RecipeStorage) ListRecipes(ctx context.Context, userID int64, filter domain.RecipeFilter) ([]domain.Recipe, error) {
	start := time.Now()

	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.user_id = ?`
	args := []any{userID}
	if len(filter.TagIDs) > 0 {
		query += ` AND EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = r.id AND rt.tag_id IN (?))`
		args = append(args, filter.TagIDs)
	}
	if len(filter.IngredientIDs) > 0 {
		query += ` AND EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = r.id AND ri.ingredient_id IN (?))`
		args = append(args, filter.IngredientIDs)
	}
	query += ` ORDER BY r.id DESC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при построении запроса рецептов: %w", err)
	}

	recipes := []domain.Recipe{}
	if err := s.db.SelectContext(ctx, &recipes, s.db.Rebind(query), args...); err != nil {
		s.logger.Error("failed to list recipes", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка рецептов: %w", err)
	}
	if err := loadAttributes(ctx, s.db, recipes); err != nil {
		return nil, fmt.Errorf("ошибка при получении связей рецептов: %w", err)
	}

	s.logger.Info("recipes listed",
		"user_id", userID,
		"count", len(recipes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return recipes, nil
}

// DeleteRecipe удаляет рецепт владельца и возвращает ключ его изображения
func (s *RecipeStorage) DeleteRecipe(ctx context.Context, userID, id int64) (string, error) {
	var image string
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &image,
			tx.Rebind(`SELECT COALESCE(image, '') FROM recipes WHERE id = ? AND user_id = ?`),
			id, userID,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("select recipe image: %w", err)
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM recipes WHERE id = ? AND user_id = ?`), id, userID)
		if err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		s.logger.Error("failed to delete recipe", "id", id, "error", err)
		return "", fmt.Errorf("ошибка при удалении рецепта: %w", err)
	}

	s.logger.Info("recipe deleted", "id", id, "user_id", userID)
	return image, nil
}

// SetRecipeImage сохраняет ключ изображения и blurhash, возвращает ключ предыдущего изображения
func (s *RecipeStorage) SetRecipeImage(ctx context.Context, userID, id int64, key, blurHash string) (string, error) {
	var previous string
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &previous,
			tx.Rebind(`SELECT COALESCE(image, '') FROM recipes WHERE id = ? AND user_id = ?`),
			id, userID,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("select recipe image: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`UPDATE recipes SET image = NULLIF(?, ''), image_blurhash = NULLIF(?, '') WHERE id = ? AND user_id = ?`),
			key, blurHash, id, userID,
		)
		if err != nil {
			return fmt.Errorf("update recipe image: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		s.logger.Error("failed to set recipe image", "id", id, "error", err)
		return "", fmt.Errorf("ошибка при сохранении изображения рецепта: %w", err)
	}

	s.logger.Info("recipe image updated", "id", id, "key", key)
	return previous, nil
}
