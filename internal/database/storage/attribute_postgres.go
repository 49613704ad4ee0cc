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

// AttributeStorage реализует ports.AttributeStorage для тегов и ингредиентов
type AttributeStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewAttributeStorage(db *sqlx.DB, logger *slog.Logger) *AttributeStorage {
	return &AttributeStorage{db: db, logger: logger}
}

// GetOrCreateAttribute возвращает запись владельца с таким именем или создает новую
func (s *AttributeStorage) GetOrCreateAttribute(ctx context.Context, kind domain.AttributeKind, userID int64, name string) (*domain.Attribute, bool, error) {
	start := time.Now()

	t, err := tablesFor(kind)
	if err != nil {
		return nil, false, err
	}

	a, created, err := getOrCreateAttribute(ctx, s.db, t, userID, name)
	if err != nil {
		s.logger.Error("failed to get or create attribute", "kind", kind, "user_id", userID, "error", err)
		return nil, false, fmt.Errorf("ошибка при создании %s: %w", kind, err)
	}

	s.logger.Info("attribute resolved",
		"kind", kind,
		"id", a.ID,
		"created", created,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return a, created, nil
}

// ListAttributes возвращает записи владельца в порядке убывания имени
func (s *AttributeStorage) ListAttributes(ctx context.Context, kind domain.AttributeKind, userID int64, filter domain.AttributeFilter) ([]domain.Attribute, error) {
	start := time.Now()

	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT a.id, a.user_id, a.name FROM ` + t.table + ` a WHERE a.user_id = ?`
	if filter.AssignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM ` + t.link + ` l WHERE l.` + t.column + ` = a.id)`
	}
	query += ` ORDER BY a.name DESC, a.id DESC`

	items := []domain.Attribute{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), userID); err != nil {
		s.logger.Error("failed to list attributes", "kind", kind, "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка %s: %w", kind, err)
	}

	s.logger.Info("attributes listed",
		"kind", kind,
		"user_id", userID,
		"count", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}

// GetAttribute получает запись владельца по ID
func (s *AttributeStorage) GetAttribute(ctx context.Context, kind domain.AttributeKind, userID, id int64) (*domain.Attribute, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	var a domain.Attribute
	err = s.db.GetContext(ctx, &a,
		s.db.Rebind(`SELECT id, user_id, name FROM `+t.table+` WHERE id = ? AND user_id = ?`),
		id, userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get attribute", "kind", kind, "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении %s: %w", kind, err)
	}
	return &a, nil
}

// RenameAttribute меняет имя записи владельца
func (s *AttributeStorage) RenameAttribute(ctx context.Context, kind domain.AttributeKind, userID, id int64, name string) (*domain.Attribute, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE `+t.table+` SET name = ? WHERE id = ? AND user_id = ?`),
		name, id, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.FieldError("name", fmt.Sprintf("%s with this name already exists", kind))
		}
		s.logger.Error("failed to rename attribute", "kind", kind, "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при переименовании %s: %w", kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return &domain.Attribute{ID: id, UserID: userID, Name: name}, nil
}

// DeleteAttribute удаляет запись владельца; связи с рецептами удаляются каскадно
func (s *AttributeStorage) DeleteAttribute(ctx context.Context, kind domain.AttributeKind, userID, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		s.db.Rebind(`DELETE FROM `+t.table+` WHERE id = ? AND user_id = ?`),
		id, userID,
	)
	if err != nil {
		s.logger.Error("failed to delete attribute", "kind", kind, "id", id, "error", err)
		return fmt.Errorf("ошибка при удалении %s: %w", kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	s.logger.Info("attribute deleted", "kind", kind, "id", id)
	return nil
}
