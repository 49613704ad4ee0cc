package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Запросы пишутся с плейсхолдерами "?" и проходят через Rebind,
// поэтому один и тот же код работает и с Postgres, и с SQLite (в тестах).

// attributeTables — таблицы тега или ингредиента и таблица связи с рецептом
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

// isUniqueViolation распознает нарушение уникальности в Postgres и SQLite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgerrcode.UniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// withTx выполняет fn в транзакции; при ошибке транзакция откатывается
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// getOrCreateAttribute атомарно находит или создает запись по (user_id, name).
// Конкурентные вызовы не создают дублей благодаря UNIQUE (user_id, name).
func getOrCreateAttribute(ctx context.Context, q sqlx.ExtContext, t attributeTables, userID int64, name string) (*domain.Attribute, bool, error) {
	res, err := q.ExecContext(ctx,
		q.Rebind(`INSERT INTO `+t.table+` (user_id, name) VALUES (?, ?) ON CONFLICT (user_id, name) DO NOTHING`),
		userID, name,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert %s: %w", t.table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected %s: %w", t.table, err)
	}

	var a domain.Attribute
	err = sqlx.GetContext(ctx, q, &a,
		q.Rebind(`SELECT id, user_id, name FROM `+t.table+` WHERE user_id = ? AND name = ?`),
		userID, name,
	)
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", t.table, err)
	}
	return &a, affected > 0, nil
}
