// Пакет repository — слой доступа к метаданным записей телефонов.
// Контракт ключ-значение: поиск по ключу и upsert целой записи.
// Основная реализация — PostgreSQL через pgx (чистый SQL, без ORM),
// для разработки и тестов есть in-memory реализация.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/UmanetAlexandru/pro-assist/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrSerialization — ошибка кодирования/декодирования под-объекта услуг.
	ErrSerialization = errors.New("ошибка сериализации услуг")
)

// RecordRepository — интерфейс доступа к записям телефонов.
type RecordRepository interface {
	// Find возвращает запись по ключу или ErrNotFound.
	Find(ctx context.Context, key string) (*model.PhoneRecord, error)
	// Upsert создаёт запись (createdAt фиксируется один раз) либо
	// безусловно перезаписывает все скалярные поля существующей,
	// обновляя updatedAt. Возвращает итоговое состояние записи.
	Upsert(ctx context.Context, key string, info *model.PhoneInfo) (*model.PhoneRecord, error)
}

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
