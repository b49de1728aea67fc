// Package storage реализует хранилище данных на основе PostgreSQL.
// Доступ к данным идёт через ORM (gorm) поверх драйвера pgx;
// пакет предоставляет методы создания, чтения, обновления, удаления
// и агрегирования записей по всем доменам приложения.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound возвращается, когда запись отсутствует или принадлежит другому пользователю.
var ErrNotFound = errors.New("record not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
// Db — сырое соединение database/sql (используется миграциями и health-check),
// Gorm — ORM-сессия поверх того же соединения.
type Storage struct {
	Db   *sql.DB
	Gorm *gorm.DB
}

// New создаёт подключение к PostgreSQL через pgx и открывает поверх него gorm.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		Db:   db,
		Gorm: gormDB,
	}, nil
}

// Ping проверяет готовность базы данных.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.Db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение с базой данных.
func (s *Storage) Close() error {
	return s.Db.Close()
}

// wrapNotFound приводит gorm.ErrRecordNotFound к ErrNotFound,
// остальные ошибки оборачивает с именем операции.
func wrapNotFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
