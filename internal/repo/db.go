package repo

import (
	"DonationHub/internal/model"
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// InitDB открывает gorm-подключение по DSN и прогоняет миграции.
// postgres:// или "host=..." — PostgreSQL, иначе DSN считается путём к файлу SQLite.
func InitDB(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var dial gorm.Dialector
	switch {
	case isPostgresDSN(dsn):
		dial = postgres.Open(dsn)
	default:
		if dsn == "" {
			dsn = "donations.db"
		}
		// modernc регистрирует драйвер под именем "sqlite" (без cgo)
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&model.Donation{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func isMongoDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "mongodb://") || strings.HasPrefix(dsn, "mongodb+srv://")
}

// Open выбирает реализацию DonationRepository по схеме DSN.
// Возвращаемая функция закрывает подключение.
func Open(ctx context.Context, dsn, mongoDatabase string) (DonationRepository, func(context.Context) error, error) {
	if isMongoDSN(dsn) {
		r, err := NewMongoDonationRepository(ctx, dsn, mongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}

	db, err := InitDB(dsn)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return NewDonationRepository(db), closeFn, nil
}
