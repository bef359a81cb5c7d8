// Package testhelpers provides database fixtures shared by package tests.
package testhelpers

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/wooglin/roster-api/internal/database"
	"github.com/wooglin/roster-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a migrated in-memory SQLite database. The pool is
// pinned to one connection because every :memory: connection is a separate
// database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig("silent"))
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.MigrateDatabase(db, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateUser inserts a user with a bcrypt hash of password.
func CreateUser(t *testing.T, db *gorm.DB, username, email, password string, isStaff bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: string(hash), IsStaff: isStaff}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateMember inserts a member and its backing user. The user's password
// is "password123".
func CreateMember(t *testing.T, db *gorm.DB, name, phone string, rollnumber int, isStaff bool) *models.Member {
	t.Helper()

	username := name + phone
	email := phone + "@example.com"
	user := CreateUser(t, db, username, email, "password123", isStaff)

	member := &models.Member{
		UserID:     user.ID,
		Name:       name,
		Email:      email,
		Phone:      phone,
		Rollnumber: rollnumber,
		Position:   "Brother",
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("Failed to create member: %v", err)
	}
	member.User = *user
	return member
}

// CreateShift inserts a shift starting at start and lasting d.
func CreateShift(t *testing.T, db *gorm.DB, start time.Time, d time.Duration, capacity int) *models.SoberBroShift {
	t.Helper()

	shift := &models.SoberBroShift{
		Date:      start.Format("2006-01-02"),
		Title:     "Test shift",
		TimeStart: start.UTC(),
		TimeEnd:   start.Add(d).UTC(),
		Capacity:  capacity,
	}
	if err := db.Create(shift).Error; err != nil {
		t.Fatalf("Failed to create shift: %v", err)
	}
	return shift
}

// SetupMockDB opens GORM over sqlmock with the postgres dialector, for
// exercising Data Store failure paths.
func SetupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       db,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return gormDB, mock
}
