package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/database"
	"eggstore-system/internal/database/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(db, log)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, " fatima ", "s3cret99", models.RoleAdmin)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "fatima" {
		t.Errorf("username = %q, want trimmed", user.Username)
	}
	if user.PasswordHash == "s3cret99" {
		t.Error("password stored in the clear")
	}

	got, err := svc.Authenticate(ctx, "fatima", "s3cret99")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", got.Role)
	}

	if _, err := svc.Authenticate(ctx, "fatima", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "s3cret99"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "s3cret99", models.RoleSeller); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank username: got %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "short", models.RoleSeller); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("short password: got %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "s3cret99", "owner"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown role: got %v", err)
	}

	if _, err := svc.Register(ctx, "bob", "s3cret99", models.RoleSeller); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "another1", models.RoleSeller); !errors.Is(err, apperr.ErrConstraint) {
		t.Errorf("duplicate username: got %v, want constraint error", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "samir", "oldpass1", models.RoleSeller)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "wrong", "newpass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong current password: got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "oldpass1", "tiny"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("short new password: got %v", err)
	}
	if err := svc.ChangePassword(ctx, 9999, "oldpass1", "newpass1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "oldpass1", "newpass1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "samir", "newpass1"); err != nil {
		t.Errorf("authenticate with new password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "samir", "oldpass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still accepted")
	}
}

func TestSeedDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "admin", "admin"); err != nil {
		t.Errorf("default admin login: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "seller", "seller"); err != nil {
		t.Errorf("default seller login: %v", err)
	}

	// A second run on a populated table must not add anything.
	if err := svc.SeedDefaults(ctx); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	var count int64
	if err := svc.db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 2 {
		t.Errorf("user count = %d, want 2", count)
	}
}
