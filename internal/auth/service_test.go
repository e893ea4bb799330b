package auth

import (
	"fmt"
	"testing"

	"quiz-arena/internal/models"

	"github.com/dgrijalva/jwt-go"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Client{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewService(NewRepository(db), "test-secret")
}

func TestRegisterHashesPassword(t *testing.T) {
	service := newTestService(t)

	client := &models.Client{Username: "alice", Email: "alice@example.com", Password: "hunter2"}
	if err := service.Register(client); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if client.Password == "hunter2" {
		t.Fatalf("password stored in plain text")
	}
	if client.Role != "client" {
		t.Fatalf("expected default role client, got %s", client.Role)
	}
}

func TestLoginIssuesClientToken(t *testing.T) {
	service := newTestService(t)

	client := &models.Client{Username: "bob", Email: "bob@example.com", Password: "secret"}
	if err := service.Register(client); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tokenString, err := service.Login("bob", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not parse: %v", err)
	}
	claims := *token.Claims.(*jwt.MapClaims)
	if _, ok := claims["client_id"]; !ok {
		t.Fatalf("token missing client_id claim")
	}

	if _, err := service.Login("bob", "wrong"); err == nil {
		t.Fatalf("login accepted a wrong password")
	}
}
