package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateToken(t *testing.T) {
	tokenString, err := GenerateToken("testsecret", 7, "admin", time.Hour)
	if err != nil {
		t.Fatalf("ошибка генерации токена: %v", err)
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte("testsecret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("токен не прошёл проверку: %v", err)
	}

	if claims["user_id"].(float64) != 7 {
		t.Fatalf("неверный user_id: %v", claims["user_id"])
	}
	if claims["role"].(string) != "admin" {
		t.Fatalf("неверная роль: %v", claims["role"])
	}
	if claims["token_type"].(string) != "access" {
		t.Fatalf("неверный тип токена: %v", claims["token_type"])
	}
}

func TestGenerateToken_WrongSecret(t *testing.T) {
	tokenString, err := GenerateToken("testsecret", 7, "member", time.Hour)
	if err != nil {
		t.Fatalf("ошибка генерации токена: %v", err)
	}

	_, err = jwt.Parse(tokenString, func(_ *jwt.Token) (interface{}, error) {
		return []byte("другой-секрет"), nil
	})
	if err == nil {
		t.Fatal("токен с чужим секретом должен отклоняться")
	}
}
