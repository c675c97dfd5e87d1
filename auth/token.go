package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken はトークンの署名や形式が不正な場合に返す
var ErrInvalidToken = errors.New("invalid token")

const tokenIssuer = "liveserver"

// issueToken はユーザー用の不透明なトークンを生成する。
// クライアントには中身を解釈させず、サーバー側で署名と jti の一意性だけを使う
func issueToken(secret []byte, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Issuer:   tokenIssuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verifyToken は署名を検証する。DBを引く前に偽造トークンを弾くため
func verifyToken(secret []byte, tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return ErrInvalidToken
	}
	return nil
}
