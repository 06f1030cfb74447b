package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by a campus-SSO token. This service only verifies
// tokens; GenerateToken exists for the SSO side of the contract and for
// tests.
type Claims struct {
	StudentID uuid.UUID
	MatricNo  string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	StudentID string `json:"student_id"`
	MatricNo  string `json:"matric_no"`
}

func GenerateToken(studentID uuid.UUID, matricNo string, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		StudentID: studentID.String(),
		MatricNo:  matricNo,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}

	studentID, err := uuid.Parse(tc.StudentID)
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: invalid student_id in token: %w", err)
	}

	return &Claims{
		StudentID: studentID,
		MatricNo:  tc.MatricNo,
	}, nil
}
