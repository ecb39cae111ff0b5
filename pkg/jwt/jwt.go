package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims son los claims que transporta el token de identidad del servicio.
type Claims struct {
	UserID   string `json:"user_id"`
	Approved bool   `json:"approved"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager firma y valida tokens HS256.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewManager crea un Manager. ttl cero usa 24h por defecto.
func NewManager(secret, issuer string, ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Generate emite un token firmado para el usuario.
func (m *Manager) Generate(userID, role string, approved bool) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Approved: approved,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("firmando token: %w", err)
	}
	return signed, nil
}

// Parse valida la firma y expiración, y devuelve los claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token inválido: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("claims inválidos")
	}
	if claims.UserID == "" {
		return nil, errors.New("token sin user_id")
	}
	return claims, nil
}
