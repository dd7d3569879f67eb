// Package auth implementa el login por token del console: credenciales
// en un archivo JSON (texto plano, sistema demo), JWT HS256 firmado con
// secreto compartido y un set de sesiones activas con TTL.
//
// Un token es válido sólo si (a) la firma y expiración verifican y
// (b) la sesión sigue activa (logout la elimina).
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired or invalid")
)

// Claims son los claims propios que viajan en el token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwtv5.RegisteredClaims
}

// LoginResult es la respuesta de un login exitoso.
type LoginResult struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Service emite y verifica tokens. Las sesiones activas viven en un
// cache con TTL igual al TTL del token: una entrada que expira equivale
// a un logout implícito.
type Service struct {
	usersPath string
	secret    []byte
	ttl       time.Duration

	users    []domain.User
	sessions *gocache.Cache
}

func NewService(usersPath string, secret []byte, ttl time.Duration) *Service {
	return &Service{
		usersPath: usersPath,
		secret:    secret,
		ttl:       ttl,
		sessions:  gocache.New(ttl, 10*time.Minute),
	}
}

// LoadUsers lee el archivo de credenciales. Fatal al startup si falta.
func (s *Service) LoadUsers() error {
	b, err := os.ReadFile(s.usersPath)
	if err != nil {
		return fmt.Errorf("read users file: %w", err)
	}
	var data struct {
		Users []domain.User `json:"users"`
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("parse users file %s: %w", s.usersPath, err)
	}
	s.users = data.Users
	return nil
}

// Login verifica email+password contra el archivo de usuarios y emite
// un token registrando la sesión. Credenciales malas => ErrInvalidCredentials,
// sin token emitido ni sesión creada.
func (s *Service) Login(email, password string) (LoginResult, error) {
	var user *domain.User
	for i := range s.users {
		if s.users[i].Email == email && s.users[i].Password == password {
			user = &s.users[i]
			break
		}
	}
	if user == nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(s.secret)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	s.sessions.Set(signed, struct{}{}, s.ttl)

	return LoginResult{
		Token: signed,
		User: LoginUser{
			ID:    user.Email,
			Email: user.Email,
			Name:  user.Name,
		},
	}, nil
}

// Logout invalida el token. Idempotente: un token desconocido es no-op.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// Verify valida sesión activa + firma + expiración. Un token firmado
// pero sin sesión (logout previo o restart del proceso) se rechaza.
func (s *Service) Verify(token string) (*Claims, error) {
	if _, ok := s.sessions.Get(token); !ok {
		return nil, ErrSessionExpired
	}

	var claims Claims
	parsed, err := jwtv5.ParseWithClaims(token, &claims, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		// token corrupto o expirado: la sesión muerta no debe quedar viva
		s.sessions.Delete(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// IsSessionActive reporta si el token tiene una sesión registrada.
func (s *Service) IsSessionActive(token string) bool {
	_, ok := s.sessions.Get(token)
	return ok
}
