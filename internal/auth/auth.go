package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/senyabanana/procurement-service/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

type Permission string // Право доступа

const (
	CreateTender Permission = "CREATE_TENDER"
	EditTender   Permission = "EDIT_TENDER"
	ViewTender   Permission = "VIEW_TENDER"
	SubmitOffer  Permission = "SUBMIT_OFFER"
	ApproveOffer Permission = "APPROVE_OFFER"
	RejectOffer  Permission = "REJECT_OFFER"
)

type Role string // Роль пользователя

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// Guard проверяет наличие права у роли.
type Guard interface {
	HasPermission(role Role, permission Permission) bool
}

// StaticGuard - реализация Guard на статической таблице роль -> права.
type StaticGuard struct {
	permissions map[Role]map[Permission]bool
}

// NewStaticGuard создает Guard со встроенной таблицей прав.
func NewStaticGuard() *StaticGuard {
	grant := func(perms ...Permission) map[Permission]bool {
		m := make(map[Permission]bool, len(perms))
		for _, p := range perms {
			m[p] = true
		}
		return m
	}
	return &StaticGuard{
		permissions: map[Role]map[Permission]bool{
			RoleBuyer:    grant(CreateTender, EditTender, ViewTender, ApproveOffer, RejectOffer),
			RoleSupplier: grant(ViewTender, SubmitOffer),
			RoleAdmin:    grant(CreateTender, EditTender, ViewTender, SubmitOffer, ApproveOffer, RejectOffer),
		},
	}
}

// HasPermission проверяет наличие права у роли.
func (g *StaticGuard) HasPermission(role Role, permission Permission) bool {
	return g.permissions[role][permission]
}

// User - пользователь запроса, извлеченный из токена.
type User struct {
	ID   string
	Role Role
}

// Claims - полезная нагрузка JWT.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext извлекает пользователя запроса из контекста.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey).(User)
	return user, ok
}

// GenerateToken выпускает подписанный токен. Используется в тестах и
// вспомогательных утилитах; сервис токены не выдает.
func GenerateToken(userId string, role Role, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userId,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Middleware проверяет bearer-токен и права до вызова обработчика.
type Middleware struct {
	secret []byte
	guard  Guard
}

// NewMiddleware создает новый экземпляр Middleware.
func NewMiddleware(secret string, guard Guard) *Middleware {
	return &Middleware{secret: []byte(secret), guard: guard}
}

// Require оборачивает обработчик проверкой токена и указанного права.
// Обработчики движка предполагают, что авторизация уже пройдена.
func (m *Middleware) Require(permission Permission, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.SendErrorResponse(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.SendErrorResponse(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			utils.SendErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user := User{ID: claims.UserID, Role: Role(claims.Role)}
		if !m.guard.HasPermission(user.Role, permission) {
			utils.SendErrorResponse(w, http.StatusForbidden, "permission denied")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	}
}
