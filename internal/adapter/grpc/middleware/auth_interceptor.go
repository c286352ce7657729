package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	UserIDKey ctxKey = "authenticatedUserID"
	RoleKey   ctxKey = "authenticatedRole"
)

// Claims is the token payload issued by user-service.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserIDFromContext returns the caller id set by AuthInterceptor, or "" for
// anonymous callers.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

// AuthInterceptor authenticates callers that present a bearer token. Discovery
// is public, so a request without an authorization header passes through
// anonymously. A header that is present but malformed or invalid is rejected.
// An empty secret disables parsing entirely.
func AuthInterceptor(jwtSecret string, log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if jwtSecret == "" {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}
		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			log.Debug("AuthInterceptor: anonymous request", "method", info.FullMethod)
			return handler(ctx, req)
		}

		parts := strings.Fields(authHeaders[0])
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			log.Warn("AuthInterceptor: invalid authorization header format", "method", info.FullMethod)
			return nil, status.Errorf(codes.Unauthenticated, "authorization token format is invalid, expected 'Bearer <token>'")
		}

		claims, err := parseToken(parts[1], jwtSecret)
		if err != nil {
			log.Warn("AuthInterceptor: token rejected", "method", info.FullMethod, "error", err.Error())
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, status.Errorf(codes.Unauthenticated, "token has expired")
			}
			return nil, status.Errorf(codes.Unauthenticated, "token is invalid: %v", err)
		}

		ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
		if claims.Role != "" {
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
		}
		log.Debug("AuthInterceptor: caller authenticated", "method", info.FullMethod, "user_id", claims.UserID, "role", claims.Role)
		return handler(ctx, req)
	}
}

func parseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.UserID == "" {
		return nil, errors.New("user_id claim is missing")
	}
	return claims, nil
}
