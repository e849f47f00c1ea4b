package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const callerKey contextKey = "callerID"

// JWTAuthMiddleware rejects requests without a valid bearer token and puts
// the authenticated user's id on the request context. No core logic runs
// for unauthenticated requests.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		callerID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_BAD_SUBJECT, Description: Token carries a malformed user id: %v", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), callerID)))
	})
}

// ContextWithCaller attaches the authenticated user id to a context. Exposed
// for handler tests.
func ContextWithCaller(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, callerKey, userID)
}

// CallerID returns the authenticated user id placed on the request context
// by JWTAuthMiddleware.
func CallerID(r *http.Request) (primitive.ObjectID, bool) {
	id, ok := r.Context().Value(callerKey).(primitive.ObjectID)
	return id, ok
}
