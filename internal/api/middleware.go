package api

import (
	"fmt"
	"net/http"
	"strings"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context key for the resolved actor.
const ContextActorKey = "actor"

const authCookieName = "auth_token"

// AuthMiddleware resolves the request's actor from a JWT carried either in
// the Authorization header or the auth cookie. It never rejects: requests
// without a usable token proceed as anonymous, and the route guards decide
// what anonymous may do. The role is computed once here and stored with the
// actor; handlers never re-derive it.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	jwtSecret := authService.GetJWTSecret()
	return func(c *gin.Context) {
		anonymous := &service.Actor{Role: domain.RoleAnonymous}

		tokenString := bearerToken(c)
		if tokenString == "" {
			if cookie, err := c.Cookie(authCookieName); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			c.Set(ContextActorKey, anonymous)
			c.Next()
			return
		}

		claims := &service.Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid || claims.UserID == "" {
			// Expired or tampered tokens degrade to anonymous; the guards
			// below redirect or refuse as the route demands.
			c.Set(ContextActorKey, anonymous)
			c.Next()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.Set(ContextActorKey, anonymous)
			c.Next()
			return
		}

		actor, err := authService.Resolve(c.Request.Context(), userID)
		if err != nil {
			// Token for a user that no longer exists.
			c.Set(ContextActorKey, anonymous)
			c.Next()
			return
		}

		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// RequireAuthenticated guards routes that need a logged-in user. Anonymous
// visitors are guided to the login page, not refused.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		if !actor.Role.IsAuthenticated() {
			redirectWithFlash(c, "/login/", "Please log in to continue.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole refuses with 403 when the actor's role is not in the allowed
// list. Must run AFTER AuthMiddleware. Unlike RequireAuthenticated this is a
// hard refusal, not flow guidance.
func RequireRole(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		for _, allowed := range allowedRoles {
			if actor.Role == allowed {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: role '%s' does not have permission", actor.Role))
	}
}

// AdminBrowsing guards the admin browsing pages. Admins pass; an
// authenticated non-admin wandered here from a link, so they are guided back
// to their dashboard rather than refused; anonymous visitors get the hard
// 403 like every other admin route.
func AdminBrowsing() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		switch {
		case actor.Role.IsAdmin():
			c.Next()
		case actor.Role.IsAuthenticated():
			redirectWithFlash(c, "/dashboard/", "That page is for studio admins.")
			c.Abort()
		default:
			abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: role '%s' does not have permission", actor.Role))
		}
	}
}

// actorFrom returns the actor resolved by AuthMiddleware. Routes registered
// without the middleware see an anonymous actor.
func actorFrom(c *gin.Context) *service.Actor {
	raw, exists := c.Get(ContextActorKey)
	if !exists {
		return &service.Actor{Role: domain.RoleAnonymous}
	}
	actor, ok := raw.(*service.Actor)
	if !ok {
		return &service.Actor{Role: domain.RoleAnonymous}
	}
	return actor
}
