package api

import (
	"errors"
	"net/http"
	"time"

	"fitstudio/studio-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
	renderer    *Renderer
	tokenTTL    time.Duration
}

// NewAuthHandler creates a new AuthHandler. tokenTTL controls the auth
// cookie lifetime and should match the JWT expiration.
func NewAuthHandler(authService service.AuthService, renderer *Renderer, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, renderer: renderer, tokenTTL: tokenTTL}
}

// --- Form Structs ---

type LoginForm struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type RegisterForm struct {
	Username        string `form:"username" json:"username" binding:"required,min=3"`
	Password        string `form:"password" json:"password" binding:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required,eqfield=Password"`
}

// --- Handler Methods ---

// ShowLogin renders the login page.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.renderer.Page(c, http.StatusOK, "login", gin.H{})
}

// Login authenticates the posted credentials, sets the auth cookie and
// guides the user to the dashboard.
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderer.Page(c, http.StatusBadRequest, "login", gin.H{"errors": fieldErrors(err), "username": form.Username})
		return
	}

	token, _, err := h.authService.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			h.renderer.Page(c, http.StatusUnauthorized, "login", gin.H{
				"errors":   map[string]string{"form": "invalid username or password"},
				"username": form.Username,
			})
			return
		}
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		return
	}

	c.SetCookie(authCookieName, token, int(h.tokenTTL.Seconds()), "/", "", false, true)
	redirectWithFlash(c, "/dashboard/", "Welcome back, "+form.Username+"!")
}

// ShowRegister renders the registration page.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.renderer.Page(c, http.StatusOK, "register", gin.H{})
}

// Register creates the account and guides the user to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderer.Page(c, http.StatusBadRequest, "register", gin.H{"errors": fieldErrors(err), "username": form.Username})
		return
	}

	_, err := h.authService.Register(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			h.renderer.Page(c, http.StatusConflict, "register", gin.H{
				"errors":   map[string]string{"Username": "this username is taken"},
				"username": form.Username,
			})
			return
		}
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		return
	}

	redirectWithFlash(c, "/login/", "Account created. Please log in.")
}

// Logout clears the auth cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", false, true)
	redirectWithFlash(c, "/", "You have been logged out.")
}
