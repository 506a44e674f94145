package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const flashCookieName = "studio_flash"

// Renderer renders page contexts. With HTML templates loaded on the engine it
// renders the named template; without them it emits the context as JSON so
// the surface stays usable headless.
type Renderer struct {
	htmlTemplates bool
}

// NewRenderer creates a Renderer. htmlTemplates reports whether the gin
// engine had templates loaded.
func NewRenderer(htmlTemplates bool) *Renderer {
	return &Renderer{htmlTemplates: htmlTemplates}
}

// Page renders the named template with the given context. Any pending flash
// notice is consumed into the context under "flash".
func (r *Renderer) Page(c *gin.Context, status int, name string, ctx gin.H) {
	if ctx == nil {
		ctx = gin.H{}
	}
	if flash := takeFlash(c); flash != "" {
		ctx["flash"] = flash
	}
	if r.htmlTemplates {
		c.HTML(status, name+".html", ctx)
		return
	}
	ctx["template"] = name
	c.JSON(status, ctx)
}

// --- Flash notices ---

// setFlash stores a one-shot notice in a short-lived cookie. The next
// rendered page consumes it.
func setFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookieName, url.QueryEscape(message), 60, "/", "", false, true)
}

func takeFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}

// redirectWithFlash issues a see-other redirect carrying a flash notice.
func redirectWithFlash(c *gin.Context, location, message string) {
	if message != "" {
		setFlash(c, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// Helper to return JSON error response and abort request.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// fieldErrors flattens binding validation failures into a field -> message
// map for re-rendering forms. Non-validation errors map to a single "form"
// entry.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "invalid request"
		return out
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "this field is required"
		case "min":
			out[fe.Field()] = "value is too short"
		case "eqfield":
			out[fe.Field()] = "values do not match"
		case "oneof":
			out[fe.Field()] = "not one of the offered values"
		case "gt":
			out[fe.Field()] = "must be greater than zero"
		default:
			out[fe.Field()] = "invalid value"
		}
	}
	return out
}
