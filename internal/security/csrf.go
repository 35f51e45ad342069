package security

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header name for CSRF token in AJAX requests.
const CSRFTokenHeader = "X-CSRF-Token"

// CSRFFieldName is the form field gorilla/csrf reads the token from.
const CSRFFieldName = "gorilla.csrf.Token"

const csrfContextKey = "csrf_token"

// CSRFMiddleware creates a Gin middleware for CSRF protection of the HTML
// forms. Safe methods pass through and only receive a token.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.FieldName(CSRFFieldName),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		// Without secure cookies the app is served over plain HTTP and the
		// HTTPS-only origin checks would reject every form post.
		if !secure && c.Request.TLS == nil {
			c.Request = csrf.PlaintextHTTPRequest(c.Request)
		}

		passed := false
		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfContextKey, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// csrfErrorHandler handles CSRF validation failures.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Form Expired</title></head>
<body style="font-family: system-ui; max-width: 400px; margin: 100px auto; text-align: center;">
<h1>Form Expired</h1>
<p>The form submission was invalid or has expired.</p>
<p><a href="/">Back to the library</a></p>
</body>
</html>`))
}

// CSRFToken retrieves the CSRF token from the Gin context.
func CSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfContextKey); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}

// CSRFField returns a hidden input carrying the token, or nothing when
// protection is off.
func CSRFField(c *gin.Context) template.HTML {
	token := CSRFToken(c)
	if token == "" {
		return ""
	}
	return template.HTML(`<input type="hidden" name="` + CSRFFieldName + `" value="` + template.HTMLEscapeString(token) + `">`)
}
