package auth

import (
	"net/http"
	"time"
)

const accessTokenCookie = "access_token"

// ShouldUseCookies reports whether the client looks like a browser, in
// which case tokens are delivered as an HttpOnly cookie instead of the
// response body.
func ShouldUseCookies(r *http.Request) bool {
	return r.Header.Get("Origin") != ""
}

// SetAuthCookie stores the access token in an HttpOnly cookie.
func SetAuthCookie(w http.ResponseWriter, accessToken string, secure bool, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie removes the access token cookie.
func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetAccessTokenFromCookie reads the access token cookie.
func GetAccessTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(accessTokenCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
