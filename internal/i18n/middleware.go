package i18n

import (
	"net/http"
	"time"
)

// LangCookie remembers a language picked with the ?lang= switch.
const LangCookie = "lang"

// Middleware negotiates the UI language for every request: an explicit
// ?lang= query wins, then the lang cookie, then Accept-Language, then the
// fallback passed to Init.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var lang string
			if q := r.URL.Query().Get("lang"); q != "" {
				lang = Match(q)
				http.SetCookie(w, &http.Cookie{
					Name:     LangCookie,
					Value:    lang,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					SameSite: http.SameSiteLaxMode,
				})
			} else if c, err := r.Cookie(LangCookie); err == nil && c.Value != "" {
				lang = Match(c.Value)
			} else {
				lang = Match(r.Header.Get("Accept-Language"))
			}
			ctx := WithLocalizer(r.Context(), NewLocalizer(lang))
			ctx = WithLang(ctx, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
