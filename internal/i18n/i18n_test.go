package i18n

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "AppTitle"); got != "Prompt Lab" {
		t.Errorf("T(AppTitle) = %q, want 'Prompt Lab'", got)
	}
	if got := T(ctx, "NavConsole"); got != "Test Console" {
		t.Errorf("T(NavConsole) = %q, want 'Test Console'", got)
	}
}

func TestTranslateSpanish(t *testing.T) {
	ctx := initLang(t, "es")

	if got := T(ctx, "AppTitle"); got != "Laboratorio de Prompts" {
		t.Errorf("T(AppTitle) = %q, want 'Laboratorio de Prompts'", got)
	}
	if got := T(ctx, "Delete"); got != "Eliminar" {
		t.Errorf("T(Delete) = %q, want 'Eliminar'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "StatTests", 1); got != "1 test run" {
		t.Errorf("Tp(StatTests, 1) = %q", got)
	}
	if got := Tp(ctx, "StatTests", 5); got != "5 test runs" {
		t.Errorf("Tp(StatTests, 5) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "ScoreLine", map[string]any{"Score": "6.6", "Tier": "good"})
	if got != "Quality score: 6.6/10 (good)" {
		t.Errorf("Td(ScoreLine) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestLocalesHaveSameKeys(t *testing.T) {
	keys := func(name string) []string {
		data, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		var out []string
		for k := range m {
			out = append(out, k)
		}
		slices.Sort(out)
		return out
	}
	en, es := keys("en.json"), keys("es.json")
	if !slices.Equal(en, es) {
		t.Errorf("en.json and es.json differ:\n en: %v\n es: %v", en, es)
	}
}

func TestInitUnknownLanguage(t *testing.T) {
	if err := Init("xx-invalid-tag-!"); err == nil {
		t.Error("expected an error for an unparsable tag")
	}
	if err := Init("de"); err == nil {
		t.Error("expected an error for a language without translations")
	}
}

func TestMatch(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	tests := []struct {
		prefs []string
		want  string
	}{
		{nil, "en"},
		{[]string{""}, "en"},
		{[]string{"es"}, "es"},
		{[]string{"es-MX,es;q=0.9,en;q=0.8"}, "es"},
		{[]string{"fr-FR,fr;q=0.9"}, "en"},
		{[]string{"de", "es"}, "es"},
	}
	for _, tt := range tests {
		if got := Match(tt.prefs...); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.prefs, got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	var gotLang, gotTitle string
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = Lang(r.Context())
		gotTitle = T(r.Context(), "NavHome")
	}))

	tests := []struct {
		name      string
		url       string
		header    string
		cookie    string
		wantLang  string
		wantTitle string
		setCookie bool
	}{
		{"default", "/", "", "", "en", "Home", false},
		{"accept-language", "/", "es-ES,es;q=0.9", "", "es", "Inicio", false},
		{"cookie beats header", "/", "es", "en", "en", "Home", false},
		{"query beats cookie", "/?lang=es", "", "en", "es", "Inicio", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if gotLang != tt.wantLang || gotTitle != tt.wantTitle {
				t.Errorf("lang=%q title=%q, want %q %q", gotLang, gotTitle, tt.wantLang, tt.wantTitle)
			}
			hasCookie := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == LangCookie && c.Value == tt.wantLang {
					hasCookie = true
				}
			}
			if hasCookie != tt.setCookie {
				t.Errorf("lang cookie set = %v, want %v", hasCookie, tt.setCookie)
			}
		})
	}
}
