package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/pavelanni/promptlab/internal/catalog"
	appI18n "github.com/pavelanni/promptlab/internal/i18n"
	"github.com/pavelanni/promptlab/internal/llm"
	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/practice"
	"github.com/pavelanni/promptlab/internal/simulator"
	"github.com/pavelanni/promptlab/internal/store"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type echoProvider struct{}

func (echoProvider) ID() string               { return "echo" }
func (echoProvider) Name() string             { return "Echo" }
func (echoProvider) DefaultModel() string     { return "echo-1" }
func (echoProvider) RequiresCredential() bool { return true }
func (echoProvider) Generate(_ context.Context, c llm.Call) (string, error) {
	return "echo[" + c.Model + "]: " + c.Prompt, nil
}

func newTestServer(t *testing.T, basePath string) *httptest.Server {
	t.Helper()
	gw := llm.NewGateway(echoProvider{})
	gw.SetCredential("echo", "test-key")
	return newGatewayServer(t, basePath, gw)
}

func newGatewayServer(t *testing.T, basePath string, gw *llm.Gateway) *httptest.Server {
	t.Helper()
	s, err := store.New(store.MemoryDSN)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	runner := practice.NewRunner(simulator.NewSeeded(1, 0, 0), gw)
	h := New(s, catalog.Default(), runner, gw, model.AppConfig{BasePath: basePath})

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

// testClient is a browser stand-in: it keeps cookies and echoes the CSRF
// cookie into every form post.
type testClient struct {
	t    *testing.T
	base string
	c    *http.Client
}

func newTestClient(t *testing.T, srv *httptest.Server, basePath string) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &testClient{
		t:    t,
		base: srv.URL + basePath,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (tc *testClient) cookie(name string) string {
	u, _ := url.Parse(tc.base + "/")
	for _, c := range tc.c.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (tc *testClient) get(path string) (*http.Response, string) {
	tc.t.Helper()
	resp, err := tc.c.Get(tc.base + path)
	if err != nil {
		tc.t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (tc *testClient) post(path string, form url.Values) (*http.Response, string) {
	tc.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf_token") == "" {
		form.Set("csrf_token", tc.cookie(csrfCookieName))
	}
	resp, err := tc.c.PostForm(tc.base+path, form)
	if err != nil {
		tc.t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func wantRedirect(t *testing.T, resp *http.Response, wantPrefix string) {
	t.Helper()
	wantStatus(t, resp, http.StatusSeeOther)
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, wantPrefix) {
		t.Fatalf("Location = %q, want prefix %q", loc, wantPrefix)
	}
}

func TestHomeStartsSession(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")

	resp, body := tc.get("/")
	wantStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Prompt Lab") {
		t.Error("home page should carry the app title")
	}
	sid := tc.cookie(sessionCookieName)
	if sid == "" {
		t.Fatal("expected a session cookie")
	}
	if tc.cookie(csrfCookieName) == "" {
		t.Fatal("expected a CSRF cookie")
	}

	tc.get("/tips")
	if got := tc.cookie(sessionCookieName); got != sid {
		t.Errorf("session changed between requests: %q -> %q", sid, got)
	}
}

func TestCSRFRequired(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")
	tc.get("/")

	resp, _ := tc.post("/console", url.Values{"prompt": {"hi"}, "mode": {"quick"}, "csrf_token": {"forged"}})
	wantStatus(t, resp, http.StatusForbidden)
}

func TestBuilderFlow(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")

	resp, body := tc.get("/builder/advanced")
	wantStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `name="topic"`) {
		t.Fatal("builder form missing topic field")
	}

	resp, body = tc.post("/builder/advanced", url.Values{"subject": {"Biology"}})
	wantStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, "Please enter a topic.") {
		t.Error("missing topic error message")
	}

	form := url.Values{
		"subject":       {"Biology"},
		"grade_level":   {"High School (9-12)"},
		"topic":         {"photosynthesis"},
		"follow_up":     {"on"},
		"formats":       {"Step-by-step explanation"},
		"learning_goal": {"Understand concepts"},
	}
	resp, body = tc.post("/builder/advanced", form)
	wantStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "photosynthesis") || !strings.Contains(body, "Quality score:") {
		t.Fatal("generated prompt or score missing")
	}

	save := url.Values{"text": {"Explain photosynthesis to me."}, "subject": {"Biology"}, "topic": {"photosynthesis"}}
	resp, _ = tc.post("/builder/save", save)
	wantRedirect(t, resp, "/saved?notice=PromptSaved")
	resp, _ = tc.post("/builder/save", save)
	wantRedirect(t, resp, "/saved?notice=PromptExists")

	resp, body = tc.get("/saved?notice=PromptExists")
	wantStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Explain photosynthesis to me.") {
		t.Error("saved prompt not listed")
	}
	if !strings.Contains(body, "This prompt is already saved.") {
		t.Error("notice not shown")
	}
	if strings.Count(body, `id="prompt-`) != 1 {
		t.Error("duplicate save should not add a second prompt")
	}
}

func TestBuilderUnknownProfile(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")

	resp, _ := tc.get("/builder/expert")
	wantStatus(t, resp, http.StatusNotFound)
}

func TestBasicBuilder(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")
	tc.get("/builder/basic")

	resp, body := tc.post("/builder/basic", url.Values{"topic": {"fractions"}})
	wantStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Help me with fractions.") {
		t.Errorf("basic builder did not fall back to the default task sentence")
	}
}

func TestConsoleFlow(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")

	resp, body := tc.get("/console?prompt=" + url.QueryEscape("Explain gravity"))
	wantStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Explain gravity") {
		t.Error("prompt from query not prefilled")
	}
	if !strings.Contains(body, "No tests yet.") {
		t.Error("new session should have no history")
	}

	resp, body = tc.post("/console", url.Values{"prompt": {"  "}, "mode": {"quick"}})
	wantStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, "Please enter a prompt to test.") {
		t.Error("missing empty prompt error")
	}

	resp, _ = tc.post("/console", url.Values{"prompt": {"Explain gravity"}, "mode": {"quick"}})
	wantRedirect(t, resp, "/console?")
	resp, body = tc.get("/console")
	wantStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Quick Assessment: Your prompt scored") {
		t.Fatal("quick assessment not shown")
	}

	resp, _ = tc.post("/console", url.Values{"prompt": {"Explain gravity"}, "mode": {"simulate"}, "subject_hint": {"Science"}})
	wantRedirect(t, resp, "/console?")

	resp, _ = tc.post("/console/rate", url.Values{"result_id": {"2"}, "rating": {"Excellent"}, "reflection": {"useful"}})
	wantRedirect(t, resp, "/console?notice=RatingSaved")
	resp, _ = tc.post("/console/rate", url.Values{"result_id": {"2"}, "rating": {"Meh"}})
	wantStatus(t, resp, http.StatusBadRequest)
	resp, _ = tc.post("/console/rate", url.Values{"result_id": {"99"}, "rating": {"Good"}})
	wantStatus(t, resp, http.StatusNotFound)

	_, body = tc.get("/console")
	if !strings.Contains(body, "History (2 tests)") {
		t.Error("history count not shown")
	}

	resp, _ = tc.post("/console/clear", nil)
	wantRedirect(t, resp, "/console?notice=HistoryCleared")
	_, body = tc.get("/console")
	if !strings.Contains(body, "No tests yet.") {
		t.Error("history should be empty after clear")
	}
}

func TestConsoleLiveMode(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")
	tc.get("/console")

	resp, _ := tc.post("/console", url.Values{"prompt": {"hello"}, "mode": {"llm"}, "provider": {"echo"}})
	wantRedirect(t, resp, "/console?")
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "model=echo-1") {
		t.Errorf("redirect should keep the resolved model, got %q", loc)
	}
	_, body := tc.get("/console")
	if !strings.Contains(body, "echo[echo-1]: hello") {
		t.Error("live reply not shown")
	}

	tc.post("/console", url.Values{"prompt": {"hello"}, "mode": {"llm"}, "provider": {"nope"}})
	_, body = tc.get("/console")
	if !strings.Contains(body, "Error: Unknown provider") {
		t.Error("unknown provider should be reported as a reply")
	}
}

func TestFavorites(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")
	tc.get("/subjects")

	cat := catalog.Default()
	subject := cat.Subjects()[0]
	tpl := cat.Templates(subject)[0]
	form := url.Values{"subject": {subject}, "category": {tpl.Category}}

	resp, _ := tc.post("/subjects/favorite", form)
	wantRedirect(t, resp, "/subjects?")
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "notice=FavoriteAdded") {
		t.Errorf("Location = %q, want FavoriteAdded notice", loc)
	}
	resp, _ = tc.post("/subjects/favorite", form)
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "notice=FavoriteExists") {
		t.Errorf("Location = %q, want FavoriteExists notice", loc)
	}

	resp, _ = tc.post("/subjects/favorite", url.Values{"subject": {subject}, "category": {"No Such Category"}})
	wantStatus(t, resp, http.StatusNotFound)

	_, body := tc.get("/saved")
	if strings.Count(body, `id="favorite-`) != 1 {
		t.Fatal("expected exactly one favorite")
	}

	resp, _ = tc.post("/saved/favorites/1/delete", nil)
	wantRedirect(t, resp, "/saved?notice=Deleted")
	resp, _ = tc.post("/saved/favorites/1/delete", nil)
	wantStatus(t, resp, http.StatusNotFound)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t, "")
	alice := newTestClient(t, srv, "")
	bob := newTestClient(t, srv, "")
	alice.get("/")
	bob.get("/")

	resp, _ := alice.post("/builder/save", url.Values{"text": {"alice's prompt"}, "topic": {"t"}})
	wantRedirect(t, resp, "/saved")

	_, body := bob.get("/saved")
	if strings.Contains(body, "alice&#39;s prompt") || strings.Contains(body, "alice's prompt") {
		t.Fatal("bob can see alice's saved prompt")
	}
	resp, _ = bob.post("/saved/prompts/1/delete", nil)
	wantStatus(t, resp, http.StatusNotFound)
}

func TestResetSession(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")
	tc.get("/")
	old := tc.cookie(sessionCookieName)
	tc.post("/builder/save", url.Values{"text": {"keep me?"}})

	resp, _ := tc.post("/session/reset", nil)
	wantRedirect(t, resp, "/")

	_, body := tc.get("/saved")
	if strings.Contains(body, "keep me?") {
		t.Error("reset session still shows saved prompts")
	}
	if got := tc.cookie(sessionCookieName); got == "" || got == old {
		t.Errorf("expected a new session cookie, got %q (old %q)", got, old)
	}
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, "")
	tc := newTestClient(t, srv, "")
	tc.get("/")
	tc.post("/console", url.Values{"prompt": {"What is democracy?"}, "mode": {"analyze"}})

	resp, body := tc.get("/saved/export")
	wantStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	var exp model.SessionExport
	if err := json.Unmarshal([]byte(body), &exp); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if exp.SessionID != tc.cookie(sessionCookieName) || exp.Summary.Tests != 1 || exp.Summary.Analyzed != 1 {
		t.Errorf("unexpected export %+v", exp)
	}
}

func TestAPIAnalyze(t *testing.T) {
	srv := newTestServer(t, "")

	post := func(contentType, body string) (*http.Response, map[string]any) {
		t.Helper()
		resp, err := http.Post(srv.URL+"/api/analyze", contentType, strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST /api/analyze: %v", err)
		}
		defer resp.Body.Close()
		var out map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp, out
	}

	resp, out := post("application/json", `{"prompt":"explain"}`)
	wantStatus(t, resp, http.StatusOK)
	analysis, _ := out["analysis"].(map[string]any)
	if analysis["overall_score"] != 1.8 || analysis["quality"] != "needs_improvement" {
		t.Errorf("unexpected analysis %v", analysis)
	}
	if out["band"] != "poor" {
		t.Errorf("band = %v, want poor", out["band"])
	}

	resp, _ = post("text/plain", `{"prompt":"explain"}`)
	wantStatus(t, resp, http.StatusUnsupportedMediaType)
	resp, _ = post("application/json", `{"prompt":"  "}`)
	wantStatus(t, resp, http.StatusBadRequest)
	resp, _ = post("application/json", `not json`)
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestAPICatalogAndProviders(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/api/catalog")
	if err != nil {
		t.Fatalf("GET /api/catalog: %v", err)
	}
	var cat catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	resp.Body.Close()
	if len(cat.Subjects) != len(catalog.Default().Subjects()) || len(cat.Techniques) == 0 || len(cat.Tips) == 0 {
		t.Errorf("incomplete catalog response: %d subjects, %d techniques, %d tips", len(cat.Subjects), len(cat.Techniques), len(cat.Tips))
	}

	resp, err = http.Get(srv.URL + "/api/providers")
	if err != nil {
		t.Fatalf("GET /api/providers: %v", err)
	}
	var providers []providerInfo
	if err := json.NewDecoder(resp.Body).Decode(&providers); err != nil {
		t.Fatalf("decode providers: %v", err)
	}
	resp.Body.Close()
	if len(providers) != 1 || providers[0].ID != "echo" || !providers[0].Configured {
		t.Errorf("providers = %+v", providers)
	}
}

func TestBasePath(t *testing.T) {
	srv := newTestServer(t, "/learn")
	tc := newTestClient(t, srv, "/learn")

	resp, body := tc.get("/")
	wantStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `href="/learn/console"`) {
		t.Error("links should carry the base path")
	}
	resp, _ = tc.post("/builder/save", url.Values{"text": {"x"}})
	wantRedirect(t, resp, "/learn/saved")

	resp, err := tc.c.Get(srv.URL + "/learn")
	if err != nil {
		t.Fatalf("GET /learn: %v", err)
	}
	resp.Body.Close()
	wantStatus(t, resp, http.StatusMovedPermanently)
}

func TestConsoleIgnoresPostedEndpoint(t *testing.T) {
	var (
		mu       sync.Mutex
		upstream []string
		foreign  []string
	)
	record := func(dst *[]string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			*dst = append(*dst, r.URL.Path+" auth="+r.Header.Get("Authorization")+" key="+r.Header.Get("x-api-key"))
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			if strings.HasSuffix(r.URL.Path, "/messages") {
				io.WriteString(w, `{"content":[{"type":"text","text":"ok"}]}`)
				return
			}
			io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`)
		}
	}
	configured := httptest.NewServer(record(&upstream))
	defer configured.Close()
	other := httptest.NewServer(record(&foreign))
	defer other.Close()

	gw := llm.NewGateway(llm.NewOpenAI(configured.URL+"/v1"), llm.NewAnthropic(configured.URL))
	gw.SetCredential("openai", "sk-server-secret")
	gw.SetCredential("anthropic", "ak-server-secret")
	srv := newGatewayServer(t, "", gw)
	tc := newTestClient(t, srv, "")
	tc.get("/console")

	for _, provider := range []string{"openai", "anthropic"} {
		resp, _ := tc.post("/console", url.Values{
			"prompt":   {"Explain gravity?"},
			"mode":     {"llm"},
			"provider": {provider},
			"endpoint": {other.URL + "/v1"},
		})
		wantRedirect(t, resp, "/console")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(foreign) != 0 {
		t.Fatalf("posted endpoint received %d requests: %v", len(foreign), foreign)
	}
	if len(upstream) != 2 {
		t.Fatalf("configured upstream got %d requests, want 2: %v", len(upstream), upstream)
	}
	if !strings.Contains(upstream[0], "auth=Bearer sk-server-secret") {
		t.Errorf("openai call = %q, want the configured key", upstream[0])
	}
	if !strings.Contains(upstream[1], "key=ak-server-secret") {
		t.Errorf("anthropic call = %q, want the configured key", upstream[1])
	}
}
