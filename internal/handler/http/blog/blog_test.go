package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/handler/http/auth"
	"clipscribe/internal/handler/http/web"
	"clipscribe/internal/infra/media"
	"clipscribe/internal/infra/synthesizer"
	"clipscribe/internal/infra/transcriber"
	artUC "clipscribe/internal/usecase/article"
	genUC "clipscribe/internal/usecase/generate"
)

type stubFetcher struct {
	title    string
	titleErr error
	audio    string
	audioErr error
}

func (f *stubFetcher) ResolveTitle(_ context.Context, _ string) (string, error) {
	return f.title, f.titleErr
}

func (f *stubFetcher) FetchAudio(_ context.Context, _ string) (string, error) {
	return f.audio, f.audioErr
}

type stubTranscriber struct {
	text string
	err  error
}

func (t *stubTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	return t.text, t.err
}

type stubSynthesizer struct {
	content string
	err     error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _, _ string) (string, error) {
	return s.content, s.err
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[int64]*entity.Article
	nextID   int64
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: map[int64]*entity.Article{}, nextID: 1}
}

func (r *fakeArticleRepo) Create(_ context.Context, article *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	article.ID = r.nextID
	r.nextID++
	stored := *article
	r.articles[article.ID] = &stored
	return nil
}

func (r *fakeArticleRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	copied := *article
	return &copied, nil
}

func (r *fakeArticleRepo) ListByUser(_ context.Context, userID int64) ([]*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Article
	for _, article := range r.articles {
		if article.UserID == userID {
			copied := *article
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeArticleRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.articles, id)
	return nil
}

// asUser injects a fixed authenticated user, standing in for the
// session middleware.
func asUser(user *entity.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

type testEnv struct {
	mux  *http.ServeMux
	repo *fakeArticleRepo
}

func newTestEnv(t *testing.T, fetcher *stubFetcher, trans *stubTranscriber, synth *stubSynthesizer, user *entity.User) *testEnv {
	t.Helper()

	repo := newFakeArticleRepo()
	genSvc := genUC.NewService(fetcher, trans, synth, repo)
	artSvc := &artUC.Service{Repo: repo}

	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	mux := http.NewServeMux()
	Register(mux, genSvc, artSvc, renderer, asUser(user), logger)

	return &testEnv{mux: mux, repo: repo}
}

func healthyStubs() (*stubFetcher, *stubTranscriber, *stubSynthesizer) {
	return &stubFetcher{title: "Go Concurrency Talk", audio: "/tmp/audio.mp3"},
		&stubTranscriber{text: "hello world"},
		&stubSynthesizer{content: "<h1><b><u>Go Concurrency Talk</u></b></h1>\n<p>Body.</p>"}
}

func TestGenerateSuccess(t *testing.T) {
	user := &entity.User{ID: 7, Username: "alice"}
	fetcher, trans, synth := healthyStubs()
	env := newTestEnv(t, fetcher, trans, synth, user)

	body := strings.NewReader(`{"link": "https://www.youtube.com/watch?v=abc123"}`)
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp GenerateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Content != synth.content {
		t.Errorf("content = %q, want %q", resp.Content, synth.content)
	}

	articles, _ := env.repo.ListByUser(context.Background(), user.ID)
	if len(articles) != 1 {
		t.Fatalf("persisted articles = %d, want 1", len(articles))
	}
	if articles[0].SourceTitle != "Go Concurrency Talk" {
		t.Errorf("SourceTitle = %q", articles[0].SourceTitle)
	}
}

func TestGenerateRejectsBadBody(t *testing.T) {
	user := &entity.User{ID: 1, Username: "alice"}

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"link": `},
		{"unknown field", `{"link": "https://youtube.com/watch?v=a", "admin": true}`},
		{"empty link", `{"link": ""}`},
		{"missing link", `{}`},
		{"not an object", `"https://youtube.com/watch?v=a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, trans, synth := healthyStubs()
			env := newTestEnv(t, fetcher, trans, synth, user)

			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			env.mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp["error"] != "invalid data sent" {
				t.Errorf("error = %q, want %q", resp["error"], "invalid data sent")
			}
			if articles, _ := env.repo.ListByUser(context.Background(), user.ID); len(articles) != 0 {
				t.Errorf("persisted %d articles, want 0", len(articles))
			}
		})
	}
}

func TestGenerateRejectsInvalidLink(t *testing.T) {
	user := &entity.User{ID: 1, Username: "alice"}
	fetcher, trans, synth := healthyStubs()
	env := newTestEnv(t, fetcher, trans, synth, user)

	body := strings.NewReader(`{"link": "ftp://example.com/video"}`)
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp["error"], "http or https") {
		t.Errorf("error = %q, want scheme validation message", resp["error"])
	}
}

func TestGenerateMethodNotAllowed(t *testing.T) {
	user := &entity.User{ID: 1, Username: "alice"}
	fetcher, trans, synth := healthyStubs()
	env := newTestEnv(t, fetcher, trans, synth, user)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/generate", nil)
		rec := httptest.NewRecorder()
		env.mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s /generate status = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

func TestGenerateStageFailures(t *testing.T) {
	user := &entity.User{ID: 1, Username: "alice"}

	tests := []struct {
		name    string
		mutate  func(*stubFetcher, *stubTranscriber, *stubSynthesizer)
		wantMsg string
	}{
		{
			name: "title lookup fails",
			mutate: func(f *stubFetcher, _ *stubTranscriber, _ *stubSynthesizer) {
				f.titleErr = fmt.Errorf("yt-dlp: %w", media.ErrSourceUnavailable)
			},
			wantMsg: "failed to fetch video audio",
		},
		{
			name: "download fails",
			mutate: func(f *stubFetcher, _ *stubTranscriber, _ *stubSynthesizer) {
				f.audioErr = fmt.Errorf("yt-dlp: %w", media.ErrDownloadFailed)
			},
			wantMsg: "failed to fetch video audio",
		},
		{
			name: "transcription fails",
			mutate: func(_ *stubFetcher, tr *stubTranscriber, _ *stubSynthesizer) {
				tr.err = fmt.Errorf("assemblyai: %w", transcriber.ErrTranscriptionFailed)
			},
			wantMsg: "failed to get transcript",
		},
		{
			name: "synthesis fails",
			mutate: func(_ *stubFetcher, _ *stubTranscriber, s *stubSynthesizer) {
				s.err = fmt.Errorf("openai: %w", synthesizer.ErrSynthesisFailed)
			},
			wantMsg: "failed to generate blog article",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, trans, synth := healthyStubs()
			tt.mutate(fetcher, trans, synth)
			env := newTestEnv(t, fetcher, trans, synth, user)

			body := strings.NewReader(`{"link": "https://www.youtube.com/watch?v=abc123"}`)
			req := httptest.NewRequest(http.MethodPost, "/generate", body)
			rec := httptest.NewRecorder()
			env.mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
			}
			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp["error"], tt.wantMsg)
			}
			if articles, _ := env.repo.ListByUser(context.Background(), user.ID); len(articles) != 0 {
				t.Errorf("persisted %d articles, want 0", len(articles))
			}
		})
	}
}

func TestHomeRendersUsername(t *testing.T) {
	user := &entity.User{ID: 3, Username: "carol"}
	fetcher, trans, synth := healthyStubs()
	env := newTestEnv(t, fetcher, trans, synth, user)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "carol") {
		t.Error("home page does not mention the logged-in user")
	}
}

func TestListShowsOnlyOwnArticles(t *testing.T) {
	user := &entity.User{ID: 1, Username: "alice"}
	fetcher, trans, synth := healthyStubs()
	env := newTestEnv(t, fetcher, trans, synth, user)

	ctx := context.Background()
	mine := &entity.Article{UserID: 1, SourceTitle: "My Video", SourceLink: "https://youtu.be/a", Content: "<p>mine</p>"}
	theirs := &entity.Article{UserID: 2, SourceTitle: "Someone Elses Video", SourceLink: "https://youtu.be/b", Content: "<p>theirs</p>"}
	if err := env.repo.Create(ctx, mine); err != nil {
		t.Fatal(err)
	}
	if err := env.repo.Create(ctx, theirs); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "My Video") {
		t.Error("own article missing from list")
	}
	if strings.Contains(page, "Someone Elses Video") {
		t.Error("foreign article leaked into list")
	}
}

func TestDetailRendersOwnArticle(t *testing.T) {
	user := &entity.User{ID: 1, Username: "alice"}
	fetcher, trans, synth := healthyStubs()
	env := newTestEnv(t, fetcher, trans, synth, user)

	article := &entity.Article{UserID: 1, SourceTitle: "My Video", SourceLink: "https://youtu.be/a", Content: "<h1><b><u>My Video</u></b></h1>\n<p>Body text.</p>"}
	if err := env.repo.Create(context.Background(), article); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/blogs/%d", article.ID), nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	// Stored article HTML renders unescaped.
	if !strings.Contains(rec.Body.String(), "<h1><b><u>My Video</u></b></h1>") {
		t.Error("article HTML was escaped or missing")
	}
}

func TestDetailRedirectsHome(t *testing.T) {
	user := &entity.User{ID: 1, Username: "alice"}
	fetcher, trans, synth := healthyStubs()
	env := newTestEnv(t, fetcher, trans, synth, user)

	foreign := &entity.Article{UserID: 2, SourceTitle: "Not Yours", SourceLink: "https://youtu.be/x", Content: "<p>x</p>"}
	if err := env.repo.Create(context.Background(), foreign); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"foreign article", fmt.Sprintf("/blogs/%d", foreign.ID)},
		{"missing article", "/blogs/9999"},
		{"malformed id", "/blogs/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			env.mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
			}
			if loc := rec.Header().Get("Location"); loc != "/" {
				t.Errorf("Location = %q, want %q", loc, "/")
			}
			if strings.Contains(rec.Body.String(), "Not Yours") {
				t.Error("response leaked foreign article content")
			}
		})
	}
}
