package payload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gazette/internal/config"
	"gazette/internal/logger"
	"gazette/internal/models"
	"gazette/internal/store"
)

var (
	ErrUnexpectedQuery  = errors.New("unexpected query")
	ErrWrongCredentials = errors.New("wrong credentials")
)

// MockClient implements the Client interface for testing.
type MockClient struct {
	ExecuteFunc func(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error)
	LoginFunc   func(ctx context.Context, email, password string) error
}

func (m *MockClient) Execute(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, query, variables)
	}

	return nil, nil
}

func (m *MockClient) Login(ctx context.Context, email, password string) error {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}

	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func sampleAnnouncement() *models.NormalizedAnnouncement {
	return &models.NormalizedAnnouncement{
		UpdatedAt:    time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		PublishedOn:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Origins:      map[string]models.Origin{models.FieldType: models.OriginContent, models.FieldScopeLevel: models.OriginTitle},
		RelatedTrack: strPtr("Administrativo del Estado"),
		EntryRef:     "GAZ-A-2026-201",
		Type:         models.TypeNewCall,
		Category:     models.CategoryC1,
		AccessMode:   models.AccessOpen,
		CleanTitle:   "Convoca proceso selectivo",
		Summary:      "Convocatoria · Ámbito estatal",
		Department:   "MINISTERIO PARA LA TRANSFORMACIÓN DIGITAL",
		Scope:        models.Scope{Level: models.ScopeNational},
		Quotas:       models.Quotas{Total: intPtr(1200), Disability: intPtr(84)},
	}
}

func docsResponse(key string, docs ...any) *GraphQLResponse {
	data, _ := json.Marshal(map[string]any{key: map[string]any{"docs": docs}})

	return &GraphQLResponse{Data: data}
}

func TestUploader_UpsertAnnouncement_Scenario(t *testing.T) {
	var (
		stored  *Announcement
		created int
		updated int
	)

	// Find returns whatever was last written, create assigns id 100.
	mockClient := &MockClient{
		ExecuteFunc: func(_ context.Context, query string, variables map[string]any) (*GraphQLResponse, error) {
			switch query {
			case FindAnnouncementQuery:
				if variables["entryId"] != "GAZ-A-2026-201" {
					t.Errorf("unexpected entryId %v", variables["entryId"])
				}

				if stored == nil {
					return docsResponse(announcementsKey), nil
				}

				return docsResponse(announcementsKey, stored), nil
			case CreateAnnouncementMutation, UpdateAnnouncementMutation:
				doc, ok := variables["data"].(Announcement)
				if !ok {
					t.Fatalf("data is %T, want Announcement", variables["data"])
				}

				if query == CreateAnnouncementMutation {
					created++
					doc.ID = 100
				} else {
					updated++
					if variables["id"] != 100 {
						t.Errorf("update id = %v, want 100", variables["id"])
					}
					doc.ID = 100
				}

				stored = &doc

				return &GraphQLResponse{Data: json.RawMessage(`{}`)}, nil
			}

			return nil, fmt.Errorf("%w: %s", ErrUnexpectedQuery, query)
		},
	}

	uploader := NewUploaderWithClient(mockClient, logger.Discard())
	ctx := context.Background()
	a := sampleAnnouncement()

	steps := []struct {
		mutate func(a *models.NormalizedAnnouncement)
		want   store.Outcome
	}{
		{want: store.Created},
		{mutate: func(a *models.NormalizedAnnouncement) { a.UpdatedAt = a.UpdatedAt.Add(time.Hour) }, want: store.Unchanged},
		{mutate: func(a *models.NormalizedAnnouncement) { a.RelevanceScore = 90 }, want: store.Updated},
	}

	for i, step := range steps {
		if step.mutate != nil {
			step.mutate(a)
		}

		got, err := uploader.UpsertAnnouncement(ctx, a)
		if err != nil {
			t.Fatalf("step %d: UpsertAnnouncement failed: %v", i, err)
		}

		if got != step.want {
			t.Errorf("step %d: outcome = %q, want %q", i, got, step.want)
		}
	}

	if created != 1 || updated != 1 {
		t.Errorf("created=%d updated=%d, want 1 and 1", created, updated)
	}

	found, err := uploader.FindAnnouncement(ctx, "GAZ-A-2026-201")
	if err != nil {
		t.Fatalf("FindAnnouncement failed: %v", err)
	}

	if !store.SameAnnouncement(found, a) {
		t.Errorf("found announcement differs from the stored one: %+v", found)
	}

	if found.OriginOf(models.FieldType) != models.OriginContent {
		t.Errorf("type origin = %v, want content", found.OriginOf(models.FieldType))
	}
}

func TestUploader_FindAnnouncement_NotFound(t *testing.T) {
	mockClient := &MockClient{
		ExecuteFunc: func(_ context.Context, _ string, _ map[string]any) (*GraphQLResponse, error) {
			return docsResponse(announcementsKey), nil
		},
	}

	uploader := NewUploaderWithClient(mockClient, logger.Discard())

	_, err := uploader.FindAnnouncement(context.Background(), "GAZ-A-2026-999")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUploader_UpsertArticle(t *testing.T) {
	existing := Article{
		ID:            7,
		DocumentID:    "GAZ-A-2026-201",
		ArticleNumber: "3 bis",
		NumberText:    "Artículo 3 bis.",
		Title:         strPtr("Requisitos"),
		Content:       "Texto del artículo.",
	}

	var mutations []string

	mockClient := &MockClient{
		ExecuteFunc: func(_ context.Context, query string, variables map[string]any) (*GraphQLResponse, error) {
			switch query {
			case FindArticleQuery:
				if variables["documentId"] == existing.DocumentID && variables["articleNumber"] == existing.ArticleNumber {
					return docsResponse(articlesKey, existing), nil
				}

				return docsResponse(articlesKey), nil
			case CreateArticleMutation, UpdateArticleMutation:
				mutations = append(mutations, query)
				return &GraphQLResponse{Data: json.RawMessage(`{}`)}, nil
			}

			return nil, fmt.Errorf("%w: %s", ErrUnexpectedQuery, query)
		},
	}

	uploader := NewUploaderWithClient(mockClient, logger.Discard())
	ctx := context.Background()

	same := models.LegalArticle{
		DocumentRef: "GAZ-A-2026-201",
		Number:      models.ArticleNumber{Base: 3, Suffix: models.SuffixBis},
		NumberText:  "Artículo 3 bis.",
		Title:       strPtr("Requisitos"),
		Content:     "Texto del artículo.",
	}

	changed := same
	changed.Content = "Texto modificado."

	fresh := same
	fresh.Number = models.ArticleNumber{Base: 4}

	tests := []struct {
		name    string
		article models.LegalArticle
		want    store.Outcome
	}{
		{"identical", same, store.Unchanged},
		{"changed content", changed, store.Updated},
		{"new number", fresh, store.Created},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uploader.UpsertArticle(ctx, tt.article)
			if err != nil {
				t.Fatalf("UpsertArticle failed: %v", err)
			}

			if got != tt.want {
				t.Errorf("outcome = %q, want %q", got, tt.want)
			}
		})
	}

	if len(mutations) != 2 || mutations[0] != UpdateArticleMutation || mutations[1] != CreateArticleMutation {
		t.Errorf("unexpected mutations: %d", len(mutations))
	}

	found, err := uploader.FindArticle(ctx, "GAZ-A-2026-201", models.ArticleNumber{Base: 3, Suffix: models.SuffixBis})
	if err != nil {
		t.Fatalf("FindArticle failed: %v", err)
	}

	if found.Number.Suffix != models.SuffixBis || *found.Title != "Requisitos" {
		t.Errorf("unexpected article: %+v", found)
	}
}

func TestUploader_PropagatesErrors(t *testing.T) {
	mockClient := &MockClient{
		ExecuteFunc: func(_ context.Context, _ string, _ map[string]any) (*GraphQLResponse, error) {
			return nil, ErrGraphQLError
		},
	}

	uploader := NewUploaderWithClient(mockClient, logger.Discard())

	if _, err := uploader.UpsertAnnouncement(context.Background(), sampleAnnouncement()); !errors.Is(err, ErrGraphQLError) {
		t.Errorf("expected ErrGraphQLError, got %v", err)
	}
}

func TestUploader_Authenticate(t *testing.T) {
	called := false
	mockClient := &MockClient{
		LoginFunc: func(_ context.Context, email, password string) error {
			called = true
			if email != "admin@test.com" || password != "pass" {
				return ErrWrongCredentials
			}

			return nil
		},
	}

	uploader := NewUploaderWithClient(mockClient, logger.Discard())
	err := uploader.Authenticate(context.Background(), "admin@test.com", "pass")

	if err != nil {
		t.Errorf("Authenticate failed: %v", err)
	}

	if !called {
		t.Error("Login func was not called")
	}
}

func TestGraphQLClient_LoginThenExecute(t *testing.T) {
	var authHeaders []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)

		var req GraphQLRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")

		if strings.Contains(req.Query, "loginUser") {
			_, _ = io.WriteString(w, `{"data":{"loginUser":{"token":"tok","user":{"id":1,"email":"a@b.c"}}}}`)
			return
		}

		_, _ = io.WriteString(w, `{"data":{"Announcements":{"docs":[]}}}`)
	}))
	defer srv.Close()

	client := NewGraphQLClient(srv.URL, "users API-Key secret", logger.Discard())
	ctx := context.Background()

	if err := client.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := client.Execute(ctx, FindAnnouncementQuery, map[string]any{"entryId": "x"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := []string{"users API-Key secret", "Bearer tok"}
	if len(authHeaders) != 2 || authHeaders[0] != want[0] || authHeaders[1] != want[1] {
		t.Errorf("Authorization headers = %v, want %v", authHeaders, want)
	}
}

func TestGraphQLClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"status", http.StatusInternalServerError, `oops`, ErrUnexpectedStatusCode},
		{"graphql", http.StatusOK, `{"errors":[{"message":"forbidden"}]}`, ErrGraphQLError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewGraphQLClient(srv.URL, "", logger.Discard())

			_, err := client.Execute(context.Background(), FindAnnouncementQuery, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOpen_Authenticates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"loginUser":{"token":""}}}`)
	}))
	defer srv.Close()

	cfg := config.StoreConfig{Backend: "payload", PayloadURL: srv.URL, PayloadEmail: "a@b.c", PayloadPassword: "pw"}

	_, err := store.Open(context.Background(), cfg, logger.Discard(), Open(logger.Discard()))
	if !errors.Is(err, ErrNoTokenReceived) {
		t.Errorf("expected ErrNoTokenReceived, got %v", err)
	}

	cfg.PayloadEmail = ""

	sink, err := store.Open(context.Background(), cfg, logger.Discard(), Open(logger.Discard()))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, ok := sink.(*Uploader); !ok {
		t.Errorf("sink is %T, want *Uploader", sink)
	}

	if err := sink.Close(context.Background()); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
