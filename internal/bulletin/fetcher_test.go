package bulletin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gazette/internal/cache"
	"gazette/internal/config"
)

const indexFixture = `{"status":{"code":"200","text":"ok"},"data":{"sumario":{
 "metadatos":{"publicacion":"BOE","fecha_publicacion":"20260105"},
 "diario":{"numero":"4","seccion":[
  {"codigo":"1","nombre":"I. Disposiciones generales",
   "departamento":{"codigo":"1","nombre":"JEFATURA DEL ESTADO","item":{"identificador":"GAZ-A-2026-100","titulo":"Ley 1/2026"}}},
  {"codigo":"2B","nombre":"II. B. Oposiciones y concursos","departamento":[
   {"codigo":"4810","nombre":"MINISTERIO DEL INTERIOR","epigrafe":{"nombre":"Cuerpo Nacional de Policía","item":[
     {"identificador":"GAZ-A-2026-201","titulo":"Resolución de 2 de enero de 2026, por la que se convoca proceso selectivo.",
      "url_pdf":{"szBytes":"1","texto":"/boe/dias/2026/01/05/pdfs/GAZ-A-2026-201.pdf"},
      "url_html":"https://other.example/diario_boe/txt.php?id=GAZ-A-2026-201",
      "url_xml":"/diario_boe/xml.php?id=GAZ-A-2026-201"},
     {"identificador":"GAZ-A-2026-202","titulo":"Otra resolución"}]}},
   {"codigo":"L","nombre":"ADMINISTRACIÓN LOCAL","item":{"identificador":"GAZ-A-2026-203","titulo":"Resolución del Ayuntamiento","url_pdf":"/pdfs/203.pdf"}}
  ]}]}}}}`

const documentFixture = `<?xml version="1.0" encoding="UTF-8"?>
<documento fecha_actualizacion="20260105120000">
<metadatos>
<identificador>GAZ-A-2026-201</identificador>
<departamento codigo="4810">Ministerio del Interior</departamento>
<rango codigo="5000">Resolución</rango>
<fecha_disposicion>20260102</fecha_disposicion>
<titulo>Resolución de 2 de enero de 2026,   por la que se convoca proceso selectivo.</titulo>
<fecha_publicacion>20260105</fecha_publicacion>
<pagina_inicial>1234</pagina_inicial>
<pagina_final>1240</pagina_final>
</metadatos>
<analisis>
<referencias>
<anteriores>
<anterior referencia="GAZ-A-2025-999" orden="1"><palabra codigo="270">CORRIGE</palabra><texto>errores en la Resolución de 1 de diciembre</texto></anterior>
<anterior referencia="GAZ-A-2025-999" orden="2"><palabra codigo="270">CORRIGE</palabra><texto>duplicado</texto></anterior>
</anteriores>
</referencias>
</analisis>
<texto>
<p class="parrafo">Se convocan 25 plazas &amp; más.</p>
<p class="parrafo">Segunda línea<br/>con salto.</p>
</texto>
</documento>`

func testConfig(base string) *config.Config {
	cfg := config.Default()
	cfg.Gazette.BaseURL = base
	cfg.Retry.InitialDelayMs = 1
	cfg.Retry.MaxDelayMs = 1
	cfg.Retry.TimeoutSec = 5
	cfg.Pacing.RequestsPerSecond = 1000
	cfg.Pacing.Burst = 100
	cfg.Breaker.MaxFailures = 100

	return cfg
}

func newTestFetcher(t *testing.T, cfg *config.Config, c cache.Cache) *Fetcher {
	t.Helper()

	f, err := NewFetcher(cfg, NewTransport(cfg, nil, c, nil), nil)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	return f
}

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

var monday = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

func TestFetchDailyIndex(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/datosabiertos/api/boe/sumario/20260105" {
			http.NotFound(w, r)

			return
		}

		if r.Header.Get("Accept") != acceptJSON {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}

		w.Write([]byte(indexFixture))
	})

	f := newTestFetcher(t, testConfig(srv.URL), nil)

	entries, err := f.FetchDailyIndex(context.Background(), monday)
	if err != nil {
		t.Fatalf("FetchDailyIndex: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	ids := []string{entries[0].ID, entries[1].ID, entries[2].ID}
	if strings.Join(ids, ",") != "GAZ-A-2026-201,GAZ-A-2026-202,GAZ-A-2026-203" {
		t.Errorf("ids = %v", ids)
	}

	e := entries[0]
	if e.DepartmentName != "MINISTERIO DEL INTERIOR" || e.Heading != "Cuerpo Nacional de Policía" || e.SectionCode != "2B" {
		t.Errorf("entry metadata = %+v", e)
	}

	if e.PDFURL != srv.URL+"/boe/dias/2026/01/05/pdfs/GAZ-A-2026-201.pdf" {
		t.Errorf("PDFURL = %q", e.PDFURL)
	}

	if e.HTMLURL != "https://other.example/diario_boe/txt.php?id=GAZ-A-2026-201" {
		t.Errorf("HTMLURL = %q", e.HTMLURL)
	}

	if !e.PublishedOn.Equal(monday) {
		t.Errorf("PublishedOn = %v", e.PublishedOn)
	}

	if entries[2].Heading != "" || entries[2].PDFURL != srv.URL+"/pdfs/203.pdf" {
		t.Errorf("direct item = %+v", entries[2])
	}
}

func TestFetchDailyIndex_NotPublished(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"404", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":{"code":"404","text":"No se encontró el sumario original."}}`))
		}},
		{"section absent", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":{"code":"200"},"data":{"sumario":{"diario":[{"seccion":{"codigo":"1","nombre":"I"}}]}}}`))
		}},
		{"empty diary", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":{"code":"200"},"data":{"sumario":{"diario":[]}}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.handler)
			f := newTestFetcher(t, testConfig(srv.URL), nil)

			entries, err := f.FetchDailyIndex(context.Background(), monday)
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}

			if entries == nil || len(entries) != 0 {
				t.Errorf("expected empty non-nil list, got %v", entries)
			}
		})
	}
}

func TestFetchDailyIndex_Malformed(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     `<html>maintenance</html>`,
		"no data":      `{"status":{"code":"200"}}`,
		"wrong shape":  `{"data":{"sumario":{"diario":"yes"}}}`,
		"section type": `{"data":{"sumario":{"diario":{"seccion":[1,2]}}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(body)) })
			f := newTestFetcher(t, testConfig(srv.URL), nil)

			_, err := f.FetchDailyIndex(context.Background(), monday)
			if !errors.Is(err, ErrMalformedUpstream) {
				t.Fatalf("error = %v, want ErrMalformedUpstream", err)
			}

			if errors.Is(err, ErrTransport) {
				t.Error("malformed response must not be reported as transport error")
			}
		})
	}
}

func TestTransport_Retry(t *testing.T) {
	var calls atomic.Int32

	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		w.Write([]byte(indexFixture))
	})

	f := newTestFetcher(t, testConfig(srv.URL), nil)

	entries, err := f.FetchDailyIndex(context.Background(), monday)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}

	if len(entries) != 3 || calls.Load() != 3 {
		t.Errorf("entries = %d, calls = %d", len(entries), calls.Load())
	}
}

func TestTransport_ExhaustedRetries(t *testing.T) {
	var calls atomic.Int32

	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	cfg := testConfig(srv.URL)
	f := newTestFetcher(t, cfg, nil)

	_, err := f.FetchDailyIndex(context.Background(), monday)
	if !errors.Is(err, ErrTransport) || !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}

	if int(calls.Load()) != cfg.Retry.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls.Load(), cfg.Retry.MaxAttempts)
	}
}

func TestTransport_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32

	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	f := newTestFetcher(t, testConfig(srv.URL), nil)

	if _, err := f.FetchDailyIndex(context.Background(), monday); !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestTransport_CircuitBreaker(t *testing.T) {
	var calls atomic.Int32

	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	cfg := testConfig(srv.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Breaker.MaxFailures = 2
	cfg.Breaker.OpenTimeoutSec = 60

	f := newTestFetcher(t, cfg, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.FetchDailyIndex(ctx, monday); errors.Is(err, ErrCircuitOpen) {
			t.Fatal("breaker opened too early")
		}
	}

	_, err := f.FetchDailyIndex(ctx, monday)
	if !errors.Is(err, ErrCircuitOpen) || !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}

	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestTransport_NotFoundDoesNotTripBreaker(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	cfg := testConfig(srv.URL)
	cfg.Breaker.MaxFailures = 1

	f := newTestFetcher(t, cfg, nil)

	for i := 0; i < 3; i++ {
		if _, err := f.FetchDailyIndex(context.Background(), monday); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestFetchDocument(t *testing.T) {
	var calls atomic.Int32

	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		if r.URL.Path != "/diario_boe/xml.php" || r.URL.Query().Get("id") != "GAZ-A-2026-201" {
			http.NotFound(w, r)

			return
		}

		w.Write([]byte(documentFixture))
	})

	c, err := cache.NewFileCache(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t, testConfig(srv.URL), c)
	fetchedAt := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fetchedAt }

	doc, err := f.FetchDocument(context.Background(), "GAZ-A-2026-201")
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}

	if doc.ID != "GAZ-A-2026-201" || doc.Rank != "resolution" || doc.RankLabel != "Resolución" {
		t.Errorf("metadata = %+v", doc)
	}

	if !doc.DispositionDate.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DispositionDate = %v", doc.DispositionDate)
	}

	if doc.StartPage != 1234 || doc.EndPage != 1240 {
		t.Errorf("pages = %d-%d", doc.StartPage, doc.EndPage)
	}

	if doc.Title != "Resolución de 2 de enero de 2026, por la que se convoca proceso selectivo." {
		t.Errorf("Title = %q", doc.Title)
	}

	if doc.Body != "Se convocan 25 plazas & más.\nSegunda línea\ncon salto." {
		t.Errorf("Body = %q", doc.Body)
	}

	if !strings.Contains(doc.Markup, `class="parrafo"`) {
		t.Errorf("Markup not kept: %q", doc.Markup)
	}

	if len(doc.References) != 1 || doc.References[0].ID != "GAZ-A-2025-999" || doc.References[0].Relation != "corrige" {
		t.Errorf("References = %+v", doc.References)
	}

	if !doc.FetchedAt.Equal(fetchedAt) {
		t.Errorf("FetchedAt = %v", doc.FetchedAt)
	}

	// Second fetch is served from the cache, a refresh goes upstream again.
	if _, err := f.FetchDocument(context.Background(), "GAZ-A-2026-201"); err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 1 {
		t.Errorf("calls after cached fetch = %d, want 1", calls.Load())
	}

	if _, err := f.FetchDocument(WithRefresh(context.Background()), "GAZ-A-2026-201"); err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 2 {
		t.Errorf("calls after refresh = %d, want 2", calls.Load())
	}
}

func TestFetchDocument_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{"malformed xml", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("<documento><metadatos>")) }, ErrMalformedUpstream},
		{"error root", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("<error><descripcion>No existe</descripcion></error>")) }, ErrMalformedUpstream},
		{"no identifier", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<documento><metadatos><titulo>x</titulo></metadatos></documento>"))
		}, ErrMalformedUpstream},
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.handler)
			f := newTestFetcher(t, testConfig(srv.URL), nil)

			if _, err := f.FetchDocument(context.Background(), "GAZ-A-2026-1"); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFetchConsolidated(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/buscar/act.php" {
			http.NotFound(w, r)

			return
		}

		w.Write([]byte(`<div id="a1"><h5>Artículo 1.</h5></div>`))
	})

	f := newTestFetcher(t, testConfig(srv.URL), nil)

	html, err := f.FetchConsolidated(context.Background(), "GAZ-A-2015-10566")
	if err != nil || !strings.Contains(html, `id="a1"`) {
		t.Fatalf("FetchConsolidated = %q, %v", html, err)
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(indexFixture)) })
	f := newTestFetcher(t, testConfig(srv.URL), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.FetchDailyIndex(ctx, monday); !errors.Is(err, ErrTransport) {
		t.Errorf("error = %v, want ErrTransport", err)
	}
}

func TestFetchConsolidated_BodyTooLarge(t *testing.T) {
	var calls atomic.Int32

	page := `<div id="a1"><h5>Artículo 1.</h5></div>` + strings.Repeat("<p>texto</p>", 850) + `<div id="a99"><h5>Artículo 99.</h5></div>`

	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(page))
	})

	cfg := testConfig(srv.URL)
	cfg.Gazette.MaxBodyKb = 4

	c, err := cache.NewFileCache(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t, cfg, c)

	html, err := f.FetchConsolidated(context.Background(), "GAZ-A-2015-10566")
	if !errors.Is(err, ErrBodyTooLarge) || !errors.Is(err, ErrTransport) {
		t.Fatalf("FetchConsolidated = %d bytes, %v; want ErrBodyTooLarge", len(html), err)
	}

	if calls.Load() != 1 {
		t.Errorf("calls = %d, an oversized body should not be retried", calls.Load())
	}

	if _, ok, _ := c.Get(context.Background(), f.ConsolidatedURL("GAZ-A-2015-10566")); ok {
		t.Error("oversized body was cached")
	}

	cfg.Gazette.MaxBodyKb = 16
	f = newTestFetcher(t, cfg, c)

	html, err = f.FetchConsolidated(context.Background(), "GAZ-A-2015-10566")
	if err != nil || !strings.Contains(html, `id="a99"`) {
		t.Fatalf("FetchConsolidated within limit = %d bytes, %v", len(html), err)
	}
}

func TestFetchDocument_MalformedBodyNotCached(t *testing.T) {
	var calls atomic.Int32

	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte("<html>maintenance</html>"))

			return
		}

		w.Write([]byte(documentFixture))
	})

	c, err := cache.NewFileCache(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t, testConfig(srv.URL), c)
	ctx := context.Background()

	if _, err := f.FetchDocument(ctx, "GAZ-A-2026-201"); !errors.Is(err, ErrMalformedUpstream) {
		t.Fatalf("first fetch error = %v, want ErrMalformedUpstream", err)
	}

	if _, ok, _ := c.Get(ctx, f.DocumentURL("GAZ-A-2026-201")); ok {
		t.Fatal("malformed body was cached")
	}

	doc, err := f.FetchDocument(ctx, "GAZ-A-2026-201")
	if err != nil || doc.ID != "GAZ-A-2026-201" {
		t.Fatalf("second fetch = %+v, %v", doc, err)
	}

	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}

	if _, err := f.FetchDocument(ctx, "GAZ-A-2026-201"); err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 2 {
		t.Errorf("calls after cached fetch = %d, want 2", calls.Load())
	}
}

func TestFetchDocument_RejectsCorruptCacheEntry(t *testing.T) {
	var calls atomic.Int32

	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(documentFixture))
	})

	c, err := cache.NewFileCache(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t, testConfig(srv.URL), c)
	ctx := context.Background()

	if err := c.Set(ctx, f.DocumentURL("GAZ-A-2026-201"), []byte("<html>stale</html>")); err != nil {
		t.Fatal(err)
	}

	if _, err := f.FetchDocument(ctx, "GAZ-A-2026-201"); err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
