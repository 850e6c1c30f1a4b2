package articles

import (
	"errors"
	"testing"
)

func numbers(r Result) []string {
	out := make([]string, 0, len(r.Articles))
	for _, a := range r.Articles {
		out = append(out, a.Number.String())
	}

	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func TestExtract_NoBlocks(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"empty", ""},
		{"plain text", "Texto sin estructura alguna."},
		{"unrelated ids", `<div id="preambulo"><p>Exposición de motivos.</p></div><div id="dt1"><p>Disposición transitoria.</p></div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractArticles(tt.markup)
			if got == nil {
				t.Fatal("expected empty slice, got nil")
			}

			if len(got) != 0 {
				t.Errorf("expected no articles, got %d", len(got))
			}
		})
	}
}

func TestExtract_KeywordSuffixTitle(t *testing.T) {
	markup := `<div id="a3bis">
		<h5 class="articulo">Article 3 bis. Of appeals</h5>
		<p class="parrafo">The appeal may be filed within one month.</p>
	</div>`

	got := ExtractArticles(markup)
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}

	a := got[0]
	if a.Number.String() != "3 bis" {
		t.Errorf("number = %q, want %q", a.Number.String(), "3 bis")
	}

	if a.Title == nil || *a.Title != "Of appeals" {
		t.Errorf("title = %v, want %q", a.Title, "Of appeals")
	}

	if a.Content != "The appeal may be filed within one month." {
		t.Errorf("content = %q", a.Content)
	}
}

func TestExtract_Ordering(t *testing.T) {
	markup := `
		<div id="a11"><p>11</p><p>Once.</p></div>
		<div id="a10ter"><h5 class="articulo">Artículo 10 ter.</h5><p>Diez ter.</p></div>
		<div id="a10"><p>10. Objeto</p><p>Diez.</p></div>
		<div id="a10bis"><p>10 bis</p><p>Diez bis.</p></div>`

	r := NewExtractor().Extract("GAZ-A-2026-1", markup)

	want := []string{"10", "10 bis", "10 ter", "11"}
	if got := numbers(r); !equalStrings(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	for _, a := range r.Articles {
		if a.DocumentRef != "GAZ-A-2026-1" {
			t.Errorf("document ref = %q", a.DocumentRef)
		}
	}

	if r.Articles[0].Title == nil || *r.Articles[0].Title != "Objeto" {
		t.Errorf("title of 10 = %v", r.Articles[0].Title)
	}

	if r.Articles[1].Title != nil {
		t.Errorf("title of 10 bis should be nil, got %q", *r.Articles[1].Title)
	}

	if r.Articles[3].Content != "Once." {
		t.Errorf("content of 11 = %q", r.Articles[3].Content)
	}
}

func TestExtract_SpelledOrdinals(t *testing.T) {
	markup := `
		<div id="asegundo"><p>Segundo.</p><p>Texto del segundo.</p></div>
		<div id="aprimero"><h5 class="articulo">Artículo primero. Objeto.</h5><p>Texto del primero.</p></div>
		<div id="ins-3"><p>Tercera. Ámbito de aplicación.</p><p>Texto de la tercera.</p></div>
		<div id="avigesimo"><h5>Artículo vigésimo primero bis. Régimen</h5><p>Texto.</p></div>`

	r := NewExtractor().Extract("doc", markup)

	want := []string{"1", "2", "3", "21 bis"}
	if got := numbers(r); !equalStrings(got, want) {
		t.Fatalf("numbers = %v, want %v", got, want)
	}

	if r.Articles[0].Title == nil || *r.Articles[0].Title != "Objeto" {
		t.Errorf("title of primero = %v", r.Articles[0].Title)
	}

	if r.Articles[2].Title == nil || *r.Articles[2].Title != "Ámbito de aplicación" {
		t.Errorf("title of tercera = %v", r.Articles[2].Title)
	}

	if r.Articles[3].NumberText != "vigésimo primero bis" {
		t.Errorf("number text = %q", r.Articles[3].NumberText)
	}
}

func TestExtract_DroppedBlocks(t *testing.T) {
	markup := `
		<div id="a1"><h5>Artículo 1. Objeto.</h5><p>Uno.</p></div>
		<div id="a400"><h5>Artículo cuatrocientos.</h5><p>Fuera de vocabulario.</p></div>
		<div id="a5"><h5>Disposición derogatoria, única</h5><p>Sin cabecera de artículo.</p></div>
		<div id="a1-2"><h5>Artículo 1.</h5><p>Repetido.</p></div>
		<div id="a7"></div>`

	r := NewExtractor().Extract("doc", markup)

	if len(r.Articles) != 1 || r.Articles[0].Content != "Uno." {
		t.Fatalf("articles = %+v", r.Articles)
	}

	want := Stats{Blocks: 5, Extracted: 1, Unrecognized: 1, UnsupportedOrdinal: 1, Duplicates: 1, Empty: 1}
	if r.Stats != want {
		t.Errorf("stats = %+v, want %+v", r.Stats, want)
	}

	reasons := map[string]error{}
	for _, d := range r.Dropped {
		reasons[d.BlockID] = d.Reason
	}

	checks := map[string]error{
		"a400": ErrUnsupportedOrdinal,
		"a5":   ErrUnrecognizedHeader,
		"a1-2": ErrDuplicateArticle,
		"a7":   ErrEmptyBlock,
	}
	for id, target := range checks {
		if !errors.Is(reasons[id], target) {
			t.Errorf("block %s reason = %v, want %v", id, reasons[id], target)
		}
	}
}

func TestExtract_Boilerplate(t *testing.T) {
	markup := `<div id="a5" class="bloque">
		<p class="bloque">[Bloque 5: #a5]</p>
		<h5 class="articulo">Artículo 5. Plazo de presentación.</h5>
		<p class="parrafo">El plazo será de veinte días.</p>
		<p class="nota_pie">Nota: redacción anterior.</p>
		<div class="juris"><p>Sentencia TC 1/2020.</p></div>
		<blockquote><p>«Artículo 7. Texto modificado.»</p></blockquote>
		<p class="parrafo">Las solicitudes   se presentarán<br/>por vía electrónica.</p>
		<p></p><p>  </p>
		<p>[Bloque 6: #a6]</p>
		<p class="linkSubir"><a href="#top">Subir</a></p>
	</div>`

	got := ExtractArticles(markup)
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}

	want := "El plazo será de veinte días.\nLas solicitudes se presentarán\npor vía electrónica."
	if got[0].Content != want {
		t.Errorf("content = %q, want %q", got[0].Content, want)
	}

	if got[0].Title == nil || *got[0].Title != "Plazo de presentación" {
		t.Errorf("title = %v", got[0].Title)
	}
}

func TestExtract_SiblingRuns(t *testing.T) {
	markup := `<texto>
		<p class="articulo">Artículo 1. Objeto.</p>
		<p class="parrafo">Uno.</p>
		<p class="parrafo">Dos.</p>
		<p class="capitulo_num">CAPÍTULO II</p>
		<p class="articulo">Artículo 2.</p>
		<p class="parrafo">Tres.</p>
	</texto>`

	r := NewExtractor().Extract("doc", markup)
	if got := numbers(r); !equalStrings(got, []string{"1", "2"}) {
		t.Fatalf("numbers = %v", got)
	}

	if r.Articles[0].Content != "Uno.\nDos." {
		t.Errorf("content of 1 = %q", r.Articles[0].Content)
	}

	if r.Articles[1].Title != nil {
		t.Errorf("title of 2 should be nil")
	}

	if r.Articles[1].Content != "Tres." {
		t.Errorf("content of 2 = %q", r.Articles[1].Content)
	}
}

func TestExtract_MalformedMarkup(t *testing.T) {
	inputs := []string{
		`<div id="a1"><h5>Artículo 1.`,
		`<<<>>><div id="a2"`,
		"\x00\xff<p class=\"articulo\">",
	}

	for _, in := range inputs {
		r := NewExtractor().Extract("doc", in)
		if r.Articles == nil {
			t.Errorf("nil articles for %q", in)
		}
	}
}

func FuzzExtract(f *testing.F) {
	f.Add(`<div id="a1"><h5>Artículo 1. Objeto.</h5><p>Uno.</p></div>`)
	f.Add(`<p class="articulo">Artículo primero</p><p>x</p>`)

	f.Fuzz(func(t *testing.T, markup string) {
		r := NewExtractor().Extract("doc", markup)
		for i := 1; i < len(r.Articles); i++ {
			if r.Articles[i].Number.Less(r.Articles[i-1].Number) {
				t.Fatalf("articles out of order: %v", numbers(r))
			}
		}
	})
}
