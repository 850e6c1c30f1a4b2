package numerals

import "testing"

func TestToNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"direct ordinal", "primero", "1", true},
		{"feminine ordinal", "primera", "1", true},
		{"apocopated", "tercer", "3", true},
		{"cardinal", "cinco", "5", true},
		{"accented", "séptimo", "7", true},
		{"unaccented", "septimo", "7", true},
		{"upper case", "VIGÉSIMO", "20", true},
		{"twentieth", "vigésimo", "20", true},
		{"ten", "décimo", "10", true},
		{"compact teen", "decimotercero", "13", true},
		{"spaced teen", "décimo tercero", "13", true},
		{"cardinal teen", "dieciséis", "16", true},
		{"undecimo", "undécimo", "11", true},
		{"compact twenty", "veintidós", "22", true},
		{"compound tens", "treinta y dos", "32", true},
		{"ordinal tens", "trigésimo segundo", "32", true},
		{"ordinal twenty compound", "vigésimo primero", "21", true},
		{"tens alone", "cuarenta", "40", true},
		{"hundred", "cien", "100", true},
		{"hundred plus one", "ciento uno", "101", true},
		{"hundred compound", "ciento treinta y dos", "132", true},
		{"two hundred feminine", "doscientas veinte", "220", true},
		{"three hundred", "trescientos noventa y nueve", "399", true},
		{"ordinal hundred", "centésimo primero", "101", true},
		{"suffix", "tercero bis", "3 bis", true},
		{"suffix with punctuation", "Vigésimo ter.", "20 ter", true},
		{"quater alternate spelling", "quinto quáter", "5 quater", true},
		{"trailing punctuation", "segundo.", "2", true},
		{"four hundred unsupported", "cuatrocientos", "", false},
		{"bare ciento", "ciento", "", false},
		{"cien with remainder", "cien uno", "", false},
		{"empty", "", "", false},
		{"only suffix", "bis", "", false},
		{"digits", "12", "", false},
		{"garbage", "disposición", "", false},
		{"dangling y", "treinta y", "", false},
		{"hundred overflow", "ciento ciento", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.input)
			if ok != tt.ok {
				t.Fatalf("ToNumber(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}

			if got != tt.want {
				t.Errorf("ToNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	if v, ok := ToInt("veinticinco"); !ok || v != 25 {
		t.Errorf("ToInt(veinticinco) = %d, %v", v, ok)
	}

	if v, ok := ToInt("segundo bis"); !ok || v != 2 {
		t.Errorf("ToInt(segundo bis) = %d, %v", v, ok)
	}

	if _, ok := ToInt("muchas"); ok {
		t.Error("ToInt(muchas) should fail")
	}
}

func TestIsNumberWord(t *testing.T) {
	for _, w := range []string{"Uno", "cien", "doscientos", "trigésimo", "veintiún"} {
		if !IsNumberWord(w) {
			t.Errorf("IsNumberWord(%q) = false", w)
		}
	}

	if IsNumberWord("plazas") {
		t.Error("IsNumberWord(plazas) = true")
	}
}

func FuzzToNumber(f *testing.F) {
	for _, seed := range []string{"primero", "ciento uno bis", "treinta y", "", "ñ-ü."} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		got, ok := ToNumber(s)
		if !ok && got != "" {
			t.Fatalf("ToNumber(%q) returned %q with ok=false", s, got)
		}
	})
}
