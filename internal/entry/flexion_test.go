package entry

import "testing"

func TestFlexionSingleTemplate(t *testing.T) {
	f := NewFlexion("Flexion:gehen", flexionGehenMarkup)

	tpls := f.FlexionTemplates()
	if len(tpls) != 1 {
		t.Fatalf("templates = %d, want 1", len(tpls))
	}
	if f.Status() != StatusOK {
		t.Errorf("status = %s, want OK", f.Status())
	}

	pos := f.POS()
	if len(pos) != 1 || pos[0] != "Verb" {
		t.Errorf("pos = %v, want [Verb]", pos)
	}

	infl := f.Inflections()
	if len(infl) != 1 {
		t.Fatalf("inflections = %d, want 1", len(infl))
	}
	if v, _ := infl[0].Get("5"); v != "gegangen" {
		t.Errorf(`inflection "5" = %q, want "gegangen"`, v)
	}
}

func TestFlexionNoTemplates(t *testing.T) {
	f := NewFlexion("Flexion:leer", "== Flexion:leer ({{Sprache|Deutsch}}) ==\nnur Text\n")

	if tpls := f.FlexionTemplates(); len(tpls) != 0 {
		t.Fatalf("templates = %d, want 0", len(tpls))
	}
	if f.Status() != StatusNoFlexionTemplates {
		t.Errorf("status = %s, want NO_FLEXION_TEMPLATES", f.Status())
	}

	// The later empty POS derivation must not hide the first failure.
	if pos := f.POS(); len(pos) != 0 {
		t.Errorf("pos = %v, want empty", pos)
	}
	if f.Status() != StatusNoFlexionTemplates {
		t.Errorf("status = %s, first failure must win", f.Status())
	}
}

func TestFlexionMultipleTemplatesRetainData(t *testing.T) {
	markup := `== Flexion:bunt ({{Sprache|Deutsch}}) ==
{{Deutsch Adjektiv Übersicht|bunt|bunter|am buntesten}}
{{Deutsch Adjektiv Deklination|bunt}}
`
	f := NewFlexion("Flexion:bunt", markup)

	tpls := f.FlexionTemplates()
	if len(tpls) != 2 {
		t.Fatalf("templates = %d, want 2 (data retained despite the warning)", len(tpls))
	}
	if f.Status() != StatusMultipleFlexionTemplates {
		t.Errorf("status = %s, want MULTIPLE_FLEXION_TEMPLATES", f.Status())
	}

	pos := f.POS()
	if len(pos) != 2 || pos[0] != "Adjektiv" || pos[1] != "Adjektiv" {
		t.Errorf("pos = %v, want [Adjektiv Adjektiv]", pos)
	}

	if infl := f.Inflections(); len(infl) != 2 {
		t.Errorf("inflections = %d, want 2", len(infl))
	}
}

func TestFlexionNoPOSToken(t *testing.T) {
	markup := "== Flexion:x ({{Sprache|Deutsch}}) ==\n{{irgendwas|1}}\n"
	f := NewFlexion("Flexion:x", markup)

	if pos := f.POS(); len(pos) != 0 {
		t.Fatalf("pos = %v, want empty", pos)
	}
	if f.Status() != StatusNoPOS {
		t.Errorf("status = %s, want NO_POS", f.Status())
	}
}

func TestFlexionShortCircuitsWithoutSection(t *testing.T) {
	f := NewFlexion("Flexion:x", "kein Abschnitt")

	if f.Status() != StatusNoSection {
		t.Fatalf("status = %s, want NO_SECTION", f.Status())
	}
	if tpls := f.FlexionTemplates(); tpls != nil {
		t.Errorf("templates = %v, want nil", tpls)
	}
	if pos := f.POS(); pos != nil {
		t.Errorf("pos = %v, want nil", pos)
	}
	if infl := f.Inflections(); len(infl) != 0 {
		t.Errorf("inflections = %d, want 0", len(infl))
	}
	if f.Status() != StatusNoSection {
		t.Errorf("status = %s, first failure must win", f.Status())
	}
}

func TestFlexionMemoized(t *testing.T) {
	f := NewFlexion("Flexion:gehen", flexionGehenMarkup)

	a := f.FlexionTemplates()
	b := f.FlexionTemplates()
	if len(a) != len(b) || a[0] != b[0] {
		t.Error("FlexionTemplates not memoized")
	}
}
