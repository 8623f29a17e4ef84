package catalog

import (
	"reflect"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	want := []string{"Mathematics", "Science", "English/Literature", "History", "Study Skills"}
	if got := c.Subjects(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Subjects() = %v, want %v", got, want)
	}

	for _, s := range c.Subjects() {
		templates := c.Templates(s)
		if len(templates) != 6 {
			t.Errorf("Templates(%q) has %d entries, want 6", s, len(templates))
		}
		for _, tmpl := range templates {
			if tmpl.Subject != s {
				t.Errorf("template %q has subject %q, want %q", tmpl.Category, tmpl.Subject, s)
			}
		}
	}

	if n := len(c.Techniques()); n != 15 {
		t.Errorf("Techniques() has %d entries, want 15", n)
	}
	if n := len(c.Tips()); n != 8 {
		t.Errorf("Tips() has %d entries, want 8", n)
	}
}

func TestTemplateLookup(t *testing.T) {
	c := Default()

	tmpl, ok := c.Template("Mathematics", "Concept Learning")
	if !ok {
		t.Fatal("expected Mathematics/Concept Learning to exist")
	}
	if !strings.HasPrefix(tmpl.Text, "Act as my patient math tutor.") {
		t.Errorf("unexpected template text %q", tmpl.Text)
	}

	if _, ok := c.Template("Mathematics", "Nope"); ok {
		t.Error("unknown category should not be found")
	}
	if got := c.Templates("Cooking"); got != nil {
		t.Errorf("Templates(unknown) = %v, want nil", got)
	}
}

func TestCatalogIsReadOnly(t *testing.T) {
	c := Default()
	templates := c.Templates("History")
	templates[0].Text = "mutated"

	again, _ := c.Template("History", templates[0].Category)
	if again.Text == "mutated" {
		t.Error("mutating a returned slice changed the catalog")
	}
}

func TestTechniqueLookup(t *testing.T) {
	c := Default()
	tech, ok := c.Technique("Role Assignment")
	if !ok {
		t.Fatal("expected Role Assignment technique")
	}
	if tech.BadExample != "Explain cellular respiration." {
		t.Errorf("BadExample = %q", tech.BadExample)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"no templates", "subjects:\n  - name: Art\n"},
		{"duplicate category", "subjects:\n  - name: Art\n    templates:\n      - {category: A, text: x}\n      - {category: A, text: y}\n"},
		{"empty text", "subjects:\n  - name: Art\n    templates:\n      - {category: A, text: \"\"}\n"},
		{"incomplete technique", "subjects:\n  - name: Art\n    templates:\n      - {category: A, text: x}\ntechniques:\n  - {name: T, good_example: g}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("I'm a [GRADE LEVEL] student learning [TOPIC] at [GRADE LEVEL].")
	want := []string{"GRADE LEVEL", "TOPIC"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders() = %v, want %v", got, want)
	}
	if got := Placeholders("no slots"); got != nil {
		t.Errorf("Placeholders(no slots) = %v, want nil", got)
	}
}
