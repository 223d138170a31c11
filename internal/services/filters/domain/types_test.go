package domain

import "testing"

func TestFormatOf(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"a.JSON", FormatJSON, true},
		{"dir/b.yaml", FormatYAML, true},
		{"c.yml", FormatYAML, true},
		{"d.txt", FormatJSON, false},
		{"noext", FormatJSON, false},
	}
	for _, c := range cases {
		got, ok := FormatOf(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("FormatOf(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
	if FormatYAML.String() != "yaml" || FormatJSON.String() != "json" {
		t.Fatalf("format names wrong")
	}
}

func TestClone_Independent(t *testing.T) {
	f := &Filter{Name: "x", Must: []Clause{{"seed": "A*"}}}
	c := f.Clone()
	c.Must = append(c.Must, Clause{"seed": "B*"})
	c.Name = "y"
	if len(f.Must) != 1 || f.Name != "x" {
		t.Fatalf("clone mutated original: %+v", f)
	}
	if c.ClauseCount() != 2 {
		t.Fatalf("ClauseCount = %d", c.ClauseCount())
	}
	var nilF *Filter
	if nilF.Clone() != nil {
		t.Fatalf("nil clone should be nil")
	}
}
