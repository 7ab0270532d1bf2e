package payload

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `  {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"single line fence", "```{\"a\":1}```", `{"a":1}`},
		{"plain text", "hola", "hola"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"object", `{"a":1}`, `{"a":1}`},
		{"string encoded", `"{\"a\":1}"`, `{"a":1}`},
		{"fenced string", `"` + "```json\\n{\\\"a\\\":1}\\n```" + `"`, `{"a":1}`},
		{"double encoded", `"\"{\\\"a\\\":1}\""`, `{"a":1}`},
		{"fenced raw body", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain string stays", `"hola"`, `"hola"`},
		{"broken inner json stays", `"{not json"`, `"{not json"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Unwrap([]byte(tt.in))); got != tt.want {
				t.Errorf("Unwrap(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	if got := Text([]byte(`"una explicación"`)); got != "una explicación" {
		t.Errorf("Text(string) = %q", got)
	}
	if got := Text([]byte("```\nhola\n```")); got != "hola" {
		t.Errorf("Text(fenced) = %q", got)
	}
}
