package query

import "testing"

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		want   string
	}{
		{
			name:   "drops empty and nil values",
			params: []Param{P("a", ""), P("b", nil), P("c", "x")},
			want:   "?c=x",
		},
		{
			name:   "nothing survives",
			params: []Param{P("a", ""), P("b", nil)},
			want:   "",
		},
		{
			name:   "no params",
			params: nil,
			want:   "",
		},
		{
			name: "preserves caller order",
			params: []Param{
				P("countryId", "166"),
				P("page", 2),
				P("perPage", 20),
				P("state", ""),
				P("searchTerm", "st mary"),
			},
			want: "?countryId=166&page=2&perPage=20&searchTerm=st%20mary",
		},
		{
			name:   "booleans and zero are kept",
			params: []Param{P("active", false), P("offset", 0)},
			want:   "?active=false&offset=0",
		},
		{
			name:   "encodes reserved characters",
			params: []Param{P("q", "a&b=c/d")},
			want:   "?q=a%26b%3Dc%2Fd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.params...); got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	params := []Param{P("z", "1"), P("a", "2"), P("m", "3")}
	first := Build(params...)
	for i := 0; i < 10; i++ {
		if got := Build(params...); got != first {
			t.Fatalf("Build() = %q on run %d, want %q", got, i, first)
		}
	}
	if first != "?z=1&a=2&m=3" {
		t.Errorf("Build() = %q, want %q", first, "?z=1&a=2&m=3")
	}
}

func TestEscapeComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "hello%20world"},
		{"it's (ok)!*", "it's%20(ok)!*"},
		{"~-_.", "~-_."},
		{"a+b", "a%2Bb"},
		{"Côte d'Ivoire", "C%C3%B4te%20d'Ivoire"},
	}

	for _, tt := range tests {
		if got := EscapeComponent(tt.in); got != tt.want {
			t.Errorf("EscapeComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
