package core

import (
	"reflect"
	"testing"
)

func TestParseOrdering(t *testing.T) {
	allowed := []string{"title", "due_date", "created_at"}

	tests := []struct {
		name string
		s    string
		want []DBOrdering
	}{
		{name: "empty", s: ""},
		{name: "single", s: "title", want: []DBOrdering{{Field: "title", Ascending: true}}},
		{name: "descending", s: "-created_at", want: []DBOrdering{{Field: "created_at"}}},
		{
			name: "multiple with spaces",
			s:    "due_date, -title",
			want: []DBOrdering{{Field: "due_date", Ascending: true}, {Field: "title"}},
		},
		{name: "unknown fields dropped", s: "password,-id", want: nil},
		{name: "mixed", s: "secret,-due_date", want: []DBOrdering{{Field: "due_date"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseOrdering(tt.s, allowed...); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseOrdering() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderingClause(t *testing.T) {
	if got := OrderingClause(nil, "created_at DESC"); got != "created_at DESC" {
		t.Errorf("OrderingClause() = %q, want default", got)
	}
	got := OrderingClause([]DBOrdering{{Field: "title", Ascending: true}, {Field: "created_at"}}, "")
	if want := "title ASC, created_at DESC"; got != want {
		t.Errorf("OrderingClause() = %q, want %q", got, want)
	}
}
