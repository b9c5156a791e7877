package webid

import (
	"reflect"
	"testing"
)

func TestExtractURIs(t *testing.T) {
	tests := []struct {
		name string
		san  string
		want []string
	}{
		{"single URI", "URI:https://alice.example/profile#me", []string{"https://alice.example/profile#me"}},
		{"order preserved among mixed entries", "URI:a, URI:b, DNS:x, URI:c", []string{"a", "b", "c"}},
		{"URI after DNS entry", "DNS:example.com, URI:https://bob.example/#me", []string{"https://bob.example/#me"}},
		{"empty field", "", []string{}},
		{"no URI entries", "DNS:example.com, email:bob@example.com", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractURIs(tt.san)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractURIs(%q) = %v, want %v", tt.san, got, tt.want)
			}
		})
	}
}
