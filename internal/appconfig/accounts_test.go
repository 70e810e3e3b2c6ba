package appconfig

import (
	"reflect"
	"testing"

	"pkt.systems/leafcheck/schema"
)

func TestParseAccounts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		sep  string
		want []schema.Credential
	}{
		{name: "empty", raw: "", want: nil},
		{
			name: "pairs",
			raw:  "a@x.io:pw1, b@y.io : pw2 ",
			want: []schema.Credential{{Identifier: "a@x.io", Secret: "pw1"}, {Identifier: "b@y.io", Secret: "pw2"}},
		},
		{
			name: "secret keeps colons",
			raw:  "a@x.io:p:w:d",
			want: []schema.Credential{{Identifier: "a@x.io", Secret: "p:w:d"}},
		},
		{
			name: "entries without colon skipped",
			raw:  "garbage,,a@x.io:pw,",
			want: []schema.Credential{{Identifier: "a@x.io", Secret: "pw"}},
		},
		{
			name: "blank secret kept",
			raw:  "a@x.io:",
			want: []schema.Credential{{Identifier: "a@x.io", Secret: ""}},
		},
		{
			name: "custom separator",
			raw:  "a:1;b:2,3",
			sep:  ";",
			want: []schema.Credential{{Identifier: "a", Secret: "1"}, {Identifier: "b", Secret: "2,3"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAccounts(tt.raw, tt.sep)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseAccounts() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
