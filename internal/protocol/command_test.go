package protocol

import (
	"reflect"
	"testing"

	"github.com/bft-labs/extauth/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    domain.Command
	}{
		{
			name:    "auth",
			payload: "auth:alice:local:pw1",
			want: domain.Command{
				Kind: domain.CommandAuth, User: "alice", Domain: "local", Password: "pw1",
				Verb: "auth", Fields: []string{"auth", "alice", "local", "pw1"},
			},
		},
		{
			name:    "isuser",
			payload: "isuser:bob:local",
			want: domain.Command{
				Kind: domain.CommandIsUser, User: "bob", Domain: "local",
				Verb: "isuser", Fields: []string{"isuser", "bob", "local"},
			},
		},
		{
			name:    "setpass",
			payload: "setpass:carol:example.org:s3cret",
			want: domain.Command{
				Kind: domain.CommandSetPass, User: "carol", Domain: "example.org", Password: "s3cret",
				Verb: "setpass", Fields: []string{"setpass", "carol", "example.org", "s3cret"},
			},
		},
		{
			name:    "empty password preserved",
			payload: "auth:alice:local:",
			want: domain.Command{
				Kind: domain.CommandAuth, User: "alice", Domain: "local", Password: "",
				Verb: "auth", Fields: []string{"auth", "alice", "local", ""},
			},
		},
		{
			name:    "unknown verb",
			payload: "foo:x:y",
			want: domain.Command{
				Kind: domain.CommandUnknown, Verb: "foo", Fields: []string{"foo", "x", "y"},
			},
		},
		{
			name:    "colon in password breaks arity",
			payload: "auth:alice:local:pw:1",
			want: domain.Command{
				Kind: domain.CommandUnknown, Verb: "auth", Fields: []string{"auth", "alice", "local", "pw", "1"},
			},
		},
		{
			name:    "isuser missing domain",
			payload: "isuser:bob",
			want: domain.Command{
				Kind: domain.CommandUnknown, Verb: "isuser", Fields: []string{"isuser", "bob"},
			},
		},
		{
			name:    "empty payload",
			payload: "",
			want: domain.Command{
				Kind: domain.CommandUnknown, Verb: "", Fields: []string{""},
			},
		},
		{
			name:    "verbs are case sensitive",
			payload: "AUTH:alice:local:pw1",
			want: domain.Command{
				Kind: domain.CommandUnknown, Verb: "AUTH", Fields: []string{"AUTH", "alice", "local", "pw1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse([]byte(tt.payload))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestParse_NeverPanics(t *testing.T) {
	inputs := [][]byte{nil, {}, {0xff, 0xfe}, []byte(":::"), []byte("auth"), []byte("setpass:::")}
	for _, in := range inputs {
		cmd := Parse(in)
		if len(cmd.Fields) == 0 {
			t.Errorf("Parse(%q) returned no fields", in)
		}
	}
	if got := Parse([]byte("setpass:::")); got.Kind != domain.CommandSetPass {
		t.Errorf("Parse(setpass:::) kind = %v, want setpass with empty fields", got.Kind)
	}
}
