package protocol

import (
	"strings"

	"github.com/bft-labs/extauth/internal/domain"
)

// FieldSeparator delimits the fields of a request payload.
const FieldSeparator = ":"

// verbs maps each known verb to its kind and the number of fields after it.
var verbs = map[string]struct {
	kind  domain.CommandKind
	arity int
}{
	"auth":    {domain.CommandAuth, 3},
	"isuser":  {domain.CommandIsUser, 2},
	"setpass": {domain.CommandSetPass, 3},
}

// Parse classifies a request payload.
// Unrecognized verbs and wrong field counts become domain.CommandUnknown.
func Parse(payload []byte) domain.Command {
	fields := strings.Split(string(payload), FieldSeparator)
	cmd := domain.Command{
		Kind:   domain.CommandUnknown,
		Verb:   fields[0],
		Fields: fields,
	}

	v, ok := verbs[fields[0]]
	if !ok || len(fields)-1 != v.arity {
		return cmd
	}

	cmd.Kind = v.kind
	cmd.User = fields[1]
	cmd.Domain = fields[2]
	if v.arity == 3 {
		cmd.Password = fields[3]
	}
	return cmd
}
