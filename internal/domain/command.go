package domain

// CommandKind identifies the operation requested by the host.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandAuth
	CommandIsUser
	CommandSetPass
)

// String returns the protocol verb for the kind.
func (k CommandKind) String() string {
	switch k {
	case CommandAuth:
		return "auth"
	case CommandIsUser:
		return "isuser"
	case CommandSetPass:
		return "setpass"
	default:
		return "unknown"
	}
}

// Command is a parsed host request.
// For CommandUnknown only Verb and Fields are meaningful.
type Command struct {
	Kind     CommandKind
	User     string
	Domain   string
	Password string

	// Verb is the first field as received, kept for diagnostics
	Verb string

	// Fields holds every colon-delimited field including the verb
	Fields []string
}

// JID returns the combined user@domain identity of the command.
func (c Command) JID() string {
	return JID(c.User, c.Domain)
}

// JID joins a username and a domain into a bare identity string.
func JID(user, domain string) string {
	return user + "@" + domain
}
