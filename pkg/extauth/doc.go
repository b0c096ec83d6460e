// Package extauth provides an embeddable ejabberd external authentication
// bridge backed by an HTTP/JSON identity service.
//
// The host chat server writes length-prefixed requests ("auth", "isuser",
// "setpass") to the bridge and reads one boolean reply per request. The
// bridge forwards each request to the backend and answers false on any
// failure.
//
// # Basic Usage
//
//	cfg := extauth.Config{
//	    ServiceURL: "https://idp.example.org/xmpp",
//	    Timeout:    5 * time.Second,
//	}
//
//	bridge, err := extauth.New(cfg, os.Stdin, os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run returns nil when the host closes stdin.
//	if err := bridge.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Wrap out in a bufio.Writer if you like; replies are flushed one by one.
//
// # Backend credentials
//
// Set [Config.AuthKey] to send a static bearer token, or [Config.TokenSecret]
// to sign a short-lived HS256 token per request. The two are mutually
// exclusive.
//
// # Event Handling
//
// To be told when the bridge stops, implement [EventHandler] and pass it via
// [WithEventHandler]. Embed [BaseEventHandler] to pick only the events you
// need.
package extauth
