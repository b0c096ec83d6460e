// Package log exposes the logging abstraction used by the extauth bridge.
//
// Pass a Logger to extauth.WithLogger. A zerolog adapter and a no-op logger
// are provided:
//
//	logger := log.NewZerologAdapter(os.Stderr, false)
//	bridge, err := extauth.New(cfg, os.Stdin, os.Stdout, extauth.WithLogger(logger))
//
// Implement Logger to plug in any other logging library. Never pass a writer
// over the bridge's output stream: it carries the protocol.
package log
