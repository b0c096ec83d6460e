package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/extauth/internal/adapters/log"
	"github.com/bft-labs/extauth/internal/cliconfig"
	"github.com/bft-labs/extauth/internal/logfile"
	"github.com/bft-labs/extauth/pkg/extauth"
)

const longHelp = `External authentication bridge for ejabberd.

ejabberd starts extauth as a child process and writes auth, isuser and
setpass requests to its stdin. Each request is forwarded to an HTTP/JSON
identity service and answered on stdout. Any backend failure is answered
with false.

Configure it in ejabberd.yml:

  auth_method: [external]
  extauth_program: "/usr/local/bin/extauth --config /etc/extauth/config.toml"

Logs go to a file (stdout carries the protocol); use --log - for stderr.`

var exampleUsage = strings.TrimSpace(`
  extauth --url https://idp.example.org/xmpp --auth-key <key>
  extauth --config /etc/extauth/config.toml --log - --debug
`)

// runExitGrace is how long shutdown waits for Run to return once idle.
const runExitGrace = 100 * time.Millisecond

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return extauth.Version
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var headerFlags []string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "extauth",
		Short:         "ejabberd external authentication bridge to an HTTP identity service",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// A missing default file is fine, a missing explicit one is not
			cfgFile := cfgPath
			if cfgFile == "" && cliconfig.FileExists(cliconfig.DefaultConfigPath) {
				cfgFile = cliconfig.DefaultConfigPath
			}
			if cfgFile != "" {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (EXTAUTH_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if changed["header"] {
				hs, err := parseHeaderFlags(headerFlags)
				if err != nil {
					return err
				}
				cfg.Headers = cliconfig.MergeHeaders(cfg.Headers, hs)
			}

			// Validate and set derived defaults
			if err := cfg.Validate(); err != nil {
				return err
			}

			out, closeLog, err := openLog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			fileLog := logAdapter.NewZerologLogger(out, cfg.Debug)
			fileLog.Info().
				Str("url", cfg.ServiceURL).
				Str("mode", cfg.Mode()).
				Str("version", getVersion()).
				Msg("Starting")
			fileLog.Debug().Interface("config", cfg.Redacted()).Msg("configuration")

			in := bufio.NewReader(os.Stdin)
			stdout := bufio.NewWriter(os.Stdout)
			if err := serve(cmd.Context(), cfg, fileLog, in, stdout); err != nil {
				fileLog.Error().Err(err).Msg("extauth")
				return err
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", fmt.Sprintf("path to config file (default: %s if present)", cliconfig.DefaultConfigPath))
	root.Flags().StringVar(&cfg.ServiceURL, "url", cfg.ServiceURL, "identity service base URL")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "timeout for each backend call")
	root.Flags().StringArrayVar(&headerFlags, "header", nil, "extra request header as Key=value (repeatable)")

	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "static bearer token for the identity service")
	root.Flags().StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "HMAC secret to sign a short-lived bearer token per request")
	root.Flags().StringVar(&cfg.TokenIssuer, "token-issuer", cfg.TokenIssuer, "issuer claim of signed tokens")
	root.Flags().DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "lifetime of signed tokens")

	root.Flags().StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file, - for stderr")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "log every request and reply")
	root.Flags().BoolVar(&cfg.WatchLogFile, "watch-log", cfg.WatchLogFile, "reopen the log file when it is rotated")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("extauth")
		stop()
		os.Exit(1)
	}
}

// serve runs the bridge on in/out until the host closes in or ctx is done.
// On ctx done it waits for a request in flight to be answered.
func serve(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger, in io.Reader, out io.Writer) error {
	libCfg := cfg.LibConfig()
	libCfg.UserAgent = "extauth/" + getVersion()

	bridge, err := extauth.New(libCfg, in, out,
		extauth.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)),
	)
	if err != nil {
		return fmt.Errorf("create bridge: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- bridge.Run(ctx) }()

	reason := ""
	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info().Msg("received signal, stopping...")
		// Run is blocked reading stdin; answer what is in flight and leave
		if idleErr := bridge.WaitIdle(extauth.ShutdownTimeout); idleErr != nil {
			log.Error().Err(idleErr).Msg("request still in flight")
		}
		select {
		case err = <-errCh:
		case <-time.After(runExitGrace):
			err = nil
			reason = "signal"
		}
	}
	if reason == "" {
		reason = bridge.Reason()
	}

	log.Warn().
		Str("reason", reason).
		Interface("stats", bridge.Stats()).
		Msg("Terminating")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openLog returns the log destination. A file follows rotation when
// WatchLogFile is set and is also reopened on SIGHUP.
func openLog(ctx context.Context, cfg cliconfig.Config) (io.Writer, func(), error) {
	if cfg.LogFile == cliconfig.StderrLogFile {
		return os.Stderr, func() {}, nil
	}

	w, err := logfile.Open(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}

	if cfg.WatchLogFile {
		if err := w.Watch(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "extauth: log rotation watch disabled: %v\n", err)
		}
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-hup:
				if err := w.Reopen(); err != nil {
					fmt.Fprintf(os.Stderr, "extauth: reopen log: %v\n", err)
				}
			case <-done:
				return
			}
		}
	}()

	return w, func() {
		signal.Stop(hup)
		close(done)
		w.Close()
	}, nil
}

// parseHeaderFlags parses repeated --header Key=value flags.
func parseHeaderFlags(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		k, val, ok := strings.Cut(v, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --header %q, want Key=value", v)
		}
		out[k] = strings.TrimSpace(val)
	}
	return out, nil
}
