package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/service"
	"github.com/MKhiriev/go-field-keeper/models"
)

const usage = `usage: field-agent <command> [flags]

commands:
  login     -u <username> [-p <password>]   password is read from stdin when omitted
  logout
  password  -old <password> -new <password>
  event     -type <type> [-details <json>]
  ping      [-lat <deg> -lng <deg> -alt <m> -acc <m> -speed <m/s> -bearing <deg> -provider <name>]
  flush
  run       flush the outbox periodically until interrupted
  status
  version
`

type App struct {
	services *service.ClientServices
	server   VersionReporter
	workers  config.ClientWorkers

	stdin  io.Reader
	stdout io.Writer

	logger *logger.Logger
}

func NewApp(services *service.ClientServices, server VersionReporter, workers config.ClientWorkers, stdin io.Reader, stdout io.Writer, logger *logger.Logger) *App {
	return &App{
		services: services,
		server:   server,
		workers:  workers,
		stdin:    stdin,
		stdout:   stdout,
		logger:   logger,
	}
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stdout, usage)
		return ErrMissingArgs
	}

	command, rest := args[0], args[1:]
	a.logger.Debug().Str("command", command).Msg("running command")

	switch command {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "password":
		return a.changePassword(ctx, rest)
	case "event":
		return a.event(ctx, rest)
	case "ping":
		return a.ping(ctx, rest)
	case "flush":
		return a.flush(ctx)
	case "run":
		return a.run(ctx)
	case "status":
		return a.status(ctx)
	case "version":
		return a.version(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		fmt.Fprint(a.stdout, usage)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		line, err := a.readLine("password: ")
		if err != nil {
			return err
		}
		*password = line
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("%w: username and password", ErrMissingArgs)
	}

	session, err := a.services.AuthService.Login(ctx, *username, *password)
	if err != nil {
		var tooMany *service.TooManyAttemptsError
		if errors.As(err, &tooMany) {
			return fmt.Errorf("too many attempts from this network, retry in %d seconds: %w", tooMany.RetryAfterSeconds(), err)
		}
		return err
	}

	fmt.Fprintf(a.stdout, "logged in as actor %d (project %d), session expires %s\n",
		session.ActorID, session.ProjectID, session.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.services.AuthService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "logged out")
	return nil
}

func (a *App) changePassword(ctx context.Context, args []string) error {
	fs := newFlagSet("password")
	oldPassword := fs.String("old", "", "current password")
	newPassword := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *oldPassword == "" || *newPassword == "" {
		return fmt.Errorf("%w: -old and -new", ErrMissingArgs)
	}

	if err := a.services.AuthService.ChangePassword(ctx, *oldPassword, *newPassword); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "password changed, every session was revoked; log in again")
	return nil
}

func (a *App) event(ctx context.Context, args []string) error {
	fs := newFlagSet("event")
	eventType := fs.String("type", "", "event type")
	details := fs.String("details", "", "event details as a JSON document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *eventType == "" {
		return fmt.Errorf("%w: -type", ErrMissingArgs)
	}

	var raw json.RawMessage
	if *details != "" {
		raw = json.RawMessage(*details)
	}

	item, err := a.services.TelemetryService.EnqueueEvent(ctx, *eventType, raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "queued event %s\n", item.ClientEventID)
	return nil
}

func (a *App) ping(ctx context.Context, args []string) error {
	fs := newFlagSet("ping")
	lat := optionalNumber(fs, "lat", "latitude")
	lng := optionalNumber(fs, "lng", "longitude")
	alt := optionalNumber(fs, "alt", "altitude")
	acc := optionalNumber(fs, "acc", "accuracy")
	speed := optionalNumber(fs, "speed", "speed")
	bearing := optionalNumber(fs, "bearing", "bearing")
	provider := fs.String("provider", "", "location provider")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var location *models.Location
	if lat.set || lng.set || *provider != "" {
		location = &models.Location{
			Latitude:  lat.ptr(),
			Longitude: lng.ptr(),
			Altitude:  alt.ptr(),
			Accuracy:  acc.ptr(),
			Speed:     speed.ptr(),
			Bearing:   bearing.ptr(),
		}
		if *provider != "" {
			location.Provider = provider
		}
	}

	if _, err := a.services.TelemetryService.EnqueuePing(ctx, location); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "queued ping")
	return nil
}

func (a *App) flush(ctx context.Context) error {
	report, err := a.services.TelemetryService.Flush(ctx)
	a.printReport(report)
	return err
}

// run blocks until ctx is cancelled, flushing in the background.
func (a *App) run(ctx context.Context) error {
	if _, err := a.services.AuthService.Session(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "flushing every %s, press Ctrl+C to stop\n", a.workers.FlushInterval)
	a.services.FlushJob.Start(ctx, a.workers.FlushInterval)
	<-ctx.Done()
	a.services.FlushJob.Stop()

	return nil
}

func (a *App) status(ctx context.Context) error {
	pending, err := a.services.TelemetryService.Pending(ctx)
	if err != nil {
		return err
	}

	session, err := a.services.AuthService.Session(ctx)
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		fmt.Fprintln(a.stdout, "session: none")
	case err != nil:
		return err
	case session.Invalidated:
		fmt.Fprintf(a.stdout, "session: actor %d, invalidated by the server\n", session.ActorID)
	default:
		fmt.Fprintf(a.stdout, "session: actor %d, expires %s\n", session.ActorID, session.ExpiresAt.Format(time.RFC3339))
	}

	fmt.Fprintf(a.stdout, "queued: %d\n", pending)
	return nil
}

func (a *App) version(ctx context.Context) error {
	v, err := a.server.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "server version: %s\n", v)
	return nil
}

func (a *App) printReport(r models.FlushReport) {
	fmt.Fprintf(a.stdout, "sent: %d, dropped: %d, remaining: %d\n", r.Sent, r.Dropped, r.Remaining)
	if r.Invalidated {
		fmt.Fprintln(a.stdout, "the server invalidated this session; log in again")
	}
}

func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.stdout, prompt)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// numberFlag distinguishes "not given" from zero.
type numberFlag struct {
	value float64
	set   bool
}

func (n *numberFlag) String() string {
	return fmt.Sprint(n.value)
}

func (n *numberFlag) Set(s string) error {
	var v models.Number
	if err := v.UnmarshalJSON([]byte(fmt.Sprintf("%q", s))); err != nil {
		return err
	}
	n.value, n.set = float64(v), true
	return nil
}

func (n *numberFlag) ptr() *models.Number {
	if !n.set {
		return nil
	}
	v := models.Number(n.value)
	return &v
}

func optionalNumber(fs *flag.FlagSet, name, usage string) *numberFlag {
	n := &numberFlag{}
	fs.Var(n, name, usage)
	return n
}
