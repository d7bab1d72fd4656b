package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/config"
	"github.com/creditor/creditor_console/internal/logging"
	"github.com/creditor/creditor_console/internal/notification"
	"github.com/creditor/creditor_console/internal/session"
)

const usage = `usage: creditorctl <command> [flags]

commands:
  login            sign in with phone number and password
  logout           forget the stored session
  whoami           print the signed in identity
  request-otp      send a verification code to a phone number
  verify-otp       check a verification code
  create-password  finish signup and sign in
  loans            list loans
  transactions     list transactions
  customers        list customers
`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// run executes one command against a manager persisted in SESSION_FILE.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return flag.ErrHelp
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewWithWriter(stderr, cfg.LogLevel, "text")

	store, err := session.NewFileStore(cfg.SessionFile, cfg.SessionStoreKey)
	if err != nil {
		return err
	}
	client, err := apiclient.New(apiclient.Options{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout, Logger: logger})
	if err != nil {
		return err
	}
	manager, err := session.New(session.Options{
		Client:   client,
		Store:    store,
		Notifier: &printNotifier{w: stderr},
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer manager.Dispose()

	if err := manager.Init(ctx); err != nil {
		logger.Debug("session restore failed", "error", err)
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	return cmd(ctx, &env{manager: manager, out: stdout, flags: fs}, args[1:])
}

// printNotifier writes notifications as plain lines, the CLI's toast.
type printNotifier struct {
	w io.Writer
}

func (p *printNotifier) Send(_ context.Context, m notification.Message) error {
	_, err := fmt.Fprintf(p.w, "[%s] %s\n", m.Kind, m.Body)
	return err
}
