package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/customer"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/loan"
	"github.com/creditor/creditor_console/internal/session"
	"github.com/creditor/creditor_console/internal/transaction"
)

var errNotSignedIn = errors.New("not signed in, run creditorctl login first")

type env struct {
	manager *session.Manager
	out     io.Writer
	flags   *flag.FlagSet
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"login":           login,
	"logout":          logout,
	"whoami":          whoami,
	"request-otp":     requestOTP,
	"verify-otp":      verifyOTP,
	"create-password": createPassword,
	"loans":           listLoans,
	"transactions":    listTransactions,
	"customers":       listCustomers,
}

func (e *env) print(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// phoneFlags registers -country and -phone and returns a resolver that
// joins them when a country code was given.
func phoneFlags(fs *flag.FlagSet) func() (string, error) {
	country := fs.String("country", "", "country code, e.g. +31")
	phone := fs.String("phone", "", "phone number")
	return func() (string, error) {
		if strings.TrimSpace(*phone) == "" {
			return "", session.ErrMissingPhone
		}
		if *country == "" {
			return strings.TrimSpace(*phone), nil
		}
		return identity.FormatPhone(*country, *phone)
	}
}

// passwordFlag falls back to CREDITOR_PASSWORD so secrets stay out of
// shell history.
func passwordFlag(fs *flag.FlagSet) *string {
	return fs.String("password", os.Getenv("CREDITOR_PASSWORD"), "password (default $CREDITOR_PASSWORD)")
}

func login(ctx context.Context, e *env, args []string) error {
	phone := phoneFlags(e.flags)
	password := passwordFlag(e.flags)
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	number, err := phone()
	if err != nil {
		return err
	}
	if err := e.manager.Login(ctx, number, *password); err != nil {
		return err
	}
	return e.print(e.manager.Snapshot())
}

func logout(ctx context.Context, e *env, args []string) error {
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	e.manager.Logout(ctx)
	return nil
}

func whoami(_ context.Context, e *env, args []string) error {
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	u, ok := e.manager.User()
	if !ok {
		return errNotSignedIn
	}
	return e.print(u)
}

func requestOTP(ctx context.Context, e *env, args []string) error {
	phone := phoneFlags(e.flags)
	purpose := e.flags.String("purpose", "", "verification purpose sent to the API")
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	number, err := phone()
	if err != nil {
		return err
	}
	res, err := e.manager.RequestVerificationCode(ctx, session.VerificationRequest{PhoneNumber: number, Purpose: *purpose})
	if err != nil {
		return err
	}
	return e.print(res)
}

func verifyOTP(ctx context.Context, e *env, args []string) error {
	phone := phoneFlags(e.flags)
	code := e.flags.String("code", "", "verification code")
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	number, err := phone()
	if err != nil {
		return err
	}
	res, err := e.manager.VerifyCode(ctx, number, strings.TrimSpace(*code))
	if err != nil {
		return err
	}
	return e.print(res)
}

func createPassword(ctx context.Context, e *env, args []string) error {
	phone := phoneFlags(e.flags)
	password := passwordFlag(e.flags)
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	number, err := phone()
	if err != nil {
		return err
	}
	if err := e.manager.CreatePassword(ctx, number, *password); err != nil {
		return err
	}
	return e.print(e.manager.Snapshot())
}

func requireUser(e *env) (identity.User, error) {
	u, ok := e.manager.User()
	if !ok {
		return identity.User{}, errNotSignedIn
	}
	return u, nil
}

func listLoans(ctx context.Context, e *env, args []string) error {
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	if _, err := requireUser(e); err != nil {
		return err
	}
	loans, err := loan.NewService(e.manager.Client()).List(ctx)
	if err != nil {
		return describe(err)
	}
	return e.print(loans)
}

func listTransactions(ctx context.Context, e *env, args []string) error {
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	u, err := requireUser(e)
	if err != nil {
		return err
	}
	svc := transaction.NewService(e.manager.Client())
	var txs []transaction.Transaction
	if u.Role == identity.RoleCustomer {
		txs, err = svc.ByCustomer(ctx, u.ID)
	} else {
		txs, err = svc.List(ctx)
	}
	if err != nil {
		return describe(err)
	}
	return e.print(txs)
}

func listCustomers(ctx context.Context, e *env, args []string) error {
	if err := e.flags.Parse(args); err != nil {
		return err
	}
	if _, err := requireUser(e); err != nil {
		return err
	}
	customers, err := customer.NewService(e.manager.Client()).List(ctx)
	if err != nil {
		return describe(err)
	}
	return e.print(customers)
}

// describe turns an upstream failure into the message a person should see.
func describe(err error) error {
	return errors.New(apiclient.Describe(err))
}
