package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/condovista/condoctl/api"
	"github.com/condovista/condoctl/expenses"
	"github.com/condovista/condoctl/internal/config"
	"github.com/condovista/condoctl/internal/utils"
	"github.com/condovista/condoctl/owners"
	"github.com/condovista/condoctl/reports"
	"github.com/condovista/condoctl/visits"
)

const passwordEnvVar = "CONDO_PASSWORD"

// console wires the shared API client into the per-resource services and
// maps subcommands onto them.
type console struct {
	cfg      config.Config
	client   *api.Client
	logger   zerolog.Logger
	owners   *owners.Service
	expenses *expenses.Service
	visits   *visits.Service
	reports  *reports.Service
}

func newConsole(cfg config.Config, client *api.Client, logger zerolog.Logger) (*console, error) {
	ownerSvc, err := owners.NewService(client)
	if err != nil {
		return nil, err
	}
	expenseSvc, err := expenses.NewService(client)
	if err != nil {
		return nil, err
	}
	visitSvc, err := visits.NewService(client)
	if err != nil {
		return nil, err
	}
	reportSvc, err := reports.NewService(client)
	if err != nil {
		return nil, err
	}

	return &console{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		owners:   ownerSvc,
		expenses: expenseSvc,
		visits:   visitSvc,
		reports:  reportSvc,
	}, nil
}

func (c *console) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.usage()
		return nil
	}

	switch args[0] {
	case "login":
		return c.login(ctx, args[1:])
	case "logout":
		return c.logout()
	case "whoami":
		return c.whoami()
	case "owners":
		return c.ownersCmd(ctx, args[1:])
	case "expenses":
		return c.expensesCmd(ctx, args[1:])
	case "visits":
		return c.visitsCmd(ctx, args[1:])
	case "reports":
		return c.reportsCmd(ctx, args[1:])
	case "help", "-h", "--help":
		c.usage()
		return nil
	}
	return errors.Errorf("unknown command %q, run 'condoctl help'", args[0])
}

func (c *console) usage() {
	figure.NewFigure(c.cfg.GetAppName(), "cybermedium", true).Print()
	fmt.Println()
	fmt.Print(`Usage: condoctl <command> [arguments]

Commands:
  login <username>     authenticate against the backend
  logout               discard the stored session
  whoami               show the logged-in user
  owners               list|create|update|delete
  expenses             list|get|create|update|delete|pay|unpay
  visits               list|create|update|delete
  reports              list|get|create|update|delete|status

Create and update read a JSON payload from -data or stdin.
`)
}

// requireAuth is the route guard: every domain command checks the session
// gate before touching the network.
func (c *console) requireAuth() error {
	if !c.client.Store().IsAuthenticated() {
		return errors.New("not logged in, run 'condoctl login <username>' first")
	}
	return nil
}

func (c *console) login(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: condoctl login <username>")
	}
	username := args[0]

	password := os.Getenv(passwordEnvVar)
	if password == "" {
		fmt.Printf("Password for %s: ", username)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return errors.Wrap(err, "[login] read password")
		}
		password = strings.TrimSpace(line)
	}

	resp, err := c.client.Login(ctx, username, password)
	if err != nil {
		if api.IsUnauthorized(err) {
			return errors.New("login rejected, check username and password")
		}
		return err
	}

	name := username
	if first := utils.Value(resp.User).FirstName; first != "" {
		name = first
	}
	fmt.Printf("Logged in as %s\n", name)
	return nil
}

func (c *console) logout() error {
	if err := c.client.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func (c *console) whoami() error {
	store := c.client.Store()
	profile, ok := store.Profile()
	if !ok || !store.IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}

	fmt.Printf("Username: %s\n", profile.Username)
	if profile.FirstName != "" || profile.LastName != "" {
		fmt.Printf("Name:     %s %s\n", profile.FirstName, profile.LastName)
	}
	if profile.Email != "" {
		fmt.Printf("Email:    %s\n", profile.Email)
	}

	// Informational only. An expired token still counts as a session; the
	// client finds out through a rejected request, not through this clock.
	if access, ok := store.AccessToken(); ok {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err == nil {
			if expiry, err := claims.GetExpirationTime(); err == nil && expiry != nil {
				fmt.Printf("Token:    expires %s\n", expiry.Format(time.RFC3339))
			}
		}
	}
	return nil
}

func (c *console) ownersCmd(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: condoctl owners list|create|update|delete")
	}

	switch args[0] {
	case "list":
		list, err := c.owners.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(list)
	case "create":
		var owner owners.Owner
		if err := decodePayload(args[1:], &owner); err != nil {
			return err
		}
		created, err := c.owners.Create(ctx, &owner)
		if err != nil {
			return err
		}
		return printJSON(created)
	case "update":
		id, rest, err := popID(args[1:])
		if err != nil {
			return err
		}
		var owner owners.Owner
		if err := decodePayload(rest, &owner); err != nil {
			return err
		}
		updated, err := c.owners.Update(ctx, id, &owner)
		if err != nil {
			return err
		}
		return printJSON(updated)
	case "delete":
		id, _, err := popID(args[1:])
		if err != nil {
			return err
		}
		return c.owners.Delete(ctx, id)
	}
	return errors.Errorf("unknown owners subcommand %q", args[0])
}

func (c *console) expensesCmd(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: condoctl expenses list|get|create|update|delete|pay|unpay")
	}

	switch args[0] {
	case "list":
		flags := flag.NewFlagSet("expenses list", flag.ContinueOnError)
		search := flags.String("search", "", "free-text filter")
		ordering := flags.String("ordering", "", "server-side ordering, e.g. -fecha_emision")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		list, err := c.expenses.List(ctx, expenses.ListParams{Search: *search, Ordering: *ordering})
		if err != nil {
			return err
		}
		return printJSON(list)
	case "get":
		id, _, err := popID(args[1:])
		if err != nil {
			return err
		}
		expense, err := c.expenses.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(expense)
	case "create":
		var expense expenses.Expense
		if err := decodePayload(args[1:], &expense); err != nil {
			return err
		}
		created, err := c.expenses.Create(ctx, &expense)
		if err != nil {
			return err
		}
		return printJSON(created)
	case "update":
		id, rest, err := popID(args[1:])
		if err != nil {
			return err
		}
		var expense expenses.Expense
		if err := decodePayload(rest, &expense); err != nil {
			return err
		}
		updated, err := c.expenses.Update(ctx, id, &expense)
		if err != nil {
			return err
		}
		return printJSON(updated)
	case "delete":
		id, _, err := popID(args[1:])
		if err != nil {
			return err
		}
		return c.expenses.Delete(ctx, id)
	case "pay":
		id, _, err := popID(args[1:])
		if err != nil {
			return err
		}
		updated, err := c.expenses.SetPaid(ctx, id, true, time.Now().Format("2006-01-02"))
		if err != nil {
			return err
		}
		return printJSON(updated)
	case "unpay":
		id, _, err := popID(args[1:])
		if err != nil {
			return err
		}
		updated, err := c.expenses.SetPaid(ctx, id, false, "")
		if err != nil {
			return err
		}
		return printJSON(updated)
	}
	return errors.Errorf("unknown expenses subcommand %q", args[0])
}

func (c *console) visitsCmd(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: condoctl visits list|create|update|delete")
	}

	switch args[0] {
	case "list":
		list, err := c.visits.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(list)
	case "create":
		var visit visits.Visit
		if err := decodePayload(args[1:], &visit); err != nil {
			return err
		}
		created, err := c.visits.Create(ctx, &visit)
		if err != nil {
			return err
		}
		return printJSON(created)
	case "update":
		id, rest, err := popID(args[1:])
		if err != nil {
			return err
		}
		var visit visits.Visit
		if err := decodePayload(rest, &visit); err != nil {
			return err
		}
		updated, err := c.visits.Update(ctx, id, &visit)
		if err != nil {
			return err
		}
		return printJSON(updated)
	case "delete":
		id, _, err := popID(args[1:])
		if err != nil {
			return err
		}
		return c.visits.Delete(ctx, id)
	}
	return errors.Errorf("unknown visits subcommand %q", args[0])
}

func (c *console) reportsCmd(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: condoctl reports list|get|create|update|delete|status")
	}

	switch args[0] {
	case "list":
		flags := flag.NewFlagSet("reports list", flag.ContinueOnError)
		search := flags.String("search", "", "free-text filter")
		ordering := flags.String("ordering", "", "server-side ordering, e.g. -fecha_reporte")
		status := flags.String("status", "", "filter by state")
		reportType := flags.String("type", "", "filter by type")
		priority := flags.String("priority", "", "filter by priority")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		list, err := c.reports.List(ctx, reports.ListParams{
			Search:   *search,
			Ordering: *ordering,
			Status:   *status,
			Type:     *reportType,
			Priority: *priority,
		})
		if err != nil {
			return err
		}
		return printJSON(list)
	case "get":
		id, _, err := popID(args[1:])
		if err != nil {
			return err
		}
		report, err := c.reports.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(report)
	case "create":
		report, attachment, err := reportPayload(args[1:])
		if err != nil {
			return err
		}
		created, err := c.reports.Create(ctx, report, attachment)
		if err != nil {
			return err
		}
		return printJSON(created)
	case "update":
		id, rest, err := popID(args[1:])
		if err != nil {
			return err
		}
		report, attachment, err := reportPayload(rest)
		if err != nil {
			return err
		}
		updated, err := c.reports.Update(ctx, id, report, attachment)
		if err != nil {
			return err
		}
		return printJSON(updated)
	case "delete":
		id, _, err := popID(args[1:])
		if err != nil {
			return err
		}
		return c.reports.Delete(ctx, id)
	case "status":
		id, rest, err := popID(args[1:])
		if err != nil {
			return err
		}
		if len(rest) < 1 {
			return errors.New("usage: condoctl reports status <id> <state>")
		}
		updated, err := c.reports.SetStatus(ctx, id, rest[0])
		if err != nil {
			return err
		}
		return printJSON(updated)
	}
	return errors.Errorf("unknown reports subcommand %q", args[0])
}

func reportPayload(args []string) (*reports.Report, *reports.Attachment, error) {
	flags := flag.NewFlagSet("reports payload", flag.ContinueOnError)
	data := flags.String("data", "", "JSON payload (defaults to stdin)")
	photo := flags.String("photo", "", "path to a photo to attach")
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}

	var report reports.Report
	if err := decodeJSON(*data, &report); err != nil {
		return nil, nil, err
	}

	if *photo == "" {
		return &report, nil, nil
	}
	file, err := os.Open(*photo)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[reportPayload] open photo")
	}
	// The file stays open for the duration of the request; the process exits
	// right after, so there is nothing to close early.
	return &report, &reports.Attachment{Filename: file.Name(), Content: file}, nil
}

func decodePayload(args []string, v any) error {
	flags := flag.NewFlagSet("payload", flag.ContinueOnError)
	data := flags.String("data", "", "JSON payload (defaults to stdin)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return decodeJSON(*data, v)
}

func decodeJSON(data string, v any) error {
	if data != "" {
		return errors.Wrap(json.Unmarshal([]byte(data), v), "[decodeJSON] parse -data")
	}
	if err := json.NewDecoder(os.Stdin).Decode(v); err != nil {
		return errors.Wrap(err, "[decodeJSON] read payload from stdin")
	}
	return nil
}

func popID(args []string) (int, []string, error) {
	if len(args) < 1 {
		return 0, nil, errors.New("an id argument is required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, nil, errors.Errorf("invalid id %q", args[0])
	}
	return id, args[1:], nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
