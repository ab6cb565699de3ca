// Package main runs the interactive admin client: an offline-capable
// shell over the CRM backend with a locally persisted entity cache.
package main

import (
	"bufio"
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/evolution-crm/evoadmin/internal/client/api"
	"github.com/evolution-crm/evoadmin/internal/client/cache"
	"github.com/evolution-crm/evoadmin/internal/client/settings"
	"github.com/evolution-crm/evoadmin/internal/client/store"
	"github.com/evolution-crm/evoadmin/internal/config"
	"github.com/evolution-crm/evoadmin/internal/identity"
	"github.com/evolution-crm/evoadmin/internal/logger"
	"github.com/evolution-crm/evoadmin/internal/models"
	"github.com/evolution-crm/evoadmin/internal/normalize"
)

var (
	version   string
	buildDate string
)

// app bundles everything the shell commands need.
type app struct {
	client   *api.Client
	users    *store.Store[models.User]
	locales  *store.LocaleStore
	settings *settings.Store

	// currentUser is the identity of the logged-in user, empty before login.
	currentUser string
}

func printUsers(snap store.Snapshot[models.User], visible []models.User) {
	if snap.Stale {
		fmt.Println("(showing cached data; last refresh failed or is pending)")
	}
	if snap.Dropped > 0 {
		fmt.Printf("(%d records skipped: could not be read)\n", snap.Dropped)
	}
	for _, u := range visible {
		status := "active"
		if !u.Active {
			status = "inactive"
		}
		locale := u.PrimaryLocaleName
		if locale == "" {
			locale = "-"
		}
		fmt.Printf("%s  %-20s  %-25s  %-10s  %-8s  %s\n",
			u.Identity, u.Name, u.Email, u.Role, status, locale)
	}
	fmt.Printf("%d of %d shown\n", len(visible), len(snap.Records))
}

func printLocales(snap store.Snapshot[models.Locale], visible []models.Locale) {
	if snap.Stale {
		fmt.Println("(showing cached data; last refresh failed or is pending)")
	}
	for _, l := range visible {
		status := "active"
		if !l.Active {
			status = "inactive"
		}
		hours := "-"
		if l.Schedule != nil {
			hours = l.Schedule.OpensAt + "-" + l.Schedule.ClosesAt
		}
		fmt.Printf("%s  %-20s  %-8s  %s\n", l.Identity, l.Name, status, hours)
	}
	fmt.Printf("%d of %d shown\n", len(visible), len(snap.Records))
}

func (a *app) loadUsers(ctx context.Context) {
	snap, err := a.users.Load(ctx)
	if err != nil {
		fmt.Println("load failed:", err)
		return
	}
	printUsers(snap, a.users.Visible())
}

func (a *app) loadLocales(ctx context.Context) {
	snap, err := a.locales.Load(ctx)
	if err != nil {
		fmt.Println("load failed:", err)
		return
	}
	printLocales(snap, a.locales.Visible())
}

// repl runs the interactive shell loop.
func (a *app) repl(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("evoadmin> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println(`Available commands:
  login <email> <password>        authenticate
  logout                          end the session
  users                           refresh and list users
  locales                         refresh and list locales
  search <users|locales> <term>   filter the list (accents ignored)
  active <users|locales> <true|false|off>
  create-user <nombre> <email> <password> [role]
  edit-user <id> <field> <value>  e.g. edit-user 5f1a... telefono 555-0101
  create-locale <nombre> [direccion]
  toggle <users|locales> <id>     flip the active flag
  delete <users|locales> <id>
  assign <localeID> <userID>      make the user admin of the locale
  unassign <localeID> <userID>
  assigned <localeID>             list users assigned to the locale
  passwd <old> <new>              change your password
  lang <code>                     set UI language (es, en)
  exit`)
		case "login":
			if len(args) < 3 {
				fmt.Println("Usage: login <email> <password>")
				continue
			}
			raw, err := a.client.Login(ctx, args[1], args[2])
			if err != nil {
				fmt.Println("login failed:", err)
				continue
			}
			if id, err := identity.Resolve(raw, identity.UserIDFields...); err == nil {
				a.currentUser = id
			}
			fmt.Println("Logged in")
		case "logout":
			if err := a.client.Logout(ctx); err != nil {
				fmt.Println("logout:", err)
			}
			a.currentUser = ""
			fmt.Println("Logged out")
		case "users":
			a.loadUsers(ctx)
		case "locales":
			a.loadLocales(ctx)
		case "search":
			if len(args) < 3 {
				fmt.Println("Usage: search <users|locales> <term>")
				continue
			}
			term := strings.Join(args[2:], " ")
			switch args[1] {
			case "users":
				a.users.SetSearch(term)
				printUsers(a.users.Snapshot(), a.users.Visible())
			case "locales":
				a.locales.SetSearch(term)
				printLocales(a.locales.Snapshot(), a.locales.Visible())
			default:
				fmt.Println("Usage: search <users|locales> <term>")
			}
		case "active":
			if len(args) < 3 {
				fmt.Println("Usage: active <users|locales> <true|false|off>")
				continue
			}
			value := args[2]
			if value == "off" {
				value = ""
			}
			switch args[1] {
			case "users":
				a.users.SetFilter("active", value)
				printUsers(a.users.Snapshot(), a.users.Visible())
			case "locales":
				a.locales.SetFilter("active", value)
				printLocales(a.locales.Snapshot(), a.locales.Visible())
			default:
				fmt.Println("Usage: active <users|locales> <true|false|off>")
			}
		case "create-user":
			if len(args) < 4 {
				fmt.Println("Usage: create-user <nombre> <email> <password> [role]")
				continue
			}
			input := models.RawRecord{
				"nombre":   args[1],
				"email":    args[2],
				"password": args[3],
			}
			if len(args) > 4 {
				input["role"] = args[4]
			}
			u, err := a.users.Create(ctx, input)
			if err != nil {
				fmt.Println("create failed:", err)
				continue
			}
			fmt.Println("Created user", u.Identity)
		case "edit-user":
			if len(args) < 4 {
				fmt.Println("Usage: edit-user <id> <field> <value>")
				continue
			}
			u, err := a.users.Update(ctx, args[1], models.RawRecord{
				args[2]: strings.Join(args[3:], " "),
			})
			if err != nil {
				fmt.Println("update failed:", err)
				continue
			}
			fmt.Println("Updated user", u.Identity)
		case "create-locale":
			if len(args) < 2 {
				fmt.Println("Usage: create-locale <nombre> [direccion]")
				continue
			}
			input := models.RawRecord{"nombre": args[1]}
			if len(args) > 2 {
				input["direccion"] = strings.Join(args[2:], " ")
			}
			l, err := a.locales.Create(ctx, input)
			if err != nil {
				fmt.Println("create failed:", err)
				continue
			}
			fmt.Println("Created locale", l.Identity)
		case "toggle":
			if len(args) < 3 {
				fmt.Println("Usage: toggle <users|locales> <id>")
				continue
			}
			switch args[1] {
			case "users":
				u, err := a.users.ToggleActive(ctx, args[2])
				if err != nil {
					fmt.Println("toggle failed:", err)
					continue
				}
				fmt.Printf("User %s active=%v\n", u.Identity, u.Active)
			case "locales":
				l, err := a.locales.ToggleActive(ctx, args[2])
				if err != nil {
					fmt.Println("toggle failed:", err)
					continue
				}
				fmt.Printf("Locale %s active=%v\n", l.Identity, l.Active)
			default:
				fmt.Println("Usage: toggle <users|locales> <id>")
			}
		case "delete":
			if len(args) < 3 {
				fmt.Println("Usage: delete <users|locales> <id>")
				continue
			}
			var err error
			switch args[1] {
			case "users":
				err = a.users.Delete(ctx, args[2])
			case "locales":
				err = a.locales.Delete(ctx, args[2])
			default:
				fmt.Println("Usage: delete <users|locales> <id>")
				continue
			}
			if err != nil {
				fmt.Println("delete failed:", err)
				continue
			}
			fmt.Println("Deleted")
		case "assign":
			if len(args) < 3 {
				fmt.Println("Usage: assign <localeID> <userID>")
				continue
			}
			if err := a.locales.AssignAdmin(ctx, args[1], args[2], ""); err != nil {
				fmt.Println("assign failed:", err)
				continue
			}
			fmt.Println("Assigned")
		case "unassign":
			if len(args) < 3 {
				fmt.Println("Usage: unassign <localeID> <userID>")
				continue
			}
			if err := a.locales.UnassignUser(ctx, args[1], args[2]); err != nil {
				fmt.Println("unassign failed:", err)
				continue
			}
			fmt.Println("Unassigned")
		case "assigned":
			if len(args) < 2 {
				fmt.Println("Usage: assigned <localeID>")
				continue
			}
			users, dropped, err := a.locales.AssignedUsers(ctx, args[1])
			if err != nil {
				fmt.Println("lookup failed:", err)
				continue
			}
			for _, u := range users {
				fmt.Printf("%s  %-20s  %s\n", u.Identity, u.Name, u.Email)
			}
			if dropped > 0 {
				fmt.Printf("(%d records skipped: could not be read)\n", dropped)
			}
		case "passwd":
			if len(args) < 3 {
				fmt.Println("Usage: passwd <old> <new>")
				continue
			}
			if a.currentUser == "" {
				fmt.Println("log in first")
				continue
			}
			if err := a.client.ChangePassword(ctx, a.currentUser, args[1], args[2]); err != nil {
				fmt.Println("change password failed:", err)
				continue
			}
			fmt.Println("Password changed")
		case "lang":
			if len(args) < 2 {
				fmt.Println("Usage: lang <code>")
				continue
			}
			err := a.settings.Update(func(s *settings.Settings) {
				s.Language = args[1]
			})
			if err != nil {
				fmt.Println("settings:", err)
				continue
			}
			fmt.Println("Language set to", args[1])
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func main() {
	var showVer bool
	flag.BoolVar(&showVer, "version", false, "show build version and date")

	options := &config.Options{}
	config.Register(flag.CommandLine, options)
	options = config.Parse(flag.CommandLine, options, os.Args[1:])

	if showVer {
		fmt.Printf("Evolution Admin Client\nVersion: %s\nBuild Date: %s\n",
			cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log, err := logger.New(options.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	tokens, err := api.NewTokenStore(options.TokenPath)
	if err != nil {
		log.Fatal("cannot open token store", zap.Error(err))
	}
	client := api.New(options.ServerURL, options.RequestTimeout, tokens, log)

	entityCache, err := cache.Open(options.CachePath)
	if err != nil {
		log.Fatal("cannot open entity cache", zap.Error(err))
	}

	n := normalize.New(log)
	a := &app{
		client:   client,
		users:    store.Users(client, entityCache, n, log),
		locales:  store.Locales(client, entityCache, n, log),
		settings: settings.Open(options.SettingsPath),
	}

	a.repl(context.Background())
}
