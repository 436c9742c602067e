package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jimalvess/diario-cli/internal/client/client"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, username string) error
	Register(ctx context.Context, username string) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, link string) error
	List(ctx context.Context, sort string, page int) error
	Show(ctx context.Context, id int64) error
	NewEntry(ctx context.Context, form entryForm) error
	EditEntry(ctx context.Context, id int64, form entryForm) error
	Delete(ctx context.Context, id int64) error
	Download(ctx context.Context, entryID, attachmentID int64) error
}

const (
	helpLoggedOut = "Available commands: login, register, forgot, reset, exit"
	helpLoggedIn  = "Available commands: (l)ist [asc|desc] [page], show <id>, new, edit <id>, delete <id>, download <entry-id> <attachment-id>, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the diario CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The same reader serves the prompts of the
// commands themselves. The loop exits on EOF or when the user types "exit"
// or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                  : show available commands
//	  - login [user]          : authenticate
//	  - register [user]       : create an account
//	  - forgot [email]        : request a password reset link
//	  - reset [link]          : set a new password from a reset link
//	  - exit | quit           : leave the program
//
//	Logged in:
//	  - l | list [asc|desc] [page]   : list entries
//	  - show <id>                    : show one entry
//	  - new                          : write an entry (editor sub-prompt)
//	  - edit <id>                    : edit an entry (editor sub-prompt)
//	  - delete <id>                  : delete an entry
//	  - download <entry> <att>       : save an attachment locally
//	  - logout                       : log out
//
// Command errors are reported as a one-line message per error kind and the
// loop keeps running.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("diario %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				printlnFn("error:", err)
			}
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn(errorMessage(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.Login(ctx, argAt(args, 0))
	case "register":
		return a.Register(ctx, argAt(args, 0))
	case "logout":
		return a.Logout(ctx)
	case "forgot":
		return a.ForgotPassword(ctx, argAt(args, 0))
	case "reset":
		return a.ResetPassword(ctx, argAt(args, 0))

	case "l", "list":
		sort, page := "", 1
		for _, arg := range args {
			if n, err := strconv.Atoi(arg); err == nil {
				page = n
			} else {
				sort = arg
			}
		}
		return a.List(ctx, sort, page)

	case "show":
		id, err := oneID(args, "show <id>")
		if err != nil {
			return err
		}
		return a.Show(ctx, id)

	case "new":
		return a.NewEntry(ctx, entryForm{})

	case "edit":
		id, err := oneID(args, "edit <id>")
		if err != nil {
			return err
		}
		return a.EditEntry(ctx, id, entryForm{})

	case "delete":
		id, err := oneID(args, "delete <id>")
		if err != nil {
			return err
		}
		return a.Delete(ctx, id)

	case "download":
		if len(args) != 2 {
			return usageError("download <entry-id> <attachment-id>")
		}
		entryID, err := parseID(args[0])
		if err != nil {
			return err
		}
		attID, err := parseID(args[1])
		if err != nil {
			return err
		}
		return a.Download(ctx, entryID, attID)

	default:
		return fmt.Errorf("%w: unknown command %q, type 'help'", client.ErrValidation, cmd)
	}
}

func oneID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, usageError(usage)
	}
	return parseID(args[0])
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
