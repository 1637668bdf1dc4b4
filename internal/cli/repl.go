package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	println(args ...any)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	Passwd(ctx context.Context) error
	DeleteAccount(ctx context.Context) error

	NewThread(ctx context.Context) error
	Threads(ctx context.Context) error
	Select(ctx context.Context, ref string) error
	Rm(ctx context.Context, ref string) error
	Model(ctx context.Context, name string) error
	Show(ctx context.Context) error
	Send(ctx context.Context, text string) error

	Image(ctx context.Context, prompt string) error
	Images(ctx context.Context) error
	RmImage(ctx context.Context, id string) error

	Export(ctx context.Context, path string) error
	Import(ctx context.Context, path string) error
}

const (
	helpSignedOut = "Available commands: register, login, import <file>, exit"
	helpSignedIn  = "Available commands: whoami, profile, passwd, logout, delete-account, " +
		"new, threads, select <n|id>, rm <n|id>, model <name>, show, send <text>, " +
		"image <prompt>, images, rmimage <id>, export <file>, import <file>, exit"
)

// signedOutCommands may run without an active session.
var signedOutCommands = map[string]bool{
	"help": true, "register": true, "login": true, "import": true, "exit": true, "quit": true,
}

// runREPL reads commands from reader until EOF or "exit"/"quit" and
// dispatches them to a. The first token is the command; the rest of the
// line is its argument. Command errors are printed and the loop goes on.
//
// Commands read their own prompts from the same reader, so the loop must
// not buffer past the current line.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		a.println(fmt.Sprintf("vinony%s> ", statusFn()))
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && raw == "" {
			return
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			if readErr != nil {
				return
			}
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		if !a.isLoggedIn() && !signedOutCommands[cmd] {
			a.println("Please register or login first")
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				a.println(helpSignedIn)
			} else {
				a.println(helpSignedOut)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.Whoami(ctx)
		case "profile":
			err = a.Profile(ctx)
		case "passwd":
			err = a.Passwd(ctx)
		case "delete-account":
			err = a.DeleteAccount(ctx)

		case "new":
			err = a.NewThread(ctx)
		case "threads", "l":
			err = a.Threads(ctx)
		case "show":
			err = a.Show(ctx)
		case "select", "rm", "model", "send", "image", "rmimage", "export", "import":
			if arg == "" {
				a.println("Usage:", cmd, usage[cmd])
				continue
			}
			err = dispatchWithArg(ctx, a, cmd, arg)
		case "images":
			err = a.Images(ctx)

		case "exit", "quit":
			a.println("Bye!")
			return

		default:
			a.println("Unknown command:", cmd)
		}

		if err != nil {
			a.println("Error:", err.Error())
		}
	}
}

var usage = map[string]string{
	"select":  "<n|id>",
	"rm":      "<n|id>",
	"model":   "<gpt-4o|gpt-4o-mini|claude-sonnet>",
	"send":    "<text>",
	"image":   "<prompt>",
	"rmimage": "<id>",
	"export":  "<file>",
	"import":  "<file>",
}

func dispatchWithArg(ctx context.Context, a execIface, cmd, arg string) error {
	switch cmd {
	case "select":
		return a.Select(ctx, arg)
	case "rm":
		return a.Rm(ctx, arg)
	case "model":
		return a.Model(ctx, arg)
	case "send":
		return a.Send(ctx, arg)
	case "image":
		return a.Image(ctx, arg)
	case "rmimage":
		return a.RmImage(ctx, arg)
	case "export":
		return a.Export(ctx, arg)
	case "import":
		return a.Import(ctx, arg)
	}
	return nil
}
