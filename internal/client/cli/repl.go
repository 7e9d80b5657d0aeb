package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Tips(ctx context.Context) error
	Stats(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, tips, stats, help, exit"
	helpLoggedIn  = "Available commands: (l)ist, refresh, show <n|id>, new, edit <n|id>, delete <n|id>, tips, whoami, stats, logout, help, exit"
)

// runREPL reads one command per line and dispatches it to a.
//
// Commands taking <n|id> accept either the number printed by list or an
// entry id; without an argument they prompt for one. Errors returned by
// handlers are printed through describeError and the loop goes on. The
// loop ends on EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("diary %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "refresh":
			cmdErr = a.Refresh(ctx)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "new":
			cmdErr = a.New(ctx)

		case "edit":
			cmdErr = a.Edit(ctx, args)

		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)

		case "tips":
			cmdErr = a.Tips(ctx)

		case "stats":
			cmdErr = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(describeError(cmdErr))
		}
	}
}
