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
	Connect(ctx context.Context) error
	List(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Category(ctx context.Context, name string) error
	Unlock(ctx context.Context, id string) error
	Show(ctx context.Context, id string) error
	Publish(ctx context.Context) error
	Admin(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

const helpText = `Available commands:
  connect              connect the wallet
  (l)ist               refresh and list the catalog
  search [term]        filter by title/abstract (no term clears)
  category [name]      filter by category: All, Physics, Chemistry, Biology, AI/ML
  unlock <id>          pay to unlock a record
  show <id>            show a record (findings only when unlocked)
  publish              publish a new record
  admin                admin table (allow-listed account only)
  delete <id>          delete a record (admin, asks for confirmation)
  exit | quit          leave the program`

// runREPL starts a simple read–eval–print loop for the FailVault CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands that take an id print their usage
// when it is missing. The loop exits on EOF, on "exit"/"quit" or when ctx
// is cancelled.
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("fv %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]
		rest := strings.Join(args, " ")

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "connect":
			cmdErr = a.Connect(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "search":
			cmdErr = a.Search(ctx, rest)

		case "category":
			cmdErr = a.Category(ctx, rest)

		case "unlock", "show", "delete":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "unlock":
				cmdErr = a.Unlock(ctx, args[0])
			case "show":
				cmdErr = a.Show(ctx, args[0])
			case "delete":
				cmdErr = a.Delete(ctx, args[0])
			}

		case "publish":
			cmdErr = a.Publish(ctx)

		case "admin":
			cmdErr = a.Admin(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
