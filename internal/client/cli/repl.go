package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	Fetch(ctx context.Context) error
	New(ctx context.Context) error
	Find(ctx context.Context, billNo string) error
	Edit(ctx context.Context, billNo string) error
	Search(ctx context.Context, text string) error
	List(ctx context.Context) error
	Pending(ctx context.Context) error
	Submit(ctx context.Context) error
	Resubmit(ctx context.Context) error
	Report(ctx context.Context, args []string) error
	Status(ctx context.Context) error
}

const helpText = "Available commands: fetch, new, find <billNo>, edit <billNo>, search <text>, (l)ist, pending, submit, resubmit, report paid [YYYY-MM-DD] | unpaid, status, exit"

// runREPL reads commands line by line from r and dispatches them to a.
// Interactive commands read their form fields from the same reader. The
// loop exits on EOF or on "exit" / "quit". Command errors are printed and
// the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("bk %s> ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]
		rest := strings.Join(args, " ")

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "fetch":
			cmdErr = a.Fetch(ctx)

		case "new":
			cmdErr = a.New(ctx)

		case "find":
			if rest == "" {
				printlnFn("Usage: find <billNo>")
				continue
			}
			cmdErr = a.Find(ctx, rest)

		case "edit":
			if rest == "" {
				printlnFn("Usage: edit <billNo>")
				continue
			}
			cmdErr = a.Edit(ctx, rest)

		case "search":
			cmdErr = a.Search(ctx, rest)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "pending":
			cmdErr = a.Pending(ctx)

		case "submit":
			cmdErr = a.Submit(ctx)

		case "resubmit":
			cmdErr = a.Resubmit(ctx)

		case "report":
			cmdErr = a.Report(ctx, args)

		case "status":
			cmdErr = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
