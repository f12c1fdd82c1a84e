// Package shell runs an interactive session over a desk: the terminal
// equivalent of the page with its list, detail panel and two forms.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lox/weatherdesk/internal/desk"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/render"
)

const helpText = `commands:
  list                          show the city list
  reload                        fetch the city list again
  open <n|id>                   open the detail panel for entry n (or id)
  show                          redraw the open detail panel
  close                         dismiss the detail panel
  lookup <id>                   look a record up by id
  submit <date> | <location> [| <notes>]
                                submit a new weather request
  help                          show this help
  quit                          leave`

const prompt = "weatherdesk> "

// Run reads commands from in until EOF, "quit" or ctx is done.
func Run(ctx context.Context, d *desk.Desk, in io.Reader, out io.Writer) error {
	d.Open(ctx)
	render.History(out, d.History.State())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := exec(ctx, d, strings.TrimSpace(scanner.Text()), out); quit {
			return nil
		}
	}
}

func exec(ctx context.Context, d *desk.Desk, line string, out io.Writer) (quit bool) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "":
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(out, helpText)
	case "list", "ls":
		render.History(out, d.History.State())
	case "reload":
		d.History.Load(ctx)
		render.History(out, d.History.State())
	case "open", "select":
		open(d, rest, out)
	case "show":
		if _, ok := d.Selected(); !ok {
			fmt.Fprintln(out, "no panel open")
			return false
		}
		render.Detail(out, d.Detail.View())
	case "close":
		if _, ok := d.Selected(); !ok {
			fmt.Fprintln(out, "no panel open")
			return false
		}
		d.CloseDetail()
	case "lookup":
		render.Lookup(out, d.Lookup.Lookup(ctx, rest))
	case "submit":
		req := parseSubmit(rest)
		render.Submit(out, d.Submit.Submit(ctx, req))
		if done := d.Reloaded(); done != nil && d.Submit.Result().Success {
			<-done
			render.History(out, d.History.State())
		}
	default:
		fmt.Fprintf(out, "unknown command %q (try help)\n", cmd)
	}
	return false
}

func open(d *desk.Desk, arg string, out io.Writer) {
	var (
		done <-chan struct{}
		ok   bool
	)
	if n, err := strconv.Atoi(arg); err == nil {
		done, ok = d.Select(n - 1)
	} else {
		done, ok = d.SelectID(arg)
	}
	if !ok {
		fmt.Fprintf(out, "no entry %q in the city list\n", arg)
		return
	}
	if done != nil {
		<-done
	}
	render.Detail(out, d.Detail.View())
}

// parseSubmit splits "date | location | notes".
func parseSubmit(s string) models.SubmitRequest {
	parts := strings.SplitN(s, "|", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	var req models.SubmitRequest
	req.Date = parts[0]
	if len(parts) > 1 {
		req.Location = parts[1]
	}
	if len(parts) > 2 {
		req.Notes = parts[2]
	}
	return req
}
