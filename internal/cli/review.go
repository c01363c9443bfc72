package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grammarcheck/internal/config"
	"grammarcheck/internal/controller"
	"grammarcheck/internal/host"
	"grammarcheck/internal/textpos"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const reviewHelp = `commands:
  n          next problem
  p          previous problem
  f [i]      apply suggestion i (asks when there are several)
  i          ignore problem
  d          deactivate the rule of the selected problem
  a          reactivate a deactivated rule
  l <tag>    change language
  c          clear problems
  r [server] check again (local or remote)
  w          write the file
  q          quit`

func reviewCmd() *cobra.Command {
	var flags checkFlags
	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Interactively walk through and fix the problems of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// runReview handles the `review` command.
func runReview(in io.Reader, out io.Writer, path string, flags checkFlags) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	server, err := flags.apply(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	ignored, release, err := openIgnoreList(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	term := newTerminal(in, out, string(data), strings.ToLower(filepath.Ext(path)))
	session := controller.NewSession(term.host, ignored, sessionOptions(cfg))
	cmds := controller.NewCommands(session, newClient(cfg), func(force string) (string, error) {
		if force == "" {
			return server, nil
		}
		return cfg.ServerURL(force)
	})

	return reviewLoop(ctx, term, cmds, path)
}

// reviewLoop checks the document once, then executes commands read from
// the terminal until quit or end of input.
func reviewLoop(ctx context.Context, term *terminal, cmds *controller.Commands, path string) error {
	cmds.Check(ctx, "")
	term.showSelection()

	for {
		fields, ok := term.readCommand()
		if !ok {
			return nil
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "n":
			cmds.Goto(true)
		case "p":
			cmds.Goto(false)
		case "f":
			idx := -1
			if len(fields) > 1 {
				n, err := strconv.Atoi(fields[1])
				if err != nil || n < 1 {
					term.status("suggestion must be a positive number")
					continue
				}
				idx = n - 1
			}
			cmds.MarkSolved(true, idx)
		case "i":
			cmds.MarkSolved(false, -1)
		case "d":
			cmds.Deactivate(ctx)
		case "a":
			cmds.Activate(ctx)
		case "l":
			if len(fields) < 2 {
				term.status("usage: l <language tag>")
				continue
			}
			cmds.SetLanguage(fields[1])
		case "c":
			cmds.Clear()
		case "r":
			force := ""
			if len(fields) > 1 {
				force = fields[1]
			}
			// The selection is the current problem; drop it so the whole
			// document is checked again.
			cmds.Clear()
			cmds.Check(ctx, force)
			term.showSelection()
		case "w":
			if err := term.write(path); err != nil {
				return err
			}
			term.status("wrote " + path)
		case "q":
			return nil
		default:
			fmt.Fprintln(term.out, reviewHelp)
			continue
		}

		cmds.Session().RecomputeHighlights()
		term.showSelection()
	}
}

// terminal is a Memory host whose messages and choice lists go through a
// line-oriented terminal.
type terminal struct {
	in   *bufio.Scanner
	out  io.Writer
	host *host.Memory
}

func newTerminal(in io.Reader, out io.Writer, text, ext string) *terminal {
	t := &terminal{
		in:  bufio.NewScanner(in),
		out: out,
	}
	t.host = host.NewMemory(text,
		host.WithScopes(scopesFor(ext)),
		host.WithStatusFunc(t.status),
		host.WithPanelFunc(t.panel),
		host.WithChooser(t.choose),
	)
	return t
}

func (t *terminal) status(msg string) {
	fmt.Fprintf(t.out, "%s %s\n", faintColor.Sprint("--"), msg)
}

func (t *terminal) panel(text string) {
	fmt.Fprintf(t.out, "\n%s\n", text)
}

func (t *terminal) choose(items []string) int {
	for i, item := range items {
		fmt.Fprintf(t.out, "  %s %s\n", ruleColor.Sprintf("%d)", i+1), item)
	}
	fmt.Fprint(t.out, "choose (empty to cancel): ")
	if !t.in.Scan() {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(t.in.Text()))
	if err != nil || n < 1 || n > len(items) {
		return -1
	}
	return n - 1
}

func (t *terminal) readCommand() ([]string, bool) {
	fmt.Fprint(t.out, "> ")
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			log.Warn().Err(err).Msg("Failed to read command")
		}
		return nil, false
	}
	return strings.Fields(t.in.Text()), true
}

// showSelection prints the line of the selection with the selection
// underlined.
func (t *terminal) showSelection() {
	sel := t.host.Selection()
	if sel.Empty() {
		return
	}
	text := []rune(t.host.Text())
	renderContext(t.out, textpos.NewMap(string(text)), text, sel)
}

func (t *terminal) write(path string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(t.host.Text()), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("Wrote file")
	return nil
}
