package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ducminhle1904/dca-calculator/internal/form"
	"github.com/ducminhle1904/dca-calculator/pkg/reporting"
	"github.com/jedib0t/go-pretty/v6/table"
)

// fieldAliases maps the short CLI flag names onto form fields
var fieldAliases = map[string]string{
	"capital":     form.FieldAvailableAmount,
	"first":       form.FieldFirstBuyPrice,
	"last":        form.FieldLastBuyPrice,
	"stop":        form.FieldStopLossPrice,
	"risk":        form.FieldRiskPercentage,
	"positions":   form.FieldNumberOfPositions,
	"buys":        form.FieldTotalBuys,
	"percentages": form.FieldBuyPercentages,
}

type interactive struct {
	app     *app
	session *form.Session
	in      *bufio.Scanner
	out     io.Writer
	last    *reporting.Report
}

func newInteractive(a *app, session *form.Session, stdin io.Reader) *interactive {
	return &interactive{
		app:     a,
		session: session,
		in:      bufio.NewScanner(stdin),
		out:     a.stdout,
	}
}

// Run reads commands until quit or EOF
func (s *interactive) Run() error {
	s.app.console.Header(fmt.Sprintf("DCA calculator (%s risk)", s.session.Variant()))
	s.app.console.Info("Type 'help' for commands")

	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}

		fields := strings.Fields(s.in.Text())
		if len(fields) == 0 {
			continue
		}
		if quit := s.dispatch(strings.ToLower(fields[0]), fields[1:]); quit {
			return nil
		}
	}
}

func (s *interactive) dispatch(cmd string, args []string) bool {
	switch cmd {
	case "set":
		s.set(args)
	case "show":
		s.show()
	case "calc", "calculate", "submit":
		s.calculate()
	case "toggle":
		pos, err := s.session.TogglePosition()
		if err != nil {
			s.app.console.Warn("%v", err)
			break
		}
		s.last = nil
		s.app.console.Info("Position type is now %s", strings.ToUpper(pos.String()))
	case "clear":
		s.session.Clear()
		s.last = nil
		s.app.console.Info("Form cleared, available amount kept")
	case "export":
		s.export(args)
	case "help", "?":
		s.help()
	case "quit", "exit", "q":
		return true
	default:
		s.app.console.Warn("Unknown command %q, type 'help'", cmd)
	}
	return false
}

func (s *interactive) set(args []string) {
	if len(args) < 1 {
		s.app.console.Warn("Usage: set <field> <value>")
		return
	}
	field := args[0]
	if alias, ok := fieldAliases[strings.ToLower(field)]; ok {
		field = alias
	}
	value := strings.Join(args[1:], " ")

	if err := s.session.Set(field, value); err != nil {
		s.app.console.Warn("%v", err)
	}
}

func (s *interactive) show() {
	in := s.session.Input()

	t := table.NewWriter()
	t.SetTitle("FORM")
	t.SetStyle(table.StyleRounded)
	for _, field := range form.Fields {
		v, _ := in.Get(field)
		t.AppendRow(table.Row{field, v})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"position", strings.ToUpper(s.session.PositionType().String())})
	t.AppendRow(table.Row{"variant", s.session.Variant().String()})

	fmt.Fprintln(s.out, t.Render())
}

func (s *interactive) calculate() {
	res, err := s.session.Submit()
	if err != nil {
		s.app.rejected(err)
		if s.session.Result() != nil {
			s.app.console.Info("Previous result kept")
		}
		return
	}

	rep := s.app.report(res)
	s.last = &rep
	if err := s.app.reports.Print(s.out, rep); err != nil {
		s.app.console.Error("%v", err)
	}
}

func (s *interactive) export(args []string) {
	if s.last == nil || s.session.Result() == nil {
		s.app.console.Warn("Nothing to export, run 'calc' first")
		return
	}

	format := reporting.FormatXLSX
	if len(args) > 0 {
		f, err := reporting.ParseFormat(args[0])
		if err != nil {
			s.app.console.Warn("%v", err)
			return
		}
		format = f
	}
	path := ""
	if len(args) > 1 {
		path = args[1]
	}

	written, err := s.app.reports.Export(*s.last, format, path)
	if err != nil {
		s.app.console.Error("Export failed: %v", err)
		return
	}
	s.app.console.Success("Report written to %s", written)
}

func (s *interactive) help() {
	fmt.Fprint(s.out, `Commands:
  set <field> <value>   set a form field (capital, first, last, stop, risk,
                        positions, buys, percentages or the full field name)
  show                  show the current form
  calc                  calculate with the current form
  toggle                switch between long and short
  clear                 reset the form, keeping the available amount
  export [format] [path]  write the last result (xlsx, csv, json or table)
  help                  show this help
  quit                  leave
`)
}
