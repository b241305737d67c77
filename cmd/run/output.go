package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/wippyai/native-runtime/codec"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type printer struct {
	out    io.Writer
	styled bool
}

func newPrinter(out io.Writer, styled bool) *printer {
	return &printer{out: out, styled: styled}
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) list(entries []*native.Entry) {
	for _, e := range entries {
		fmt.Fprintf(p.out, "%s%s", p.style(funcStyle, e.Name), p.signature(e.Sig))
		if e.Sig.Doc != "" {
			fmt.Fprintf(p.out, "  %s", p.style(helpStyle, "# "+e.Sig.Doc))
		}
		fmt.Fprintln(p.out)
	}
}

func (p *printer) signature(sig native.Signature) string {
	params := make([]string, len(sig.Params))
	for i, prm := range sig.Params {
		name := prm.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		params[i] = name + ": " + p.style(typeStyle, native.FormatType(prm.Type))
	}
	s := "(" + strings.Join(params, ", ") + ")"
	if sig.Result != nil {
		s += " -> " + p.style(typeStyle, native.FormatType(sig.Result))
	}
	return s
}

func (p *printer) result(v value.Value, format string) error {
	switch format {
	case "", "text":
		fmt.Fprintln(p.out, p.style(resultStyle, v.String()))
	case "json":
		data, err := codec.MarshalJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(p.out, string(data))
	case "cbor":
		data, err := codec.MarshalCBOR(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(p.out, hex.EncodeToString(data))
	default:
		return fmt.Errorf("unknown format %q (want text, json or cbor)", format)
	}
	return nil
}

func (p *printer) stats(s gc.Stats) {
	fmt.Fprintln(p.out, p.style(helpStyle, formatStats(s)))
}

func formatStats(s gc.Stats) string {
	return fmt.Sprintf("heap: %s allocations, %s total, %s in last call, %s collections",
		humanize.Comma(int64(s.Allocs)),
		humanize.Bytes(s.Bytes),
		humanize.Bytes(s.CallBytes),
		humanize.Comma(int64(s.Collections)))
}
