package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/term"
)

const replPrompt = "vdp> "

// runREPL reads Lua statements line by line from the terminal on stdin.
// A bare expression prints its value. Ctrl-D or "quit" exits.
func runREPL(L *lua.LState) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, replPrompt)

	for {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		out, err := evalLine(L, line)
		if err != nil {
			fmt.Fprintf(t, "error: %v\r\n", err)
			continue
		}
		if out != "" {
			fmt.Fprintf(t, "%s\r\n", out)
		}
	}
}

// evalLine runs one REPL line. Expressions are tried first so that
// "peek(14)" prints its result; statements fall back to plain execution.
func evalLine(L *lua.LState, line string) (string, error) {
	top := L.GetTop()
	if fn, err := L.LoadString("return " + line); err == nil {
		L.Push(fn)
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			L.SetTop(top)
			return "", err
		}
		var vals []string
		for i := top + 1; i <= L.GetTop(); i++ {
			vals = append(vals, formatValue(L.Get(i)))
		}
		L.SetTop(top)
		return strings.Join(vals, "\t"), nil
	}
	return "", L.DoString(line)
}

// formatValue prints integers in decimal and hex, the way register
// values are usually read.
func formatValue(v lua.LValue) string {
	if n, ok := v.(lua.LNumber); ok && float64(n) == float64(int64(n)) {
		return fmt.Sprintf("%d (0x%X)", int64(n), int64(n))
	}
	return v.String()
}
