package device

import (
	"fmt"
	"path"
	"strings"

	"github.com/alessio/shellescape"
)

// Strategy is one way of getting an arbitrary path through the remote shell.
// The order of the constants is the order they are tried in.
type Strategy int

const (
	Direct Strategy = iota
	Quoted
	DoubleQuoted
	Octal
	Find
)

// Strategies is the full chain, cheapest first.
var Strategies = []Strategy{Direct, Quoted, DoubleQuoted, Octal, Find}

func (s Strategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Quoted:
		return "quoted"
	case DoubleQuoted:
		return "double-quoted"
	case Octal:
		return "octal"
	case Find:
		return "find"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Op is the terminal remote operation applied to a path, along with the
// find action that performs the same operation on a matched name.
type Op struct {
	Command    []string
	FindAction []string
}

var (
	OpStat = Op{
		Command:    []string{"stat", "-c", "%y"},
		FindAction: []string{"-exec", "stat", "-c", "%y", "{}", `\;`},
	}
	OpRemove = Op{
		Command:    []string{"rm"},
		FindAction: []string{"-delete"},
	}
)

// Attempt is one concrete adb invocation in a fallback chain.
type Attempt struct {
	Label string
	Args  []string
}

// Attempts builds the chain for op against the raw path. With no strategies
// given the full chain is returned.
func (op Op) Attempts(raw string, strategies ...Strategy) []Attempt {
	if len(strategies) == 0 {
		strategies = Strategies
	}

	attempts := make([]Attempt, 0, len(strategies))
	for _, s := range strategies {
		attempts = append(attempts, op.Attempt(s, raw))
	}
	return attempts
}

func (op Op) Attempt(s Strategy, raw string) Attempt {
	command := strings.Join(op.Command, " ")

	var args []string
	switch s {
	case Direct:
		args = append([]string{"shell"}, op.Command...)
		args = append(args, raw)
	case Quoted:
		args = []string{"shell", command + " " + shellescape.Quote(raw)}
	case DoubleQuoted:
		args = []string{"shell", command + " " + DoubleQuote(raw)}
	case Octal:
		// printf expands the escapes on the device
		args = []string{"shell", fmt.Sprintf(`%s "$(printf '%s')"`, command, OctalEscape(raw))}
	case Find:
		args = []string{"shell", "find", path.Dir(raw), "-name", path.Base(raw)}
		args = append(args, op.FindAction...)
	}

	return Attempt{
		Label: s.String(),
		Args:  args,
	}
}

// DoubleQuote escapes backslashes and double quotes and wraps the result
// in double quotes.
func DoubleQuote(raw string) string {
	escaped := strings.ReplaceAll(raw, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// OctalEscape replaces every byte that isn't an ascii letter, digit or one of
// "/-_." with its \NNN octal escape.
func OctalEscape(raw string) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if isPlain(b) {
			sb.WriteByte(b)
			continue
		}
		fmt.Fprintf(&sb, `\%03o`, b)
	}
	return sb.String()
}

func isPlain(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	}
	return b == '/' || b == '-' || b == '_' || b == '.'
}
