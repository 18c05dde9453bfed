package dispatch

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jdbancal/MyFavoriteDouble/registry"
	"github.com/jdbancal/MyFavoriteDouble/scalar"
)

// Result carries the zero-or-one output of a command. Which field is
// meaningful depends on the command: Handle for the create-family and
// Plus, Valid for IsValid, Buffer for ToBuffer. Display writes to the
// dispatcher's output and fills nothing.
type Result struct {
	Handle registry.Handle
	Valid  bool
	Buffer *scalar.Buffer
}

// Dispatcher executes commands against a registry. Display output goes
// to out.
type Dispatcher struct {
	reg *registry.Registry
	out io.Writer
}

// NewDispatcher creates a dispatcher over reg writing display output
// to out.
func NewDispatcher(reg *registry.Registry, out io.Writer) *Dispatcher {
	return &Dispatcher{reg: reg, out: out}
}

// Do executes one command and returns its result. The switch is
// exhaustive over the sealed command set; an unknown variant can only
// mean a programming error in this package.
func (d *Dispatcher) Do(cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case New:
		return Result{Handle: d.reg.Create()}, nil

	case NewFromBuffer:
		h, err := d.reg.CreateFromBuffer(c.Buffer)
		if err != nil {
			return Result{}, err
		}
		return Result{Handle: h}, nil

	case CopyOf:
		h, err := d.reg.Copy(c.Source)
		if err != nil {
			return Result{}, err
		}
		return Result{Handle: h}, nil

	case Delete:
		return Result{}, d.reg.Delete(c.Target)

	case IsValid:
		return Result{Valid: d.reg.IsValid(c.Target)}, nil

	case Display:
		s, err := d.reg.Display(c.Target)
		if err != nil {
			return Result{}, err
		}
		fmt.Fprintln(d.out, s)
		return Result{}, nil

	case ToBuffer:
		b, err := d.reg.ToBuffer(c.Target)
		if err != nil {
			return Result{}, err
		}
		return Result{Buffer: b}, nil

	case Plus:
		h, err := d.reg.Add(c.A, c.B)
		if err != nil {
			return Result{}, err
		}
		return Result{Handle: h}, nil

	default:
		return Result{}, fmt.Errorf("dispatch: command not recognized: %T", cmd)
	}
}

// ---------------------------------------------------------------------------
// Word-form parsing for the interactive shell
// ---------------------------------------------------------------------------

// Parse turns a whitespace-split command line into a Command. The
// vocabulary follows the original shell: new [handle], fromBuffer
// <number>, delete <handle>, isValid <handle>, display <handle>,
// double <handle>, plus <handle> <handle>. Numbers may be complex
// ("2.5+1i").
func Parse(fields []string) (Command, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("dispatch: empty command")
	}

	word, args := fields[0], fields[1:]
	switch word {
	case "new":
		switch len(args) {
		case 0:
			return New{}, nil
		case 1:
			h, err := parseHandle(args[0])
			if err != nil {
				return nil, err
			}
			return CopyOf{Source: h}, nil
		default:
			return nil, fmt.Errorf("dispatch: new: too many arguments")
		}

	case "fromBuffer":
		if len(args) != 1 {
			return nil, fmt.Errorf("dispatch: fromBuffer: one numeric argument required")
		}
		b, err := parseBufferLiteral(args[0])
		if err != nil {
			return nil, err
		}
		return NewFromBuffer{Buffer: b}, nil

	case "delete":
		h, err := oneHandle(word, args)
		if err != nil {
			return nil, err
		}
		return Delete{Target: h}, nil

	case "isValid":
		h, err := oneHandle(word, args)
		if err != nil {
			return nil, err
		}
		return IsValid{Target: h}, nil

	case "display":
		h, err := oneHandle(word, args)
		if err != nil {
			return nil, err
		}
		return Display{Target: h}, nil

	case "double":
		h, err := oneHandle(word, args)
		if err != nil {
			return nil, err
		}
		return ToBuffer{Target: h}, nil

	case "plus":
		if len(args) != 2 {
			return nil, fmt.Errorf("dispatch: plus: two handle arguments required")
		}
		a, err := parseHandle(args[0])
		if err != nil {
			return nil, err
		}
		b, err := parseHandle(args[1])
		if err != nil {
			return nil, err
		}
		return Plus{A: a, B: b}, nil

	default:
		return nil, fmt.Errorf("dispatch: command not recognized: %q", word)
	}
}

func oneHandle(word string, args []string) (registry.Handle, error) {
	if len(args) != 1 {
		return registry.InvalidHandle, fmt.Errorf("dispatch: %s: one handle argument required", word)
	}
	return parseHandle(args[0])
}

func parseHandle(s string) (registry.Handle, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return registry.InvalidHandle, fmt.Errorf("dispatch: bad handle %q: %w", s, err)
	}
	return registry.Handle(id), nil
}

// parseBufferLiteral accepts "3.5" or a complex literal like "2.5+1i"
// and builds the corresponding 1x1 buffer. A literal without an
// imaginary term produces a real-only buffer.
func parseBufferLiteral(s string) (*scalar.Buffer, error) {
	if !strings.ContainsAny(s, "i") {
		re, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("dispatch: bad number %q: %w", s, err)
		}
		return scalar.Real1x1(re), nil
	}
	c, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return nil, fmt.Errorf("dispatch: bad number %q: %w", s, err)
	}
	return scalar.Complex1x1(real(c), imag(c)), nil
}
