package alchemy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/gibbsgo/factor"
	"github.com/hupe1980/gibbsgo/model"
)

var (
	// ErrMissingVariablesSection is returned when the first line is not the
	// "variables:" header.
	ErrMissingVariablesSection = errors.New(`missing "variables:" section header`)
	// ErrMissingFactorsSection is returned when the file ends before the
	// "factors:" header.
	ErrMissingFactorsSection = errors.New(`missing "factors:" section header`)
	// ErrBlankVariableLine is returned for a blank line inside the
	// variables section.
	ErrBlankVariableLine = errors.New("blank line in variables section")
	// ErrBadArity is returned when a declared arity is not a positive
	// integer.
	ErrBadArity = errors.New("variable arity must be a positive integer")
	// ErrDuplicateName is returned when a variable name is declared twice.
	ErrDuplicateName = errors.New("variable declared twice")
	// ErrMalformedFactor is returned for structurally broken factor lines:
	// missing "//" terminator, empty argument names, unparseable values or
	// weights.
	ErrMalformedFactor = errors.New("malformed factor line")
	// ErrUnknownVariable is returned when a factor references a name that
	// was never declared.
	ErrUnknownVariable = errors.New("factor references undeclared variable")
	// ErrDuplicateArgument is returned when a factor lists the same
	// variable twice.
	ErrDuplicateArgument = errors.New("factor argument repeated")
	// ErrBadValueCount is returned when the number of listed values does
	// not equal the factor's domain cardinality.
	ErrBadValueCount = errors.New("factor value count does not match domain cardinality")
)

// ParseError reports where in the model file a parse failed.
//
// The underlying error class can be accessed via errors.Unwrap / errors.Is.
type ParseError struct {
	Line  int // 1-based
	Msg   string
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.cause }

// maxLineSize bounds a single factor line. Dense tables put every value
// of a factor on one line, so the default bufio.Scanner token limit of
// 64KiB is too small for wide factors.
const maxLineSize = 16 * 1024 * 1024

// Parse reads a factor graph model in the Alchemy text format. On any
// error the whole parse is abandoned; no partial model is returned.
func Parse(r io.Reader) (*model.FactorizedModel, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	p := &parser{
		sc:    sc,
		names: make(map[string]factor.Variable),
		m:     model.New(),
	}

	if err := p.run(); err != nil {
		return nil, err
	}

	return p.m, nil
}

// ParseFile reads a factor graph model from the file at path.
func ParseFile(path string) (*model.FactorizedModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return m, nil
}

type parser struct {
	sc    *bufio.Scanner
	line  int
	names map[string]factor.Variable // declared name -> variable
	m     *model.FactorizedModel
}

func (p *parser) next() (string, bool) {
	if !p.sc.Scan() {
		return "", false
	}
	p.line++
	return p.sc.Text(), true
}

func (p *parser) errorf(cause error, format string, args ...any) *ParseError {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...), cause: cause}
}

func (p *parser) run() error {
	line, ok := p.next()
	if !ok || strings.TrimSpace(line) != "variables:" {
		return p.errorf(ErrMissingVariablesSection, "model file must start with %q", "variables:")
	}

	if err := p.parseVariables(); err != nil {
		return err
	}

	return p.parseFactors()
}

// parseVariables consumes declarations up to and including the
// "factors:" header.
func (p *parser) parseVariables() error {
	for {
		line, ok := p.next()
		if !ok {
			if err := p.sc.Err(); err != nil {
				return fmt.Errorf("read model: %w", err)
			}
			return p.errorf(ErrMissingFactorsSection, "file ended inside variables section")
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "factors:" {
			return nil
		}
		if trimmed == "" {
			return p.errorf(ErrBlankVariableLine, "blank line before %q", "factors:")
		}

		name, arity := trimmed, 2
		if i := strings.LastIndexByte(trimmed, '\t'); i >= 0 {
			arityField := strings.TrimSpace(trimmed[i+1:])
			n, err := strconv.Atoi(arityField)
			if err != nil || n < 1 {
				return p.errorf(ErrBadArity, "variable %q: arity %q", strings.TrimSpace(trimmed[:i]), arityField)
			}
			name, arity = strings.TrimSpace(trimmed[:i]), n
		}
		if name == "" {
			return p.errorf(ErrMalformedFactor, "variable declaration missing name")
		}
		if _, dup := p.names[name]; dup {
			return p.errorf(ErrDuplicateName, "variable %q", name)
		}

		// Ids are dense in declaration order.
		v := factor.NewVariable(uint32(len(p.names)), arity)
		p.names[name] = v
		p.m.SetVarName(v.ID, name)
	}
}

func (p *parser) parseFactors() error {
	for {
		line, ok := p.next()
		if !ok {
			if err := p.sc.Err(); err != nil {
				return fmt.Errorf("read model: %w", err)
			}
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := p.parseFactor(line); err != nil {
			return err
		}
	}
}

func (p *parser) parseFactor(line string) error {
	sep := strings.Index(line, "//")
	if sep < 0 {
		return p.errorf(ErrMalformedFactor, "missing %q argument terminator", "//")
	}

	// Arguments: '/'-separated declared names before the terminator.
	args := make([]factor.Variable, 0, 2)
	seen := make(map[uint32]bool, 2)

	for _, field := range strings.Split(line[:sep], "/") {
		name := strings.TrimSpace(field)
		if name == "" {
			return p.errorf(ErrMalformedFactor, "empty factor argument")
		}

		v, ok := p.names[name]
		if !ok {
			return p.errorf(ErrUnknownVariable, "%q", name)
		}
		if seen[v.ID] {
			return p.errorf(ErrDuplicateArgument, "%q", name)
		}
		seen[v.ID] = true

		args = append(args, v)
	}

	dom, err := factor.NewDomain(args...)
	if err != nil {
		return p.errorf(err, "factor domain")
	}
	tbl := factor.NewTable(dom)

	// Optional "///" weight suffix; preserved on the table, never
	// interpreted.
	valuesStr := line[sep+2:]
	if wsep := strings.Index(valuesStr, "///"); wsep >= 0 {
		w, err := strconv.ParseFloat(strings.TrimSpace(valuesStr[wsep+3:]), 64)
		if err != nil {
			return p.errorf(ErrMalformedFactor, "weight %q", strings.TrimSpace(valuesStr[wsep+3:]))
		}
		tbl.SetWeight(w)
		valuesStr = valuesStr[:wsep]
	}

	fields := strings.Fields(valuesStr)
	if len(fields) != dom.Card() {
		return p.errorf(ErrBadValueCount, "need %d values, found %d", dom.Card(), len(fields))
	}

	// The file lists values with the FIRST LISTED argument varying
	// fastest, while the table stores them in canonical sorted-by-id
	// order. Iterate a surrogate domain with one artificial variable per
	// argument position and remap each assignment.
	fileVars := make([]factor.Variable, len(args))
	for i, v := range args {
		fileVars[i] = factor.NewVariable(uint32(i), v.Arity)
	}
	fileDom := factor.MustDomain(fileVars...)

	k := 0
	for fileAsg := range fileDom.Assignments() {
		v, err := strconv.ParseFloat(fields[k], 64)
		if err != nil {
			return p.errorf(ErrMalformedFactor, "value %q", fields[k])
		}

		asg := factor.NewAssignment(dom)
		for i := range args {
			asg.SetValue(args[i].ID, fileAsg.ValueAt(i))
		}
		tbl.SetLogP(asg.LinearIndex(), v)

		k++
	}

	p.m.AddFactor(tbl)

	return nil
}
