package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/solisoft/soli-lang-sub001/internal/builtins/codec"
	"github.com/solisoft/soli-lang-sub001/internal/builtins/db"
	"github.com/solisoft/soli-lang-sub001/internal/evaluator"
	"github.com/solisoft/soli-lang-sub001/internal/lexer"
	"github.com/solisoft/soli-lang-sub001/internal/object"
	"github.com/solisoft/soli-lang-sub001/internal/parser"
)

const PROMPT = ">> "

// Start runs a line-oriented session against a single environment, so
// bindings survive between inputs. The prompt is suppressed when stdin is
// not a terminal.
func Start(in io.Reader, out io.Writer, interactive bool) {
	scanner := bufio.NewScanner(in)

	env := object.NewEnvironment()
	e := evaluator.New(env)
	e.Out = out
	db.Register(env)
	codec.Register(env)

	for {
		if interactive {
			fmt.Fprint(out, PROMPT)
		}
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		l := lexer.New(line)
		p := parser.New(l, line)

		program := p.ParseProgram()
		if len(p.Errors()) != 0 {
			printParserErrors(out, p.Errors())
			continue
		}

		evaluated := e.Eval(program)
		if evaluated != nil && evaluated != object.NULL {
			io.WriteString(out, evaluated.Inspect())
			io.WriteString(out, "\n")
		}
	}
}

func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, "parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}
