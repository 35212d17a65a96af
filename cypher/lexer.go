package cypher

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes Cypher text. It only distinguishes what ParameterNames needs:
// parameters, string literals, comments and everything else.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`, Action: nil},
		{Name: "LineComment", Pattern: `//[^\r\n]*`, Action: nil},

		// $name, $0 and $`escaped name`
		{Name: "Parameter", Pattern: "\\$(?:[a-zA-Z_][a-zA-Z0-9_]*|\\d+|`(?:[^`]|``)+`)"},

		{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`},
		{Name: "EscapedIdent", Pattern: "`(?:[^`]|``)+`"},

		{Name: "Float", Pattern: `(?:\d+\.\d+|\.\d+)(?:[eE][+-]?\d+)?`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

		{Name: "Operator", Pattern: `<>|<=|>=|\+=|=~|\.\.|[-+*/%^=<>.,;:|$(){}\[\]!]`},
		{Name: "Other", Pattern: `.`},
	},
})

var parameterToken = Lexer.Symbols()["Parameter"]

// ParameterNames returns the $placeholders of a query in order of first
// appearance. Text inside string literals, escaped identifiers and comments is
// ignored.
func ParameterNames(query string) ([]string, error) {
	lex, err := Lexer.LexString("", query)
	if err != nil {
		return nil, fmt.Errorf("cypher: %w", err)
	}

	var (
		names []string
		seen  = map[string]bool{}
	)

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("cypher: %w", err)
		}

		if tok.EOF() {
			return names, nil
		}

		if tok.Type != parameterToken {
			continue
		}

		name := strings.TrimPrefix(tok.Value, "$")
		if strings.HasPrefix(name, "`") {
			name = strings.ReplaceAll(name[1:len(name)-1], "``", "`")
		}

		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
}
