package command

import (
	"fmt"
	"strings"
	"unicode"
)

// Tokenize splits a command line into tokens. A run of non-whitespace is one
// token; a double- or single-quoted span is one token with the quotes
// stripped and its content, including embedded whitespace, preserved
// verbatim.
func Tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inToken := false
	var quote rune // 0 outside a quoted span

	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()

	return tokens
}

// Parse turns a raw command line into a structured command. A line that
// matches no grammar yields a *SyntaxError naming the expected usage; the
// session is never aborted by bad input.
func Parse(line string) (Command, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return nil, &SyntaxError{Msg: "empty command"}
	}

	switch verb := strings.ToLower(tokens[0]); verb {
	case "help":
		if len(tokens) != 1 {
			return nil, &SyntaxError{Msg: "help takes no arguments", Usage: "help"}
		}
		return Help{}, nil

	case "exit":
		if len(tokens) != 1 {
			return nil, &SyntaxError{Msg: "exit takes no arguments", Usage: "exit"}
		}
		return Exit{}, nil

	case "list_tables":
		if len(tokens) != 1 {
			return nil, &SyntaxError{Msg: "list_tables takes no arguments", Usage: UsageListTables}
		}
		return ListTables{}, nil

	case "create_table":
		if len(tokens) < 3 {
			return nil, &SyntaxError{
				Msg:   "create_table needs a table name and at least one column",
				Usage: UsageCreateTable,
			}
		}
		return CreateTable{Table: tokens[1], ColumnSpecs: tokens[2:]}, nil

	case "drop_table":
		if len(tokens) != 2 {
			return nil, &SyntaxError{Msg: "drop_table needs exactly a table name", Usage: UsageDropTable}
		}
		return DropTable{Table: tokens[1]}, nil

	case "info":
		if len(tokens) != 2 {
			return nil, &SyntaxError{Msg: "info needs exactly a table name", Usage: UsageInfo}
		}
		return Info{Table: tokens[1]}, nil

	case "insert":
		return parseInsert(line)

	case "select":
		return parseSelect(tokens)

	case "update":
		return parseUpdate(tokens)

	case "delete":
		return parseDelete(tokens)

	default:
		return nil, &SyntaxError{
			Msg: fmt.Sprintf("unknown command %q; type 'help' for available commands", tokens[0]),
		}
	}
}

// parseInsert matches `insert into <table> values (<v1>, <v2>, ...)`.
// It works on the raw line: the values list is the span between the first
// '(' and the last ')', split on commas and individually trimmed. Quotes
// around individual values are stripped later by value coercion.
func parseInsert(line string) (Command, error) {
	synErr := &SyntaxError{Msg: "malformed insert", Usage: UsageInsert}

	open := strings.IndexByte(line, '(')
	closing := strings.LastIndexByte(line, ')')
	if open < 0 || closing < open || strings.TrimSpace(line[closing+1:]) != "" {
		return nil, synErr
	}

	head := strings.Fields(line[:open])
	if len(head) != 4 ||
		!strings.EqualFold(head[0], "insert") ||
		!strings.EqualFold(head[1], "into") ||
		!strings.EqualFold(head[3], "values") {
		return nil, synErr
	}

	values := strings.Split(line[open+1:closing], ",")
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}

	return Insert{Table: head[2], Values: values}, nil
}

// parseSelect matches `select from <table> [where <column> = <value>]`.
func parseSelect(tokens []string) (Command, error) {
	synErr := &SyntaxError{Msg: "malformed select", Usage: UsageSelect}

	if len(tokens) < 3 || !strings.EqualFold(tokens[1], "from") {
		return nil, synErr
	}

	sel := Select{Table: tokens[2]}
	rest := tokens[3:]
	if len(rest) == 0 {
		return sel, nil
	}

	if !strings.EqualFold(rest[0], "where") {
		return nil, synErr
	}
	col, val, ok := parseCondition(rest[1:])
	if !ok {
		return nil, synErr
	}
	sel.Where = &Predicate{Column: col, Value: val}
	return sel, nil
}

// parseUpdate matches `update <table> set <column> = <value> where <column>
// = <value>`.
func parseUpdate(tokens []string) (Command, error) {
	synErr := &SyntaxError{Msg: "malformed update", Usage: UsageUpdate}

	if len(tokens) < 4 || !strings.EqualFold(tokens[2], "set") {
		return nil, synErr
	}

	whereIdx := -1
	for i := 3; i < len(tokens); i++ {
		if strings.EqualFold(tokens[i], "where") {
			whereIdx = i
			break
		}
	}
	if whereIdx < 0 {
		return nil, synErr
	}

	setCol, setVal, ok := parseCondition(tokens[3:whereIdx])
	if !ok {
		return nil, synErr
	}
	whereCol, whereVal, ok := parseCondition(tokens[whereIdx+1:])
	if !ok {
		return nil, synErr
	}

	return Update{
		Table:     tokens[1],
		SetColumn: setCol,
		SetValue:  setVal,
		Where:     Predicate{Column: whereCol, Value: whereVal},
	}, nil
}

// parseDelete matches `delete from <table> where <column> = <value>`.
func parseDelete(tokens []string) (Command, error) {
	synErr := &SyntaxError{Msg: "malformed delete", Usage: UsageDelete}

	if len(tokens) < 4 || !strings.EqualFold(tokens[1], "from") ||
		!strings.EqualFold(tokens[3], "where") {
		return nil, synErr
	}

	col, val, ok := parseCondition(tokens[4:])
	if !ok {
		return nil, synErr
	}

	return Delete{Table: tokens[2], Where: Predicate{Column: col, Value: val}}, nil
}

// parseCondition parses a "<column> = <value>" span of tokens. The '=' may
// be glued to the column, the value, or both. The value keeps everything
// after the first '='; multi-token values are rejoined with single spaces.
func parseCondition(tokens []string) (col, val string, ok bool) {
	joined := strings.Join(tokens, " ")
	col, val, found := strings.Cut(joined, "=")
	col = strings.TrimSpace(col)
	val = strings.TrimSpace(val)
	if !found || col == "" || val == "" || strings.ContainsAny(col, " \t") {
		return "", "", false
	}
	return col, val, true
}
