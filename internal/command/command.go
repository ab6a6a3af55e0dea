// Package command parses shell input lines into structured commands.
//
// Parsing happens in two stages: the line is tokenized (quoted spans become
// single tokens with their inner whitespace preserved), then the token
// sequence is matched against a fixed set of verb grammars. Keywords are
// case-insensitive; table and column names are not.
package command

import "fmt"

// Command is implemented by every parsed shell command.
type Command interface {
	isCommand()
}

// Predicate is a parsed "column = value" condition. The value is the raw
// literal; coercion happens in the engine against the column's type.
type Predicate struct {
	Column string
	Value  string
}

// CreateTable is `create_table <table> <column:type> ...`.
type CreateTable struct {
	Table       string
	ColumnSpecs []string
}

// DropTable is `drop_table <table>`.
type DropTable struct {
	Table string
}

// ListTables is `list_tables`.
type ListTables struct{}

// Insert is `insert into <table> values (<v1>, <v2>, ...)`.
type Insert struct {
	Table  string
	Values []string
}

// Select is `select from <table> [where <column> = <value>]`.
// Where is nil when no predicate was given.
type Select struct {
	Table string
	Where *Predicate
}

// Update is `update <table> set <column> = <value> where <column> = <value>`.
type Update struct {
	Table     string
	SetColumn string
	SetValue  string
	Where     Predicate
}

// Delete is `delete from <table> where <column> = <value>`.
type Delete struct {
	Table string
	Where Predicate
}

// Info is `info <table>`.
type Info struct {
	Table string
}

// Help is `help`.
type Help struct{}

// Exit is `exit`.
type Exit struct{}

func (CreateTable) isCommand() {}
func (DropTable) isCommand()   {}
func (ListTables) isCommand()  {}
func (Insert) isCommand()      {}
func (Select) isCommand()      {}
func (Update) isCommand()      {}
func (Delete) isCommand()      {}
func (Info) isCommand()        {}
func (Help) isCommand()        {}
func (Exit) isCommand()        {}

// SyntaxError reports a command line that does not match any known grammar.
// It is a recoverable outcome: the shell prints it and keeps reading.
type SyntaxError struct {
	Msg   string
	Usage string // expected usage for the attempted verb, if known
}

func (e *SyntaxError) Error() string {
	if e.Usage != "" {
		return fmt.Sprintf("%s (usage: %s)", e.Msg, e.Usage)
	}
	return e.Msg
}

// Usage strings shown in syntax errors and help output.
const (
	UsageCreateTable = "create_table <table> <column:type> ..."
	UsageDropTable   = "drop_table <table>"
	UsageListTables  = "list_tables"
	UsageInsert      = "insert into <table> values (<v1>, <v2>, ...)"
	UsageSelect      = "select from <table> [where <column> = <value>]"
	UsageUpdate      = "update <table> set <column> = <value> where <column> = <value>"
	UsageDelete      = "delete from <table> where <column> = <value>"
	UsageInfo        = "info <table>"
)
