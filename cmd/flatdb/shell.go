package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flatdb/flatdb/internal/command"
	"github.com/flatdb/flatdb/internal/config"
	"github.com/flatdb/flatdb/internal/engine"
	"github.com/flatdb/flatdb/internal/schema"
	"github.com/flatdb/flatdb/internal/storage"
)

// prompt shown before each command line.
const prompt = "db> "

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell (same as running flatdb with no arguments)",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	})
}

// session holds the state threaded through one interactive run: the loaded
// schema registry, the engine bound to it, and the path the registry
// persists to.
type session struct {
	registry *schema.Registry
	engine   *engine.Engine
	metaPath string
	out      io.Writer
}

func runShell(cmd *cobra.Command, args []string) error {
	root, err := config.Root()
	if err != nil {
		fail(ExitConfigError, "resolving workspace root: %v", err)
	}
	global, err := config.LoadGlobal()
	if err != nil {
		fail(ExitConfigError, "%v", err)
	}

	metaPath := global.MetaPath(root)
	registry, err := schema.Load(metaPath)
	if err != nil {
		fail(ExitDataError, "%v", err)
	}

	store := storage.New(global.DataPath(root))
	sess := &session{
		registry: registry,
		engine:   engine.New(registry, store, logger),
		metaPath: metaPath,
		out:      cmd.OutOrStdout(),
	}

	// An interrupt drops the current line but never kills the session.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for range interrupts {
			fmt.Fprintln(os.Stderr, "\nInterrupted. Type 'exit' to quit.")
		}
	}()

	fmt.Fprintf(sess.out, "flatdb %s\n", Version)
	fmt.Fprintln(sess.out, "Type 'help' for available commands, 'exit' to quit.")

	return sess.loop(os.Stdin)
}

// loop reads commands line by line until exit or EOF. Every failure from the
// core is printed and the loop continues; the schema registry is persisted
// on the way out.
func (s *session) loop(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		done, err := s.dispatch(line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}
		if done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return s.registry.Save(s.metaPath)
}

// dispatch parses and executes one command line. The returned bool reports
// whether the session should end.
func (s *session) dispatch(line string) (bool, error) {
	cmd, err := command.Parse(line)
	if err != nil {
		return false, err
	}

	switch c := cmd.(type) {
	case command.Exit:
		fmt.Fprintln(s.out, "Goodbye.")
		return true, nil

	case command.Help:
		s.printHelp()

	case command.ListTables:
		s.printTables()

	case command.CreateTable:
		if err := s.registry.Create(c.Table, c.ColumnSpecs); err != nil {
			return false, err
		}
		if err := s.registry.Save(s.metaPath); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Table %q created.\n", c.Table)

	case command.DropTable:
		if err := s.registry.Drop(c.Table); err != nil {
			return false, err
		}
		if err := s.registry.Save(s.metaPath); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Table %q dropped.\n", c.Table)

	case command.Insert:
		id, err := s.engine.Insert(c.Table, c.Values)
		if err != nil {
			return false, err
		}
		if err := s.registry.Save(s.metaPath); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Record with ID=%d inserted into %q.\n", id, c.Table)

	case command.Select:
		var where *engine.Predicate
		if c.Where != nil {
			where = &engine.Predicate{Column: c.Where.Column, Value: c.Where.Value}
		}
		records, err := s.engine.Select(c.Table, where)
		if err != nil {
			return false, err
		}
		if len(records) == 0 {
			fmt.Fprintln(s.out, "No records found.")
			return false, nil
		}
		tbl, err := s.engine.Describe(c.Table)
		if err != nil {
			return false, err
		}
		fmt.Fprint(s.out, renderRecords(tbl, records))

	case command.Update:
		ids, err := s.engine.Update(c.Table, c.SetColumn, c.SetValue,
			engine.Predicate{Column: c.Where.Column, Value: c.Where.Value})
		if err != nil {
			return false, err
		}
		if len(ids) == 0 {
			fmt.Fprintln(s.out, "No matching records.")
			return false, nil
		}
		if err := s.registry.Save(s.metaPath); err != nil {
			return false, err
		}
		for _, id := range ids {
			fmt.Fprintf(s.out, "Record with ID=%d in %q updated.\n", id, c.Table)
		}

	case command.Delete:
		ids, err := s.engine.Delete(c.Table,
			engine.Predicate{Column: c.Where.Column, Value: c.Where.Value})
		if err != nil {
			return false, err
		}
		if len(ids) == 0 {
			fmt.Fprintln(s.out, "No matching records.")
			return false, nil
		}
		if err := s.registry.Save(s.metaPath); err != nil {
			return false, err
		}
		for _, id := range ids {
			fmt.Fprintf(s.out, "Record with ID=%d deleted from %q.\n", id, c.Table)
		}

	case command.Info:
		tbl, err := s.engine.Describe(c.Table)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Table: %s\nColumns: %s\n", c.Table, tbl.Signature())
	}

	return false, nil
}

// printTables lists every defined table with its column signature.
func (s *session) printTables() {
	names := s.registry.Names()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "No tables defined.")
		return
	}
	fmt.Fprintln(s.out, "Tables:")
	for _, name := range names {
		tbl, err := s.registry.Table(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(s.out, "  %s (%s)\n", name, tbl.Signature())
	}
}

func (s *session) printHelp() {
	fmt.Fprintf(s.out, `Available commands:

Table management:
  %s
      Create a table with the given columns (types: int, str, bool).
      An ID:int column is added automatically.
  %s
      Remove a table definition. Its record file is left on disk.
  %s
      Show all tables.
  %s
      Show a table's columns.

Data operations:
  %s
      Insert a record (the ID is assigned automatically).
  %s
      Read records, optionally filtered by one equality condition.
  %s
      Update matching records.
  %s
      Delete matching records.

Other:
  help
      Show this message.
  exit
      Save the schema and quit.
`,
		command.UsageCreateTable,
		command.UsageDropTable,
		command.UsageListTables,
		command.UsageInfo,
		command.UsageInsert,
		command.UsageSelect,
		command.UsageUpdate,
		command.UsageDelete,
	)
}
