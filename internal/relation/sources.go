package relation

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/sqliteurl/internal/formdecode"
	"github.com/roach88/sqliteurl/internal/lines"
)

// QueryEach is the url_query_each relation over form-urlencoded payloads.
// Rowids equal ordinals, starting at 0.
var QueryEach = Relation{
	Name: "url_query_each",
	Outputs: []Output{
		{Name: "ordinal", Type: "INTEGER"},
		{Name: "name", Type: "TEXT"},
		{Name: "value", Type: "TEXT"},
	},
	Inputs:   []Input{{Name: "query", Echo: true}},
	Generate: queryEntries,
}

// Lines splits a text document into lines. Rowids start at 1.
// The document column reads back as an empty string.
var Lines = Relation{
	Name:    "lines",
	Outputs: []Output{{Name: "line", Type: "TEXT"}},
	Inputs: []Input{
		{Name: "document"},
		{Name: "delimiter", Optional: true, Default: lines.DefaultDelimiter, Echo: true},
	},
	RowidBase: 1,
	Generate:  documentLines,
}

// LinesRead streams the lines of a file. Rowids start at 1.
var LinesRead = Relation{
	Name:    "lines_read",
	Outputs: []Output{{Name: "line", Type: "TEXT"}},
	Inputs: []Input{
		{Name: "path", Echo: true},
		{Name: "delimiter", Optional: true, Default: lines.DefaultDelimiter, Echo: true},
	},
	RowidBase: 1,
	Generate:  fileLines,
}

func queryEntries(args []string) (Rows, error) {
	entries := formdecode.Decode(args[0])
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{int64(i), e.Name, e.Value}
	}
	return &sliceRows{rows: rows}, nil
}

func documentLines(args []string) (Rows, error) {
	if err := lines.CheckDelimiter(args[1]); err != nil {
		return nil, invalidArgument("lines", err)
	}
	return &scannerRows{sc: lines.NewScanner(strings.NewReader(args[0]), args[1])}, nil
}

func fileLines(args []string) (Rows, error) {
	if err := lines.CheckDelimiter(args[1]); err != nil {
		return nil, invalidArgument("lines_read", err)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, invalidArgument("lines_read", err)
	}
	return &scannerRows{sc: lines.NewScanner(f, args[1]), file: f}, nil
}

func invalidArgument(relation string, err error) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("%s: %v", relation, err),
	}
}

// sliceRows serves rows generated up front.
type sliceRows struct {
	rows [][]any
	pos  int
}

func (s *sliceRows) Next() ([]any, bool, error) {
	if s.pos >= len(s.rows) {
		return nil, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

func (s *sliceRows) Close() error {
	s.rows = nil
	return nil
}

// scannerRows yields one single-column row per scanned line.
type scannerRows struct {
	sc   *bufio.Scanner
	file *os.File
}

func (s *scannerRows) Next() ([]any, bool, error) {
	if s.sc.Scan() {
		return []any{s.sc.Text()}, true, nil
	}
	return nil, false, s.sc.Err()
}

func (s *scannerRows) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
