// Package inputrow reads a single prediction row interactively from a
// reader, prompting for each declared column's value through a Requester
// and retrying on a value that doesn't fit the column's kind.
package inputrow

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/mjuarezm/Arborist/feature"
)

// Requester is asked to prompt for and reject values as a row is read,
// decoupling inputrow from any particular terminal UI.
type Requester interface {
	RequestValueFor(feature.ColumnSpec) error
	RejectValueFor(feature.ColumnSpec, string) error
}

// Row is a single prediction input: one value per declared column, keyed
// by column name, ready for dataset.Builder.AddRow.
type Row map[string]string

// Read prompts for a value for every column in cols, in order, using r as
// the line source and req to drive the prompt/reject cycle. undefinedValue
// is the sentinel line that means "value not provided" (rejected here: the
// packed forest core has no missing-value branch, so an undefined value
// simply stops the read with an error naming the column).
func Read(r io.Reader, cols []feature.ColumnSpec, req Requester, undefinedValue string) (Row, error) {
	scanner := bufio.NewScanner(r)
	row := make(Row, len(cols))
	for _, c := range cols {
		v, err := readColumn(scanner, c, req, undefinedValue)
		if err != nil {
			return nil, err
		}
		row[c.Name] = v
	}
	return row, nil
}

func readColumn(scanner *bufio.Scanner, c feature.ColumnSpec, req Requester, undefinedValue string) (string, error) {
	if err := req.RequestValueFor(c); err != nil {
		return "", err
	}
	for scanner.Scan() {
		line := scanner.Text()
		if line == undefinedValue {
			return "", fmt.Errorf("inputrow: column %q has no value: the packed forest has no missing-value branch", c.Name)
		}
		if ok, msg := valid(c, line); ok {
			return line, nil
		} else if err := req.RejectValueFor(c, msg); err != nil {
			return "", err
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("inputrow: EOF requesting a value for column %q", c.Name)
}

func valid(c feature.ColumnSpec, line string) (bool, string) {
	if c.Kind == feature.Factor {
		if _, ok := c.LevelCode(line); !ok {
			return false, line
		}
		return true, ""
	}
	if _, err := strconv.ParseFloat(line, 64); err != nil {
		return false, line
	}
	return true, ""
}
