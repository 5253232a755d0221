package linkcheck

import (
	"github.com/julianshen/wikimaint/internal/ledger"
	"github.com/julianshen/wikimaint/internal/refpages"
)

// Exceptions is the list of link failures already known and accepted, one
// "page|url|code" line each.
type Exceptions struct {
	l     *ledger.Ledger
	known map[string]bool
}

// OpenExceptions loads the exceptions file at path.
func OpenExceptions(path string) (*Exceptions, error) {
	l, err := ledger.Open(path)
	if err != nil {
		return nil, err
	}
	e := &Exceptions{l: l, known: make(map[string]bool)}
	for _, line := range l.Lines() {
		f := refpages.SplitFields(line, "|")
		if len(f) < 3 {
			continue
		}
		e.known[exceptionLine(f[0], f[1], f[2])] = true
	}
	return e, nil
}

func exceptionLine(page, url, code string) string {
	return page + "|" + url + "|" + code
}

// Contains reports whether the failure was known when the file was opened.
// Failures added during this run are still reported.
func (e *Exceptions) Contains(page, url, code string) bool {
	return e.known[exceptionLine(page, url, code)]
}

// Add records a newly seen failure.
func (e *Exceptions) Add(page, url, code string) error {
	return e.l.Append(exceptionLine(page, url, code))
}

// Len returns the number of lines in the file.
func (e *Exceptions) Len() int { return e.l.Len() }
