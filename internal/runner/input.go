package runner

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/refpages"
)

// ResolveBatch determines the pages to process.
// Priority: titlesFlag > stdinReader > batchPath.
// titlesFlag is a comma-separated list of page titles and stdinReader
// yields one title per line; both are looked up in ref by link. stdinReader
// may be nil if stdin is a TTY (no pipe).
func ResolveBatch(titlesFlag string, stdinReader io.Reader, batchPath string, ref *refpages.List, logger *zap.Logger) ([]refpages.Entry, error) {
	if strings.TrimSpace(titlesFlag) != "" {
		return lookup(strings.Split(titlesFlag, ","), ref)
	}

	if stdinReader != nil {
		var titles []string
		sc := bufio.NewScanner(stdinReader)
		for sc.Scan() {
			titles = append(titles, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		entries, err := lookup(titles, ref)
		if err != nil || len(entries) > 0 {
			return entries, err
		}
	}

	if batchPath == "" {
		return nil, fmt.Errorf("no pages given: use --titles, pipe titles on stdin, or set files.batch")
	}
	list, err := refpages.Load(batchPath, refpages.BatchFields, logger)
	if err != nil {
		return nil, err
	}
	return list.Entries, nil
}

func lookup(titles []string, ref *refpages.List) ([]refpages.Entry, error) {
	var entries []refpages.Entry
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if ref == nil {
			return nil, fmt.Errorf("page %q: no reference page list loaded", t)
		}
		e, ok := ref.ByLink(t)
		if !ok {
			return nil, fmt.Errorf("page %q is not in the reference page list", t)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
