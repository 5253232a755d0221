// Package refpages reads the reference page list: one "|"-separated entry per
// wiki page naming the page, its link, categories, timestamp and summary.
package refpages

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ErrMalformed is returned for entries with too few fields.
var ErrMalformed = errors.New("malformed page entry")

const (
	// ReferenceFields is the minimum field count of a reference list entry.
	ReferenceFields = 5
	// BatchFields is the minimum field count of a batch list entry.
	BatchFields = 4
)

// Class is the kind of page an entry describes, taken from its title prefix.
type Class int

const (
	ClassOther Class = iota
	ClassPerson
	ClassProfile
	ClassOrganisation
	ClassPlace
)

var classPrefixes = []struct {
	prefix string
	class  Class
}{
	{"Person", ClassPerson},
	{"Profile", ClassProfile},
	{"Organisation", ClassOrganisation},
	{"Place", ClassPlace},
}

func (c Class) String() string {
	for _, p := range classPrefixes {
		if p.class == c {
			return p.prefix
		}
	}
	return "Other"
}

// IsPerson reports whether the class names an individual.
func (c Class) IsPerson() bool { return c == ClassPerson || c == ClassProfile }

// Entry is one parsed line of a page list.
type Entry struct {
	Title      string
	Link       string
	Categories []string
	Timestamp  string
	Lifespan   string
	Summary    string
	Class      Class
	// Raw is the line as read, used as the ledger key.
	Raw string
}

// SplitFields splits text on sep and trims surrounding spaces from each field.
func SplitFields(text, sep string) []string {
	parts := strings.Split(text, sep)
	for i, p := range parts {
		parts[i] = strings.Trim(p, " ")
	}
	return parts
}

// ClassOf returns the class named by the title prefix and the remainder of
// the title after the first colon.
func ClassOf(title string) (Class, string) {
	prefix, rest, ok := strings.Cut(title, ":")
	if !ok {
		return ClassOther, title
	}
	prefix = strings.TrimSpace(prefix)
	for _, p := range classPrefixes {
		if prefix == p.prefix {
			return p.class, strings.TrimSpace(rest)
		}
	}
	return ClassOther, title
}

// ParseLine parses a "|"-separated entry requiring at least minFields fields.
func ParseLine(line string, minFields int) (Entry, error) {
	fields := SplitFields(strings.TrimRight(line, "\r\n"), "|")
	if len(fields) < minFields {
		return Entry{}, fmt.Errorf("%w: %d fields in %q", ErrMalformed, len(fields), line)
	}
	at := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	e := Entry{
		Title:     fields[0],
		Link:      at(1),
		Timestamp: at(3),
		Raw:       line,
	}
	if cats := at(2); cats != "" {
		e.Categories = SplitFields(cats, ";")
	}
	e.Class, _ = ClassOf(e.Title)

	switch {
	case e.Class.IsPerson():
		e.Lifespan, e.Summary = at(4), at(5)
	case e.Class == ClassOrganisation && len(fields) > 5:
		e.Lifespan, e.Summary = at(4), at(5)
	default:
		e.Summary = at(4)
	}
	return e, nil
}

// InCategory reports whether the entry lists cat among its categories.
func (e Entry) InCategory(cat string) bool {
	for _, c := range e.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// CategoryText joins the categories for display.
func (e Entry) CategoryText() string { return strings.Join(e.Categories, "; ") }

// Identity returns the name a page is known by in running text and, for
// people, the first forename. Person and profile titles are "Surname,
// Forenames"; organisations use the text after the prefix; anything else
// uses the whole title.
func (e Entry) Identity() (name, next string) {
	class, rest := ClassOf(e.Title)
	switch {
	case class.IsPerson() || class == ClassOrganisation:
		surname, forenames, ok := strings.Cut(rest, ",")
		if !ok {
			return rest, ""
		}
		if f := strings.Fields(forenames); len(f) > 0 {
			next = f[0]
		}
		return strings.TrimSpace(surname), next
	default:
		return e.Title, ""
	}
}

// MatchName is the name searched for in other pages' text when proposing a
// link to this entry.
func (e Entry) MatchName() string {
	class, rest := ClassOf(e.Title)
	switch {
	case class.IsPerson():
		surname, _, _ := strings.Cut(rest, ",")
		return strings.TrimSpace(surname)
	case class == ClassOrganisation || class == ClassPlace:
		return rest
	default:
		return e.Title
	}
}

// List is a parsed page list.
type List struct {
	Entries []Entry
	// Skipped counts malformed lines.
	Skipped int
}

// ByLink returns the entry whose link equals link.
func (l *List) ByLink(link string) (Entry, bool) {
	for _, e := range l.Entries {
		if e.Link == link {
			return e, true
		}
	}
	return Entry{}, false
}

// Load reads a page list file. Blank lines are ignored; malformed lines are
// logged and skipped.
func Load(path string, minFields int, logger *zap.Logger) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page list: %w", err)
	}
	defer f.Close()

	if logger == nil {
		logger = zap.NewNop()
	}
	list := &List{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseLine(line, minFields)
		if err != nil {
			logger.Warn("skipping page list entry", zap.String("file", path), zap.Error(err))
			list.Skipped++
			continue
		}
		list.Entries = append(list.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read page list: %w", err)
	}
	return list, nil
}
