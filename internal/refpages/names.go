package refpages

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bracketRe    = regexp.MustCompile(`\((.*?)\)`)
	birthRe      = regexp.MustCompile(`\((\d{4})`)
	deathRe      = regexp.MustCompile(`[\s-]{1,5}([-\d]{4})\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Reformat rewrites "Person:Forenames Surname (note)" as
// "Person:Surname, Forenames (note)". Profile titles are handled the same
// way. Other titles are returned unchanged.
func Reformat(title string) string {
	prefix := ""
	for _, p := range []string{"Person:", "Profile:"} {
		if i := strings.Index(title, p); i >= 0 {
			prefix = p
			title = title[i+len(p):]
			break
		}
	}
	if prefix == "" {
		return title
	}

	var notes []string
	for _, m := range bracketRe.FindAllStringSubmatch(title, -1) {
		notes = append(notes, m[1])
	}
	name := bracketRe.ReplaceAllString(title, "")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)

	if !strings.Contains(name, ",") {
		words := whitespaceRe.Split(name, -1)
		surname := words[len(words)-1]
		name = surname + ","
		for _, w := range words[:len(words)-1] {
			name += " " + w
		}
	}
	out := prefix + name
	if len(notes) > 0 {
		out += " (" + strings.Join(notes, ", ") + ")"
	}
	return out
}

// Lifespan extracts "birth-death" years from a biographical line such as
// "John Smith (1850 - 1920)". An open-ended span yields "1850- ----" and no
// bracketed year yields "".
func Lifespan(text string) string {
	loc := birthRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return ""
	}
	birth := text[loc[2]:loc[3]]
	if m := deathRe.FindStringSubmatch(text[loc[1]:]); m != nil {
		return birth + "-" + m[1]
	}
	return birth + "- ----"
}

var months = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthYear turns a "yyyy-mm-dd..." timestamp into "Mon yyyy". An
// unrecognised month is shown as "***".
func MonthYear(ts string) string {
	if len(ts) < 4 {
		return "*** " + ts
	}
	mon := "***"
	if len(ts) >= 7 {
		if n, err := strconv.Atoi(ts[5:7]); err == nil && n >= 1 && n <= 12 {
			mon = months[n-1]
		}
	}
	return mon + " " + ts[:4]
}
