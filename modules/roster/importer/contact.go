package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// contactColumns is the fixed set of columns scanned for contact data, in
// scan order. Class drives the "wrong column" warning: tokens classified
// contrary to an email or phone column produce a correction warning; the
// generic contact column accepts either kind silently.
var contactColumns = []struct {
	name  string
	class string
}{
	{"emails", "email"},
	{"email", "email"},
	{"phoneNumbers", "phone"},
	{"phone", "phone"},
	{"contact", "any"},
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`)

// ContactSet is the resolver output: deduplicated emails and phone numbers
// plus ordered correction warnings. Contact discrepancies are correctable,
// never fatal, so this stage has no error path.
type ContactSet struct {
	Emails       []string
	PhoneNumbers []string
	Warnings     []string
}

// ResolveContacts scans every candidate column for emails and phone numbers
// regardless of which column they were placed in.
func ResolveContacts(values map[string]string) ContactSet {
	var out ContactSet
	seenEmails := make(map[string]struct{})
	seenPhones := make(map[string]struct{})

	for _, col := range contactColumns {
		raw, ok := values[col.name]
		if !ok {
			continue
		}
		for _, tok := range splitList(raw) {
			switch {
			case isEmail(tok):
				key := strings.ToLower(tok)
				if _, dup := seenEmails[key]; dup {
					continue
				}
				seenEmails[key] = struct{}{}
				out.Emails = append(out.Emails, tok)
				if col.class == "phone" {
					out.Warnings = append(out.Warnings,
						fmt.Sprintf("email %q found in %s column; moved to emails", tok, col.name))
				}
			case isPhone(tok):
				key := digitsOnly(tok)
				if _, dup := seenPhones[key]; dup {
					continue
				}
				seenPhones[key] = struct{}{}
				out.PhoneNumbers = append(out.PhoneNumbers, tok)
				if col.class == "email" {
					out.Warnings = append(out.Warnings,
						fmt.Sprintf("phone number %q found in %s column; moved to phoneNumbers", tok, col.name))
				}
			default:
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("unrecognized contact value %q in %s column", tok, col.name))
			}
		}
	}
	return out
}

func isEmail(tok string) bool {
	return emailRe.MatchString(tok)
}

// isPhone accepts 7-15 digits after stripping formatting, covering a leading
// 1 on 10-digit numbers and a + international prefix.
func isPhone(tok string) bool {
	if tok == "" {
		return false
	}
	rest := strings.TrimPrefix(tok, "+")
	digits := 0
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

func digitsOnly(tok string) string {
	var b strings.Builder
	for _, r := range tok {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
