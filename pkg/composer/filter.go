package composer

import (
	"regexp"
	"strings"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// Filter gates whether a handler applies to an update.
type Filter func(u *domain.Update) bool

// Any matches every update.
func Any() Filter {
	return func(*domain.Update) bool { return true }
}

// OnKind matches updates of the given kind.
func OnKind(kind domain.UpdateKind) Filter {
	return func(u *domain.Update) bool { return u != nil && u.Kind == kind }
}

// OnCommand matches command updates named name, without the leading slash.
func OnCommand(name string) Filter {
	return func(u *domain.Update) bool { return u.Command() == name && name != "" }
}

// OnCallback matches callback updates whose data equals data.
func OnCallback(data string) Filter {
	return func(u *domain.Update) bool { return u.CallbackData() == data && data != "" }
}

// HasText matches updates carrying a non-empty text body.
func HasText() Filter {
	return func(u *domain.Update) bool { return u != nil && strings.TrimSpace(u.Text) != "" }
}

// TextEquals matches message updates whose trimmed text equals s.
func TextEquals(s string) Filter {
	return func(u *domain.Update) bool {
		return u != nil && u.Kind == domain.KindMessage && strings.TrimSpace(u.Text) == s
	}
}

// TextMatches matches message updates whose text matches re.
func TextMatches(re *regexp.Regexp) Filter {
	return func(u *domain.Update) bool {
		return u != nil && u.Kind == domain.KindMessage && re.MatchString(u.Text)
	}
}

// And matches when every filter matches.
func And(fs ...Filter) Filter {
	return func(u *domain.Update) bool {
		for _, f := range fs {
			if !f(u) {
				return false
			}
		}
		return true
	}
}

// Or matches when at least one filter matches.
func Or(fs ...Filter) Filter {
	return func(u *domain.Update) bool {
		for _, f := range fs {
			if f(u) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(f Filter) Filter {
	return func(u *domain.Update) bool { return !f(u) }
}
