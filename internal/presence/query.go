package presence

import "regexp"

// Filter narrows a presence query. Empty fields match everything.
type Filter struct {
	User string
	Host string
}

func (f Filter) IsZero() bool {
	return f.User == "" && f.Host == ""
}

func (f Filter) String() string {
	if f.Host == "" {
		return f.User
	}
	return f.User + "@" + f.Host
}

var queryRe = regexp.MustCompile(`^(.*)@(.+)$`)

// ParseQuery splits "user@host" into a filter. Anything that does not have a
// non-empty host part is taken as a bare user name; it never fails.
func ParseQuery(q string) Filter {
	if q == "" {
		return Filter{}
	}
	if m := queryRe.FindStringSubmatch(q); m != nil {
		return Filter{User: m[1], Host: m[2]}
	}
	return Filter{User: q}
}
