package presence

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/kouk/grawity-code/internal/models"
)

// Row is one or more sessions of a user on a host, collapsed by origin.
type Row struct {
	User string
	UID  int64
	Host string
	// Origin is the remote host the sessions came from, with screen
	// sessions normalized to "<host> (screen)". Empty means local.
	Origin string
	// Line is the terminal of a single session, or the session count of a
	// summary row.
	Line     string
	Sessions int
	// Updated is the freshest timestamp among the merged sessions.
	Updated int64
}

func (r Row) IsSummary() bool {
	return r.Sessions > 1
}

var screenRe = regexp.MustCompile(`^(.+):S\.\d+$`)

// Origin returns the label sessions from rhost are grouped under.
func Origin(rhost string) string {
	if m := screenRe.FindStringSubmatch(rhost); m != nil {
		return m[1] + " (screen)"
	}
	return rhost
}

type hostGroup struct {
	host     string
	sessions []models.Session
}

type userGroup struct {
	user   string
	hosts  []*hostGroup
	byHost map[string]*hostGroup
}

type bucket struct {
	lines   []string
	updated int64
}

// Summarize groups sessions by user and host and collapses sessions that
// share an origin into a single row. Users and hosts keep the order they are
// first seen in; within a host, rows are sorted by origin.
//
// The uid of every row in a (user, host) group is taken from the last
// session of that group. Sessions of one user are expected to share a uid
// and this is not checked.
func Summarize(sessions []models.Session) []Row {
	var users []*userGroup
	byUser := make(map[string]*userGroup)

	for _, s := range sessions {
		ug, ok := byUser[s.User]
		if !ok {
			ug = &userGroup{user: s.User, byHost: make(map[string]*hostGroup)}
			byUser[s.User] = ug
			users = append(users, ug)
		}
		hg, ok := ug.byHost[s.Host]
		if !ok {
			hg = &hostGroup{host: s.Host}
			ug.byHost[s.Host] = hg
			ug.hosts = append(ug.hosts, hg)
		}
		hg.sessions = append(hg.sessions, s)
	}

	out := make([]Row, 0, len(sessions))
	for _, ug := range users {
		for _, hg := range ug.hosts {
			out = append(out, summarizeHost(ug.user, hg)...)
		}
	}
	return out
}

func summarizeHost(user string, hg *hostGroup) []Row {
	byOrigin := make(map[string]*bucket)
	var uid int64
	for _, s := range hg.sessions {
		origin := Origin(s.RHost)
		b, ok := byOrigin[origin]
		if !ok {
			b = &bucket{updated: s.Updated}
			byOrigin[origin] = b
		}
		b.lines = append(b.lines, s.Line)
		b.updated = max(b.updated, s.Updated)
		uid = s.UID
	}

	origins := make([]string, 0, len(byOrigin))
	for origin := range byOrigin {
		origins = append(origins, origin)
	}
	sort.Strings(origins)

	rows := make([]Row, 0, len(origins))
	for _, origin := range origins {
		b := byOrigin[origin]
		row := Row{
			User:     user,
			UID:      uid,
			Host:     hg.host,
			Origin:   origin,
			Sessions: len(b.lines),
			Updated:  b.updated,
		}
		if row.IsSummary() {
			row.Line = strconv.Itoa(len(b.lines))
		} else {
			row.Line = b.lines[0]
		}
		rows = append(rows, row)
	}
	return rows
}
