package presence

import (
	"testing"

	"github.com/kouk/grawity-code/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrigin(t *testing.T) {
	testCases := map[string]string{
		"pdx1:S.42":       "pdx1 (screen)",
		"pdx1":            "pdx1",
		"":                "",
		"a.b.c:S.0":       "a.b.c (screen)",
		"pdx1:S.":         "pdx1:S.",
		"pdx1:S.4x":       "pdx1:S.4x",
		":S.1":            ":S.1",
		"10.0.0.1:S.1234": "10.0.0.1 (screen)",
	}

	for in, want := range testCases {
		assert.Equal(t, want, Origin(in), "Origin(%q)", in)
	}
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
	assert.Empty(t, Summarize([]models.Session{}))
}

func TestSummarize_ScreenSessionsMerge(t *testing.T) {
	rows := Summarize([]models.Session{
		{User: "ann", Host: "h1", Line: "tty1", RHost: "x:S.1", UID: 100, Updated: 9990},
		{User: "ann", Host: "h1", Line: "tty2", RHost: "x:S.2", UID: 100, Updated: 9995},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, Row{
		User:     "ann",
		UID:      100,
		Host:     "h1",
		Origin:   "x (screen)",
		Line:     "2",
		Sessions: 2,
		Updated:  9995,
	}, rows[0])
	assert.True(t, rows[0].IsSummary())
}

func TestSummarize_OriginOrder(t *testing.T) {
	rows := Summarize([]models.Session{
		{User: "ann", Host: "h1", Line: "a", RHost: "zeta"},
		{User: "ann", Host: "h1", Line: "b", RHost: ""},
		{User: "ann", Host: "h1", Line: "c", RHost: "alpha"},
	})

	var origins []string
	for _, r := range rows {
		origins = append(origins, r.Origin)
		assert.False(t, r.IsSummary())
	}
	assert.Equal(t, []string{"", "alpha", "zeta"}, origins)
}

func TestSummarize_NoCrossHostMerge(t *testing.T) {
	rows := Summarize([]models.Session{
		{User: "ann", Host: "h1", Line: "pts/0", RHost: "desk", Updated: 5},
		{User: "ann", Host: "h2", Line: "pts/0", RHost: "desk", Updated: 7},
		{User: "bob", Host: "h1", Line: "pts/1", RHost: "desk", Updated: 9},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "h1", rows[0].Host)
	assert.Equal(t, "h2", rows[1].Host)
	assert.Equal(t, "bob", rows[2].User)
	for _, r := range rows {
		assert.Equal(t, 1, r.Sessions)
		assert.Equal(t, "desk", r.Origin)
	}
}

func TestSummarize_FirstSeenOrder(t *testing.T) {
	rows := Summarize([]models.Session{
		{User: "zed", Host: "h9", Line: "a"},
		{User: "ann", Host: "h2", Line: "b"},
		{User: "zed", Host: "h1", Line: "c"},
		{User: "ann", Host: "h1", Line: "d"},
	})

	var got []string
	for _, r := range rows {
		got = append(got, r.User+"@"+r.Host)
	}
	assert.Equal(t, []string{"zed@h9", "zed@h1", "ann@h2", "ann@h1"}, got)
}

func TestSummarize_FreshestWins(t *testing.T) {
	rows := Summarize([]models.Session{
		{User: "ann", Host: "h1", Line: "a", RHost: "desk", Updated: 300},
		{User: "ann", Host: "h1", Line: "b", RHost: "desk", Updated: 900},
		{User: "ann", Host: "h1", Line: "c", RHost: "desk", Updated: 100},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, int64(900), rows[0].Updated)
	assert.Equal(t, "3", rows[0].Line)
	assert.Equal(t, "{3}", rows[0].LineText())
}

// Mismatched uids within a group are not rejected: the last session wins.
func TestSummarize_UIDLastWriteWins(t *testing.T) {
	rows := Summarize([]models.Session{
		{User: "ann", Host: "h1", Line: "a", RHost: "x", UID: 100},
		{User: "ann", Host: "h1", Line: "b", RHost: "y", UID: 200},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, int64(200), rows[0].UID)
	assert.Equal(t, int64(200), rows[1].UID)
}

func TestSummarize_RowCount(t *testing.T) {
	unique := []models.Session{
		{User: "ann", Host: "h1", Line: "a", RHost: "x"},
		{User: "ann", Host: "h1", Line: "b", RHost: "y"},
		{User: "ann", Host: "h2", Line: "a", RHost: "x"},
		{User: "bob", Host: "h1", Line: "c", RHost: "x"},
	}
	assert.Len(t, Summarize(unique), len(unique))

	dup := append(unique, models.Session{User: "ann", Host: "h1", Line: "d", RHost: "x:S.3"},
		models.Session{User: "ann", Host: "h1", Line: "e", RHost: "x:S.4"})
	assert.Less(t, len(Summarize(dup)), len(dup))
}

func TestSummarize_IdempotentOnSingletons(t *testing.T) {
	sessions := []models.Session{
		{User: "ann", Host: "h1", Line: "a", RHost: "", UID: 1, Updated: 10},
		{User: "ann", Host: "h1", Line: "b", RHost: "x", UID: 1, Updated: 20},
		{User: "bob", Host: "h2", Line: "c", RHost: "y", UID: 2, Updated: 30},
	}
	first := Summarize(sessions)

	again := make([]models.Session, 0, len(first))
	for _, r := range first {
		again = append(again, models.Session{
			User: r.User, Host: r.Host, Line: r.Line, RHost: r.Origin, UID: r.UID, Updated: r.Updated,
		})
	}
	assert.Equal(t, first, Summarize(again))
}
