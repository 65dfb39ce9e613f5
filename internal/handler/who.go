package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/kouk/grawity-code/internal/presence"
	"github.com/kouk/grawity-code/internal/util"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// WhoHandler serves the presence table in its various encodings.
type WhoHandler struct {
	Source presence.Source
	Clock  quartz.Clock
	MaxAge time.Duration
	Logger slog.Logger
}

func NewWhoHandler(src presence.Source, clock quartz.Clock, maxAge time.Duration, logger slog.Logger) *WhoHandler {
	return &WhoHandler{
		Source: src,
		Clock:  clock,
		MaxAge: maxAge,
		Logger: logger,
	}
}

// lookup parses ?q= and runs the query. Failures are logged here so
// callers only pick the response.
func (h *WhoHandler) lookup(c *gin.Context) ([]presence.Row, bool) {
	filter := presence.ParseQuery(c.Query("q"))
	ctx := c.Request.Context()

	rows, err := presence.Lookup(ctx, h.Source, filter)
	if err != nil {
		h.Logger.Warn(ctx, "retrieve sessions",
			slog.F("filter", filter.String()),
			slog.Error(err))
		return nil, false
	}
	h.Logger.Debug(ctx, "summarized sessions",
		slog.F("filter", filter.String()),
		slog.F("rows", len(rows)))
	return rows, true
}

// Text renders the fixed-width table.
func (h *WhoHandler) Text(c *gin.Context) {
	rows, ok := h.lookup(c)
	if !ok {
		c.Data(http.StatusServiceUnavailable, presence.ContentType, []byte(presence.ErrorLine))
		return
	}

	var buf bytes.Buffer
	if err := presence.RenderText(&buf, rows, h.Clock.Now(), h.MaxAge); err != nil {
		c.Data(http.StatusInternalServerError, presence.ContentType, []byte(presence.ErrorLine))
		return
	}
	c.Data(http.StatusOK, presence.ContentType, buf.Bytes())
}

type rowResp struct {
	User      string `json:"user"`
	UID       int64  `json:"uid"`
	Host      string `json:"host"`
	ShortHost string `json:"short_host"`
	Line      string `json:"line"`
	Sessions  int    `json:"sessions"`
	From      string `json:"from"`
	IsSummary bool   `json:"is_summary"`
	Updated   int64  `json:"updated"`
	Stale     bool   `json:"stale"`
	Flag      string `json:"flag"`
	Idle      string `json:"idle"`
}

func (h *WhoHandler) toResp(r presence.Row, now time.Time) rowResp {
	return rowResp{
		User:      r.User,
		UID:       r.UID,
		Host:      r.Host,
		ShortHost: presence.StripDomain(r.Host),
		Line:      r.Line,
		Sessions:  r.Sessions,
		From:      r.Origin,
		IsSummary: r.IsSummary(),
		Updated:   r.Updated,
		Stale:     presence.IsStale(r.Updated, now, h.MaxAge),
		Flag:      presence.Flag(r, now, h.MaxAge),
		Idle:      humanize.RelTime(time.Unix(r.Updated, 0), now, "ago", "from now"),
	}
}

// JSON returns the summary rows with their flags resolved.
func (h *WhoHandler) JSON(c *gin.Context) {
	rows, ok := h.lookup(c)
	if !ok {
		util.Error(c, http.StatusServiceUnavailable, util.CodeUnavailable, "Failed to retrieve rwho data")
		return
	}

	now := h.Clock.Now()
	items := make([]rowResp, 0, len(rows))
	for _, r := range rows {
		items = append(items, h.toResp(r, now))
	}

	util.Success(c, util.Response{
		"rows":    items,
		"now":     now.Unix(),
		"max_age": int64(h.MaxAge / time.Second),
	})
}

// Pinger reports whether the session store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers 200 when the store can be reached.
func Health(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := p.Ping(c.Request.Context()); err != nil {
			util.Error(c, http.StatusServiceUnavailable, util.CodeUnavailable, "session store unavailable")
			return
		}
		util.Success(c, util.Response{"status": "ok"})
	}
}
