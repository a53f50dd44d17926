package events

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Stream is the change-notification endpoint: an SSE stream of Events for
// the tables named in ?tables=a,b (all tables when omitted). Clients
// re-run their queries on each event.
func Stream(c *gin.Context) {
	var tables []string
	if raw := c.Query("tables"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}

	ch, cancel := Default.Subscribe(tables...)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", evt)
			return true
		case <-heartbeat.C:
			// comment frame keeps proxies from closing the idle stream
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		case <-c.Request.Context().Done():
			return false
		}
	})
}
