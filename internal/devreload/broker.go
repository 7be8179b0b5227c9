// Package devreload tells open browser tabs to reload when the built front
// end changes. It is only wired in development mode.
package devreload

import (
	"net/http"
	"strings"
	"sync"
)

type Broker struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: map[chan struct{}]struct{}{},
	}
}

func (b *Broker) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// Notify wakes every subscriber. Pending notifications are coalesced.
func (b *Broker) Notify() {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// ServeHTTP streams "ready" once and "reload" on every notification.
func (b *Broker) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	_, _ = w.Write([]byte("event: ready\ndata: 1\n\n"))
	flusher.Flush()

	for {
		select {
		case <-req.Context().Done():
			return
		case <-ch:
			_, _ = w.Write([]byte("event: reload\ndata: 1\n\n"))
			flusher.Flush()
		}
	}
}

// Path is where ServeHTTP is mounted.
const Path = "/__travelrec/reload"

const scriptMarker = "__travelrec_reload"

const scriptSource = `(function(){if(window.` + scriptMarker + `)return;window.` + scriptMarker + `=true;` +
	`var es=new EventSource("` + Path + `");` +
	`es.addEventListener("reload",function(){window.location.reload();});})();`

// InjectScript adds the reload client before </body>, once.
func InjectScript(html string) string {
	if strings.Contains(html, scriptMarker) {
		return html
	}

	script := "<script>" + scriptSource + "</script>"

	if strings.Contains(html, "</body>") {
		return strings.Replace(html, "</body>", script+"</body>", 1)
	}

	return html + script
}
