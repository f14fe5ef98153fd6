package client

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"medilink/pkg/session"
)

// EventStream reads the auth event stream of one session. It implements
// session.EventSource, so it can drive a session.Gate.
type EventStream struct {
	client  *Client
	session *session.Session
}

var _ session.EventSource = (*EventStream)(nil)

func (c *Client) Events(s *session.Session) *EventStream {
	return &EventStream{client: c, session: s}
}

// Subscribe opens the stream. Events arrive on the channel until unsubscribe is called,
// ctx ends or the server closes the stream; the channel is closed in every case.
func (e *EventStream) Subscribe(ctx context.Context) (<-chan session.Event, func(), error) {
	if err := requireSession(e.session); err != nil {
		return nil, nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, e.client.baseURL+apiPrefix+"/auth/events", nil)
	if err != nil {
		cancel()
		return nil, nil, e.client.unexpected(http.MethodGet, "/auth/events", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+e.session.AccessToken)

	// The stream outlives any per-request timeout of the shared client.
	hc := *e.client.httpClient
	hc.Timeout = 0
	resp, err := hc.Do(req)
	if err != nil {
		cancel()
		return nil, nil, e.client.unexpected(http.MethodGet, "/auth/events", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		defer cancel()
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, nil, e.client.unexpected(http.MethodGet, "/auth/events", err)
		}
		return nil, nil, classify(resp.StatusCode, &env)
	}

	events := make(chan session.Event)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(events)
		defer resp.Body.Close()
		e.read(streamCtx, resp, events)
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
	return events, unsubscribe, nil
}

func (e *EventStream) read(ctx context.Context, resp *http.Response, out chan<- session.Event) {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() == 0 {
				continue
			}
			var ev session.Event
			if err := json.Unmarshal([]byte(data.String()), &ev); err != nil {
				e.client.log.Warnf("Failed to decode auth event: %+v", err)
			} else {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		e.client.log.Warnf("Auth event stream ended: %+v", err)
	}
}
