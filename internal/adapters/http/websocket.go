package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/reproj/internal/adapters/nats"
)

// wsMessage is sent by clients.
//
//	{"action":"transform","wkt":"POINT (500000 0)","source":"EPSG:32633"}
//	{"action":"subscribe","channel":"results","job":"<id>"}
//	{"action":"subscribe","channel":"events"}
type wsMessage struct {
	Action  string `json:"action"`  // transform | subscribe | unsubscribe
	Channel string `json:"channel"` // results | events
	Job     string `json:"job"`     // results filter, "" = all jobs
	ID      string `json:"id"`      // echoed back on transform replies
	WKT     string `json:"wkt"`
	Source  string `json:"source"`
	Target  string `json:"target"`
}

type wsReply struct {
	ID     string      `json:"id,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Error  *APIError   `json:"error,omitempty"`
}

// channelSubject maps a client channel to its NATS subject.
func channelSubject(m wsMessage) (string, bool) {
	switch m.Channel {
	case "results":
		if m.Job != "" {
			return natsadapter.SubjectResults + m.Job, true
		}
		return natsadapter.SubjectResults + ">", true
	case "events":
		return natsadapter.SubjectConversion, true
	}
	return "", false
}

// relayPayload converts a NATS payload into JSON for the client. Conversion
// events travel as protobuf and are decoded; job results are already JSON.
func relayPayload(subject string, data []byte) (json.RawMessage, error) {
	if subject != natsadapter.SubjectConversion {
		return json.RawMessage(data), nil
	}
	ev, err := natsadapter.DecodeConversionEvent(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ev)
}

// WebSocketHandler serves interactive transforms and relays job results and
// conversion events from NATS. Without a NATS connection only "transform" is
// available.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		logger := slog.Default().With("remote", c.RemoteAddr().String())
		logger.Info("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription)

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		fail := func(id, code, msg string) {
			_ = writeJSON(wsReply{ID: id, Error: &APIError{Code: code, Message: msg}})
		}

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				fail("", "bad_request", "invalid JSON")
				continue
			}

			if m.Action == "transform" {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				out, err := deps.Geometry.TransformWKT(ctx, m.WKT, m.Source, m.Target)
				cancel()
				if err != nil {
					fail(m.ID, errorCode(err), err.Error())
					continue
				}
				_ = writeJSON(wsReply{ID: m.ID, Result: out})
				continue
			}

			if m.Action != "subscribe" && m.Action != "unsubscribe" {
				fail(m.ID, "bad_request", "unknown action: "+m.Action)
				continue
			}
			subject, ok := channelSubject(m)
			if !ok {
				fail(m.ID, "bad_request", "unknown channel: "+m.Channel)
				continue
			}

			switch m.Action {
			case "subscribe":
				if deps.NATS == nil {
					fail(m.ID, "unavailable", "event relay not configured")
					continue
				}
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := deps.NATS.Subscribe(subject, func(msg *nats.Msg) {
					payload, err := relayPayload(msg.Subject, msg.Data)
					if err != nil {
						logger.Warn("ws relay decode", "subject", msg.Subject, "error", err)
						return
					}
					_ = writeJSON(payload)
				})
				if err != nil {
					fail(m.ID, "unavailable", "subscribe failed: "+err.Error())
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				s, exists := subs[subject]
				if !exists {
					fail(m.ID, "bad_request", "not subscribed to "+subject)
					continue
				}
				_ = s.Unsubscribe()
				delete(subs, subject)
				_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		logger.Info("ws client disconnected")
	}
}
