package wagateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TheRibeiro/ApiWp/internal/domain"
	"github.com/TheRibeiro/ApiWp/internal/whatsapp"
	"github.com/coder/websocket"
)

// fakeGateway speaks the gateway's side of the protocol: it records the
// init and send frames it receives and plays back a scripted lifecycle.
func fakeGateway(t *testing.T, received chan<- frame) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept failed: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")
		ctx := r.Context()

		readFrame := func() (frame, bool) {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return frame{}, false
			}
			var f frame
			if err := json.Unmarshal(data, &f); err != nil {
				t.Errorf("malformed client frame: %v", err)
				return frame{}, false
			}
			return f, true
		}
		write := func(f frame) {
			if err := writeFrame(ctx, conn, f); err != nil {
				t.Errorf("server write failed: %v", err)
			}
		}

		init, ok := readFrame()
		if !ok {
			return
		}
		received <- init

		write(frame{Type: "qr", QR: "pairing-code"})
		write(frame{Type: "open"})
		write(frame{Type: "creds", Creds: json.RawMessage(`{"registered":true}`), Keys: json.RawMessage(`{}`)})

		send, ok := readFrame()
		if !ok {
			return
		}
		received <- send

		write(frame{Type: "close", StatusCode: 428})

		// Hold the socket until the client hangs up.
		_, _, _ = conn.Read(ctx)
	}
}

func TestDialTranslatesGatewayFrames(t *testing.T) {
	received := make(chan frame, 4)
	srv := httptest.NewServer(fakeGateway(t, received))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	creds := domain.SessionCredentials{Creds: []byte(`{"noiseKey":"x"}`)}
	sess, err := New(url).Dial(ctx, creds)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer func() { _ = sess.Close() }()

	init := <-received
	if init.Type != "init" || init.Version != protocolVersion {
		t.Errorf("unexpected init frame: %+v", init)
	}
	if string(init.Creds) != `{"noiseKey":"x"}` {
		t.Errorf("stored credentials were not forwarded: %s", init.Creds)
	}

	expectEvent := func(kind whatsapp.EventKind) whatsapp.Event {
		t.Helper()
		select {
		case ev, ok := <-sess.Events():
			if !ok {
				t.Fatalf("event stream closed while waiting for %q", kind)
			}
			if ev.Kind != kind {
				t.Fatalf("expected %q event, got %+v", kind, ev)
			}
			return ev
		case <-ctx.Done():
			t.Fatalf("timed out waiting for %q event", kind)
		}
		return whatsapp.Event{}
	}

	if qr := expectEvent(whatsapp.EventQR); qr.QR != "pairing-code" {
		t.Errorf("unexpected qr payload: %+v", qr)
	}
	expectEvent(whatsapp.EventOpened)
	if ev := expectEvent(whatsapp.EventCredentials); string(ev.Credentials.Creds) != `{"registered":true}` {
		t.Errorf("unexpected credentials payload: %+v", ev)
	}

	if err := sess.SendText(ctx, "5511999999999@s.whatsapp.net", "oi"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	send := <-received
	if send.Type != "send" || send.JID != "5511999999999@s.whatsapp.net" || send.Text != "oi" {
		t.Errorf("unexpected send frame: %+v", send)
	}
	if send.ID == "" {
		t.Error("send frame is missing a correlation id")
	}

	if ev := expectEvent(whatsapp.EventClosed); ev.StatusCode != 428 {
		t.Errorf("expected close status 428, got %+v", ev)
	}

	// After the close frame the read loop ends and the stream drains.
	if _, ok := <-sess.Events(); ok {
		t.Error("expected the event stream to be closed after the close frame")
	}
}

func TestDialFailsWhenGatewayUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := New("ws://127.0.0.1:1/ws").Dial(ctx, domain.SessionCredentials{}); err == nil {
		t.Error("expected Dial to fail against an unreachable gateway")
	}
}
