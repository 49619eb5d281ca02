package tcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/registry"
	"github.com/coapkit/coapkit/router"
	"github.com/coapkit/coapkit/wire"
)

func newTestServer(t *testing.T) (*Server, net.Conn) {
	t.Helper()
	rt := router.New()
	err := rt.Register(registry.MethodGET, "/ping", func(in *message.Inbound) (*message.Outbound, error) {
		return message.NewOutbound(registry.Content), nil
	}, router.LinkMeta{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	srv, err := New("127.0.0.1:0", rt, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = srv.Serve(ctx) }()
	t.Cleanup(cancel)

	conn, err := net.Dial("tcp", srv.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	return srv, conn
}

func sendCSM(t *testing.T, conn net.Conn) *wire.Message {
	t.Helper()
	csm := &wire.Message{Version: 1, Code: registry.SignalingCSM, Transport: wire.TCP}
	data, err := wire.EncodeTCP(csm)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatal(err)
	}
	resp, err := wire.DecodeTCP(conn)
	if err != nil {
		t.Fatalf("no CSM response: %v", err)
	}
	return resp
}

func TestHandshakeRespondsWithServerCSM(t *testing.T) {
	_, conn := newTestServer(t)
	resp := sendCSM(t, conn)
	if resp.Code != registry.SignalingCSM {
		t.Fatalf("expected CSM response, got %d", resp.Code)
	}
	v, ok := resp.GetOption(registry.SignalingOptionMaxMessageSize)
	if !ok {
		t.Fatalf("expected Max-Message-Size option")
	}
	if wire.DecodeUint(v) != defaultMaxMessageSize {
		t.Fatalf("expected default max message size, got %d", wire.DecodeUint(v))
	}
}

func TestPingReceivesPong(t *testing.T) {
	_, conn := newTestServer(t)
	sendCSM(t, conn)

	ping := &wire.Message{Version: 1, Code: registry.SignalingPing, Token: []byte{0x5}, Transport: wire.TCP}
	data, _ := wire.EncodeTCP(ping)
	if _, err := conn.Write(data); err != nil {
		t.Fatal(err)
	}
	resp, err := wire.DecodeTCP(conn)
	if err != nil {
		t.Fatalf("no PONG received: %v", err)
	}
	if resp.Code != registry.SignalingPong {
		t.Fatalf("expected PONG, got %d", resp.Code)
	}
	if string(resp.Token) != string([]byte{0x5}) {
		t.Fatalf("expected echoed token")
	}
}

func TestRequestRoutesAfterHandshake(t *testing.T) {
	_, conn := newTestServer(t)
	sendCSM(t, conn)

	req := &wire.Message{Version: 1, Code: registry.MethodGET, Transport: wire.TCP}
	req.AddOption(registry.OptionURIPath, []byte("ping"))
	data, err := wire.EncodeTCP(req)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatal(err)
	}
	resp, err := wire.DecodeTCP(conn)
	if err != nil {
		t.Fatalf("no response: %v", err)
	}
	if resp.Code != uint32(registry.Content) {
		t.Fatalf("expected 2.05 content, got %d", resp.Code)
	}
}

func TestNonCSMFirstMessageClosesConnection(t *testing.T) {
	_, conn := newTestServer(t)
	req := &wire.Message{Version: 1, Code: registry.MethodGET, Transport: wire.TCP}
	req.AddOption(registry.OptionURIPath, []byte("ping"))
	data, _ := wire.EncodeTCP(req)
	conn.Write(data)

	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	if err == nil && n > 0 {
		t.Fatalf("expected connection to close without a response, got %d bytes", n)
	}
}
