package server

import (
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
)

// TestServerOverHTTP drives the mounted handlers through a real HTTP
// round trip, codec included.
func TestServerOverHTTP(t *testing.T) {
	srv := New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	codec := connect.WithCodec(jsonCodec{})

	create := connect.NewClient[CreateFromBufferRequest, CreateResponse](
		ts.Client(), ts.URL+ProcedureCreateFromBuffer, codec)
	display := connect.NewClient[DisplayRequest, DisplayResponse](
		ts.Client(), ts.URL+ProcedureDisplay, codec)
	del := connect.NewClient[DeleteRequest, DeleteResponse](
		ts.Client(), ts.URL+ProcedureDelete, codec)

	created, err := create.CallUnary(bg(), connectReq(&CreateFromBufferRequest{
		Buffer: &BufferMsg{Rows: 1, Cols: 1, Real: []float64{2.5}, Imag: []float64{1}},
	}))
	if err != nil {
		t.Fatalf("CreateFromBuffer over HTTP: %v", err)
	}

	shown, err := display.CallUnary(bg(), connectReq(&DisplayRequest{Handle: created.Msg.Handle.Id}))
	if err != nil {
		t.Fatalf("Display over HTTP: %v", err)
	}
	if shown.Msg.Text != "2.5 + 1i" {
		t.Errorf("Display = %q, want %q", shown.Msg.Text, "2.5 + 1i")
	}

	if _, err := del.CallUnary(bg(), connectReq(&DeleteRequest{Handle: created.Msg.Handle.Id})); err != nil {
		t.Fatalf("Delete over HTTP: %v", err)
	}
	_, err = display.CallUnary(bg(), connectReq(&DisplayRequest{Handle: created.Msg.Handle.Id}))
	wantCode(t, err, connect.CodeNotFound)
}
