package database

import (
	"context"
	"testing"
)

func TestOpen_RejectsMalformedDSN(t *testing.T) {
	if _, err := Open(context.Background(), "user:pass@tcp(unterminated"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.defaults()
	if o.MaxOpen != 15 || o.MaxIdle != 5 || o.MaxLifetime == 0 || o.PingTimeout == 0 {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}
