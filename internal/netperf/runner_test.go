package netperf

import (
	"errors"
	"testing"
)

func TestInterfaceIPv4Loopback(t *testing.T) {
	ip, err := InterfaceIPv4("lo")
	if err != nil {
		t.Skipf("no loopback interface: %v", err)
	}
	if !ip.IsLoopback() {
		t.Fatalf("ip = %s, want loopback address", ip)
	}
}

func TestInterfaceIPv4Missing(t *testing.T) {
	if _, err := InterfaceIPv4("nperfd-no-such-iface"); !errors.Is(err, ErrInterface) {
		t.Fatalf("error = %v, want ErrInterface", err)
	}
}
