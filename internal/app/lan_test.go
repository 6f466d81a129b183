package app

import (
	"errors"
	"net"
	"net/netip"
	"testing"
)

type fakeIface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (f fakeIface) Flags() net.Flags {
	return f.flags
}

func (f fakeIface) Addrs() ([]net.Addr, error) {
	return f.addrs, f.err
}

type fakeLister struct {
	ifaces []iface
	err    error
}

func (f fakeLister) Interfaces() ([]iface, error) {
	return f.ifaces, f.err
}

func v4(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

func up(addrs ...net.Addr) fakeIface {
	return fakeIface{flags: net.FlagUp, addrs: addrs}
}

func TestLanAddress(t *testing.T) {
	errDown := errors.New("down")
	tests := []struct {
		name   string
		lister fakeLister
		want   string
	}{
		{"listing fails", fakeLister{err: errDown}, "localhost"},
		{"addrs fail", fakeLister{ifaces: []iface{fakeIface{flags: net.FlagUp, err: errDown}}}, "localhost"},
		{"private wins over public", fakeLister{ifaces: []iface{up(v4("8.8.8.8"), v4("10.0.0.5"))}}, "10.0.0.5"},
		{"private on later interface", fakeLister{ifaces: []iface{up(v4("8.8.8.8")), up(v4("192.168.1.20"))}}, "192.168.1.20"},
		{"public fallback", fakeLister{ifaces: []iface{up(v4("8.8.8.8"))}}, "8.8.8.8"},
		{"172.16/12 is private", fakeLister{ifaces: []iface{up(v4("8.8.4.4"), v4("172.20.1.1"))}}, "172.20.1.1"},
		{"172.32 is public", fakeLister{ifaces: []iface{up(v4("172.32.0.1"), v4("172.15.0.1"))}}, "172.32.0.1"},
		{"IPAddr form", fakeLister{ifaces: []iface{up(&net.IPAddr{IP: net.ParseIP("192.168.1.100")})}}, "192.168.1.100"},
		{"loopback address skipped", fakeLister{ifaces: []iface{up(v4("127.0.0.1"), v4("192.168.1.50"))}}, "192.168.1.50"},
		{
			"down and loopback interfaces skipped",
			fakeLister{ifaces: []iface{
				fakeIface{addrs: []net.Addr{v4("192.168.1.2")}},
				fakeIface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{v4("192.168.1.3")}},
			}},
			"localhost",
		},
		{
			"IPv6 ignored",
			fakeLister{ifaces: []iface{up(&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)})}},
			"localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lanAddress(tt.lister); got != tt.want {
				t.Errorf("lanAddress() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLanAddress_System(t *testing.T) {
	got := lanAddress(systemInterfaces{})
	if got == "localhost" {
		return
	}
	ip, err := netip.ParseAddr(got)
	if err != nil || !ip.Is4() {
		t.Errorf("expected IPv4 address or localhost, got %s", got)
	}
}
