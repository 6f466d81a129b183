package app

import (
	"net"
	"net/netip"
)

// iface is the part of net.Interface used for address detection
type iface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type interfaceLister interface {
	Interfaces() ([]iface, error)
}

type netIface struct {
	net.Interface
}

func (n netIface) Flags() net.Flags {
	return n.Interface.Flags
}

// systemInterfaces lists the host's network interfaces
type systemInterfaces struct{}

func (systemInterfaces) Interfaces() ([]iface, error) {
	list, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]iface, len(list))
	for i := range list {
		out[i] = &netIface{list[i]}
	}
	return out, nil
}

// lanAddress returns the IPv4 address phones and other laptops on the
// network can reach the tracker at. Private addresses win over public ones;
// "localhost" is returned when no interface is usable.
func lanAddress(lister interfaceLister) string {
	ifaces, err := lister.Interfaces()
	if err != nil {
		return "localhost"
	}

	var public []netip.Addr
	for _, ifc := range ifaces {
		if ifc.Flags()&net.FlagUp == 0 || ifc.Flags()&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ip, ok := ipv4Of(a)
			if !ok || ip.IsLoopback() {
				continue
			}
			if ip.IsPrivate() {
				return ip.String()
			}
			public = append(public, ip)
		}
	}

	if len(public) > 0 {
		return public[0].String()
	}
	return "localhost"
}

func ipv4Of(a net.Addr) (netip.Addr, bool) {
	var raw net.IP
	switch v := a.(type) {
	case *net.IPNet:
		raw = v.IP
	case *net.IPAddr:
		raw = v.IP
	}
	ip, ok := netip.AddrFromSlice(raw)
	if !ok {
		return netip.Addr{}, false
	}
	ip = ip.Unmap()
	return ip, ip.Is4()
}
