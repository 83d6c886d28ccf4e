package main

import "net"

// localIP returns the address of the interface that would route to the
// public internet, which is the address LAN peers reach this host on.
// Nothing is actually sent; a UDP "connection" only picks a source
// address.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer func() { _ = conn.Close() }()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "127.0.0.1"
	}

	return addr.IP.String()
}
