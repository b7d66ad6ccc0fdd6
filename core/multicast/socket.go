package multicast

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// listenAddr renders an interface IP for use in a "host:port" dial string,
// treating a nil or unspecified address as "let the system choose".
func listenAddr(ip net.IP) string {
	if ip == nil || ip.IsUnspecified() {
		return "0.0.0.0"
	}
	return ip.String()
}

// interfaceFor resolves the network interface that owns ip. A nil or
// unspecified ip resolves to nil, meaning "let ipv4.PacketConn.JoinGroup
// pick the default interface" — the same "0.0.0.0 means let the system
// choose" rule the listen address follows.
func interfaceFor(ip net.IP) (*net.Interface, error) {
	if ip == nil || ip.IsUnspecified() {
		return nil, nil
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if ok && ipnet.IP.Equal(ip) {
				return &ifaces[i], nil
			}
		}
	}
	return nil, &net.AddrError{Err: "no local interface with address", Addr: ip.String()}
}

// extractFD pulls the raw file descriptor out of conn so the reactor can
// register it directly, bypassing the standard library's own netpoller
// for all subsequent reads.
func extractFD(conn *net.UDPConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	ctrlErr := raw.Control(func(descriptor uintptr) {
		fd = int(descriptor)
	})
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}

// recvfrom issues one non-blocking receive directly against fd, the raw
// counterpart of the async_receive_from completion the distilled spec
// describes. syscall.EAGAIN/EWOULDBLOCK signal a spurious readiness
// notification rather than a communication error.
func recvfrom(fd int, buf []byte) (n int, from syscall.Sockaddr, err error) {
	return syscall.Recvfrom(fd, buf, 0)
}

// socketReadable queries the OS-level count of bytes waiting to be read on
// fd, the FIONREAD half of bytesReadable().
func socketReadable(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCINQ) // TIOCINQ is the Linux alias for FIONREAD
}
