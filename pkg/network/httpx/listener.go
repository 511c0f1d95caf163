package httpx

import (
	"errors"
	"net"
	"os"
	"runtime"
	"strconv"
	"syscall"

	"github.com/slidecast/slidecast/pkg/logger"
)

const maxPortRollAttempts = 42
const RollPorts = true

type Listener struct {
	net.Listener
}

func NewListener(address string, rollPorts bool, log *logger.Logger) (*Listener, error) {
	ls, err := net.Listen("tcp4", address)
	if err != nil {
		if rollPorts && isErrorAddressAlreadyInUse(err) {
			host, portStr, e := net.SplitHostPort(address)
			if e != nil {
				return nil, err
			}
			port, _ := strconv.Atoi(portStr)
			for i := port + 1; i < port+maxPortRollAttempts; i++ {
				log.Debug().Msgf("port %v is busy, rolling to %v", port, i)
				ls, err = net.Listen("tcp4", net.JoinHostPort(host, strconv.Itoa(i)))
				if err == nil {
					return &Listener{ls}, nil
				}
			}
		}
		return nil, err
	}
	return &Listener{ls}, nil
}

func isErrorAddressAlreadyInUse(err error) bool {
	var eOsSyscall *os.SyscallError
	if !errors.As(err, &eOsSyscall) {
		return false
	}
	var errErrno syscall.Errno
	if !errors.As(eOsSyscall, &errErrno) {
		return false
	}
	if errErrno == syscall.EADDRINUSE {
		return true
	}
	const WSAEADDRINUSE = 10048
	if runtime.GOOS == "windows" && errErrno == WSAEADDRINUSE {
		return true
	}
	return false
}
