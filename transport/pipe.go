package transport

import "net"

// ListenPipe listens on a named pipe. Outside Windows this is a Unix domain
// socket, which is what VS Code passes via --pipe.
func ListenPipe(name string) (Stream, error) {
	return ListenSocket(name)
}

// DialPipe connects to an existing named pipe / Unix domain socket.
func DialPipe(name string) (Stream, error) {
	conn, err := net.Dial("unix", name)
	if err != nil {
		return nil, err
	}
	return &socketTransport{conn: conn}, nil
}
