package transport

import "os"

// NodeIPC returns the stream used when the server is spawned by the VS Code
// extension host with --node-ipc: the parent writes to the child's fd 3 and
// reads from its stdout.
func NodeIPC() Stream {
	return &ipcTransport{reader: os.NewFile(3, "node-ipc-in"), writer: os.Stdout}
}

type ipcTransport struct {
	reader *os.File
	writer *os.File
}

func (t *ipcTransport) Read(p []byte) (int, error)  { return t.reader.Read(p) }
func (t *ipcTransport) Write(p []byte) (int, error) { return t.writer.Write(p) }
func (t *ipcTransport) Close() error                { return t.reader.Close() }
