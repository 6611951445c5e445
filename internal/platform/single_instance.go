package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	forwardTimeout = 2 * time.Second
	maxMessageSize = 64 * 1024
)

// InstanceGuard holds the single-instance lock. The bound socket also
// receives messages, one per line, forwarded by later launches.
type InstanceGuard struct {
	listener net.Listener
	address  string
	once     sync.Once
	done     chan struct{}
}

// AcquireSingleInstance attempts to bind a deterministic localhost port.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := instanceAddress(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, address: address, done: make(chan struct{})}, nil
}

// Serve passes every forwarded message to handle until Release. It runs
// handle on the accepting goroutine, one message at a time.
func (guard *InstanceGuard) Serve(handle func(message string)) {
	if guard == nil || guard.listener == nil {
		return
	}
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			select {
			case <-guard.done:
				return
			default:
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return
		}
		guard.receive(conn, handle)
	}
}

func (guard *InstanceGuard) receive(conn net.Conn, handle func(string)) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(forwardTimeout))

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxMessageSize)
	for scanner.Scan() {
		if message := strings.TrimSpace(scanner.Text()); message != "" {
			handle(message)
		}
	}
	_, _ = conn.Write([]byte("ok\n"))
}

// Forward hands messages to the instance that holds the guard for appName.
func Forward(appName string, messages ...string) error {
	conn, err := net.DialTimeout("tcp", instanceAddress(appName), forwardTimeout)
	if err != nil {
		return fmt.Errorf("connect to running instance: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(forwardTimeout))

	for _, message := range messages {
		if strings.ContainsAny(message, "\r\n") {
			return fmt.Errorf("forward message: contains a line break")
		}
		if _, err := fmt.Fprintf(conn, "%s\n", message); err != nil {
			return fmt.Errorf("forward message: %w", err)
		}
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("await acknowledgement: %w", err)
	}
	if strings.TrimSpace(reply) != "ok" {
		return fmt.Errorf("unexpected acknowledgement %q", reply)
	}
	return nil
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	var err error
	guard.once.Do(func() {
		close(guard.done)
		err = guard.listener.Close()
	})
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func instanceAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
