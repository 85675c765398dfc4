package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrListen indicates the local callback listener could not serve the
// redirect. Callers fall back to manual URL entry.
var ErrListen = errors.New("callback listener failed")

const callbackResponse = "HTTP/1.1 200 OK\r\n" +
	"Content-Type: text/html\r\n" +
	"\r\n" +
	"<body style='font-family: sans-serif; display: flex; align-items: center; height: 100vh;'>" +
	"<h1 style='margin: auto;'>You can close this page now.</h1>" +
	"</body>"

// CallbackReceiver captures a single OAuth redirect on a local port.
type CallbackReceiver struct {
	port   int
	logger *zap.Logger
}

func NewCallbackReceiver(port int, logger *zap.Logger) *CallbackReceiver {
	return &CallbackReceiver{
		port:   port,
		logger: logger,
	}
}

// ListenOnce serves exactly one request: it accepts a single connection,
// reads the request line, answers with a static acknowledgement page, and
// returns the reconstructed redirect URL. The listener is torn down before
// returning, regardless of outcome. Cancelling ctx closes the listener and
// unblocks the accept.
func (r *CallbackReceiver) ListenOnce(ctx context.Context) (string, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("localhost:%d", r.port))
	if err != nil {
		return "", fmt.Errorf("binding port %d (%v): %w", r.port, err, ErrListen)
	}
	defer listener.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var target string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		var err error
		target, err = serveOne(listener)
		return err
	})

	g.Go(func() error {
		// Unblocks the accept when the serving goroutine finishes or the
		// caller gives up.
		<-gctx.Done()
		listener.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("waiting for callback (%v): %w", ctxErr, ErrListen)
		}
		return "", fmt.Errorf("%v: %w", err, ErrListen)
	}

	r.logger.Debug("Captured redirect on callback listener",
		zap.Int("port", r.port),
		zap.String("target", target))

	return fmt.Sprintf("http://localhost:%d%s", r.port, target), nil
}

// serveOne handles the one connection this receiver exists for and
// extracts the request target from its request line.
func serveOne(listener net.Listener) (string, error) {
	conn, err := listener.Accept()
	if err != nil {
		return "", fmt.Errorf("accepting connection: %w", err)
	}
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading request line: %w", err)
	}

	// Request line looks like "GET /callback?code=... HTTP/1.1".
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", fmt.Errorf("malformed request line %q", strings.TrimSpace(line))
	}

	if _, err := conn.Write([]byte(callbackResponse)); err != nil {
		return "", fmt.Errorf("writing response: %w", err)
	}

	return fields[1], nil
}
