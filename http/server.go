package http

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/R366Y/async-http-server/filesystem"
)

// Server accepts TCP connections and services exactly one GET request
// per connection before closing it. There is no keep-alive and no
// shared mutable state between connections; the resolver root is the
// only shared resource and it is read-only.
type Server struct {
	Name         string
	Resolver     *filesystem.Resolver
	ConnDeadline time.Duration

	log    *slog.Logger
	tracer trace.Tracer

	connsAccepted  metric.Int64Counter
	responsesTotal metric.Int64Counter
}

func NewServer(name string, resolver *filesystem.Resolver, logger *slog.Logger) *Server {
	meter := otel.Meter(name)

	connsAccepted, err := meter.Int64Counter("server.connections.accepted",
		metric.WithDescription("Number of accepted TCP connections"))
	if err != nil {
		logger.Error("creating connections counter failed", "error", err)
	}
	responsesTotal, err := meter.Int64Counter("server.responses",
		metric.WithDescription("Number of responses sent, by status code"))
	if err != nil {
		logger.Error("creating responses counter failed", "error", err)
	}

	return &Server{
		Name:         name,
		Resolver:     resolver,
		ConnDeadline: DefaultConnDeadline,

		log:    logger,
		tracer: otel.Tracer(name),

		connsAccepted:  connsAccepted,
		responsesTotal: responsesTotal,
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.log.Info("server listening", "addr", listener.Addr().String())
	return s.Serve(ctx, listener)
}

// Serve runs the accept loop until ctx is cancelled. Each accepted
// connection is handled on its own goroutine; the loop never waits on a
// handler.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error("accepting connection failed", "error", err)
			continue
		}

		s.connsAccepted.Add(ctx, 1)
		s.log.Info("accepted connection", "peer", conn.RemoteAddr().String())

		go s.ServeConn(conn)
	}
}

// ServeConn drives one connection through its states: read, parse,
// route, respond, close. The whole sequence runs under a single
// deadline measured from here; on expiry the connection is abandoned
// without a response.
func (s *Server) ServeConn(conn net.Conn) {
	defer conn.Close()

	connID := uuid.NewString()
	log := s.log.With("conn_id", connID, "peer", conn.RemoteAddr().String())

	ctx, span := s.tracer.Start(context.Background(), "handle_connection",
		trace.WithAttributes(attribute.String("conn.id", connID)))
	defer span.End()

	if err := conn.SetDeadline(time.Now().Add(s.ConnDeadline)); err != nil {
		log.Error("setting connection deadline failed", "error", err)
		return
	}

	buf := make([]byte, MaxRequestSize)
	n, err := conn.Read(buf)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
			log.Warn("connection deadline exceeded while reading")
		case errors.Is(err, io.EOF):
			// Peer closed without sending anything; no response owed.
		default:
			log.Error("socket read failed", "error", err)
		}
		return
	}
	if n == 0 {
		return
	}

	req, err := ParseRequest(buf[:n])

	var res *Response
	switch {
	case errors.Is(err, ErrIncompleteRequest):
		log.Warn("incomplete request")
		res = NewResponse(StatusBadRequest).WithText("Incomplete request received")
	case err != nil:
		log.Warn("malformed request", "error", err)
		res = NewResponse(StatusBadRequest).WithText("Malformed HTTP request")
	case req.Method != MethodGet:
		log.Warn("method not allowed", "method", req.Method)
		res = NewResponse(StatusMethodNotAllowed)
	default:
		log.Info("handling request", "method", req.Method, "path", req.Path)
		span.SetAttributes(attribute.String("http.path", req.Path))
		res = s.handleGet(req.Path)
	}

	span.SetAttributes(attribute.Int("http.status", int(res.Status)))
	s.responsesTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.Int("http.status", int(res.Status))))

	bw := bufio.NewWriterSize(conn, DefaultWriteBufferSize)
	if err := res.Write(bw); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			log.Warn("connection deadline exceeded while writing")
		} else {
			log.Error("socket write failed", "error", err)
		}
	}
}

func (s *Server) handleGet(path string) *Response {
	decision := Route(path)

	if decision.Kind == RouteFile {
		return s.serveFile(path, decision.FilePath)
	}
	return NewResponse(decision.Status).WithHTML(decision.Body)
}

func (s *Server) serveFile(urlPath, rel string) *Response {
	target, err := s.Resolver.Resolve(rel)
	switch {
	case errors.Is(err, filesystem.ErrForbidden):
		return NewResponse(StatusForbidden).WithHTML(forbiddenPage)
	case errors.Is(err, filesystem.ErrMissing):
		return NewResponse(StatusNotFound).WithHTML(notFoundPage)
	case err != nil:
		s.log.Error("resolving file target failed", "path", rel, "error", err)
		return NewResponse(StatusInternalServerError).WithHTML(internalErrorPage)
	}

	if target.Kind == filesystem.TargetDir {
		atRoot := rel == "" || rel == "/"
		body := RenderListing(urlPath, target.Entries, atRoot)
		return NewResponse(StatusOK).WithBytes(body, "text/html")
	}

	return NewResponse(StatusOK).WithBytes(target.Content, target.ContentType)
}
