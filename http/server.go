/*
Copyright 2018 Iguazio Systems Ltd.

Licensed under the Apache License, Version 2.0 (the "License") with
an addition restriction as set forth herein. You may not use this
file except in compliance with the License. You may obtain a copy of
the License at http://www.apache.org/licenses/LICENSE-2.0.

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing
permissions and limitations under the License.

In addition, you may not use the software for any purposes that are
illegal under applicable law, and the grant of the foregoing license
under the Apache 2.0 license is conditioned upon your compliance with
such restriction.
*/

package http

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nuclio/logger"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/v3io/tabular"
	"github.com/v3io/tabular/transform"
)

// Possible states
const (
	ReadyState   = "ready"
	RunningState = "running"
	StoppedState = "stopped"
	ErrorState   = "error"
)

const (
	// MsgpackContentType is the content type of frame streams
	MsgpackContentType = "application/x-msgpack"
	// RequestIDHeader holds the request id in replies
	RequestIDHeader = "X-Request-Id"
	// ErrorKindHeader holds the error kind of failed requests
	ErrorKindHeader = "X-Error-Kind"
)

// Server is HTTP server exposing the engine transformations. Request bodies
// and replies are msgpack frame streams.
type Server struct {
	address string // listen address
	server  *fasthttp.Server
	routes  map[string]func(*fasthttp.RequestCtx, logger.Logger)

	config *tabular.Config
	engine *transform.Engine
	logger logger.Logger

	lock  sync.Mutex
	state string
	err   error
}

// NewServer creates a new server
func NewServer(config *tabular.Config, engine *transform.Engine, logger logger.Logger) (*Server, error) {
	var err error

	config.InitDefaults()
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "bad configuration")
	}

	if logger == nil {
		logger, err = tabular.NewLogger(config.Log.Level)
		if err != nil {
			return nil, errors.Wrap(err, "can't create logger")
		}
	}

	if engine == nil {
		return nil, errors.New("nil engine")
	}

	srv := &Server{
		address: config.HTTP.Address,
		config:  config,
		engine:  engine,
		logger:  logger.GetChild("http"),
		state:   ReadyState,
	}

	srv.initRoutes()
	srv.server = &fasthttp.Server{
		Handler:            srv.handler,
		MaxRequestBodySize: config.HTTP.MaxBodySize,
	}

	return srv, nil
}

// State returns the server state
func (s *Server) State() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// Err returns the error that stopped the server
func (s *Server) Err() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.err
}

func (s *Server) setState(state string, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.state = state
	if err != nil {
		s.err = err
	}
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return errors.Wrapf(err, "can't listen on %s", s.address)
	}

	return s.Serve(listener)
}

// Serve serves requests from listener in the background
func (s *Server) Serve(listener net.Listener) error {
	if state := s.State(); state != ReadyState {
		s.logger.ErrorWith("Start from bad state", "state", state)
		return fmt.Errorf("bad state - %s", state)
	}

	go func() {
		if err := s.server.Serve(listener); err != nil {
			s.logger.ErrorWith("Error running HTTP server", "error", err)
			s.setState(ErrorState, err)
		}
	}()

	s.setState(RunningState, nil)
	s.logger.InfoWith("Server started", "address", listener.Addr().String())
	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	if err := s.server.Shutdown(); err != nil {
		return errors.Wrap(err, "can't shutdown")
	}

	s.setState(StoppedState, nil)
	return nil
}

func (s *Server) handler(ctx *fasthttp.RequestCtx) {
	requestID := uuid.New().String()
	// ctx.Error resets the response headers, set the id last
	defer ctx.Response.Header.Set(RequestIDHeader, requestID)

	fn, ok := s.routes[string(ctx.Path())]
	if !ok {
		ctx.Error(fmt.Sprintf("unknown path - %q", string(ctx.Path())), http.StatusNotFound)
		return
	}

	start := time.Now()
	requestLogger := s.logger.GetChild(requestID)
	fn(ctx, requestLogger)
	requestLogger.DebugWith("Request done",
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"duration", time.Since(start).String())
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx, log logger.Logger) {
	status := map[string]interface{}{
		"state": s.State(),
	}

	s.replyJSON(ctx, log, status)
}

func (s *Server) handleConfig(ctx *fasthttp.RequestCtx, log logger.Logger) {
	s.replyJSON(ctx, log, s.config)
}

func (s *Server) handleTranspose(ctx *fasthttp.RequestCtx, log logger.Logger) {
	frames, ok := s.readFrames(ctx, log)
	if !ok {
		return
	}

	if len(frames) != 1 {
		s.replyError(ctx, log, errors.Errorf("expected one frame, got %d", len(frames)), http.StatusBadRequest)
		return
	}

	args := ctx.QueryArgs()
	columns := splitList(string(args.Peek("columns")))
	dest := string(args.Peek("dest"))
	log.InfoWith("Transpose request", "columns", columns, "dest", dest, "rows", frames[0].Len())

	out, err := s.engine.TransposeToJSON(frames[0], columns, dest)
	if err != nil {
		s.replyKindError(ctx, log, err)
		return
	}

	s.replyFrames(ctx, log, out)
}

func (s *Server) handlePartition(ctx *fasthttp.RequestCtx, log logger.Logger) {
	args := ctx.QueryArgs()
	size, err := args.GetUint("size")
	if err != nil {
		s.replyError(ctx, log, errors.Wrapf(tabular.ErrInvalidChunkSize, "bad size %q", args.Peek("size")), http.StatusBadRequest)
		return
	}

	frames, ok := s.readFrames(ctx, log)
	if !ok {
		return
	}

	if len(frames) != 1 {
		s.replyError(ctx, log, errors.Errorf("expected one frame, got %d", len(frames)), http.StatusBadRequest)
		return
	}

	log.InfoWith("Partition request", "size", size, "rows", frames[0].Len())
	chunks, err := s.engine.Partition(frames[0], size)
	if err != nil {
		s.replyKindError(ctx, log, err)
		return
	}

	s.replyFrames(ctx, log, chunks...)
}

func (s *Server) handleJoin(ctx *fasthttp.RequestCtx, log logger.Logger) {
	frames, ok := s.readFrames(ctx, log)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	keys := splitList(string(args.Peek("keys")))
	how := transform.ParseJoinHow(string(args.Peek("how")))
	log.InfoWith("Join request", "frames", len(frames), "keys", keys, "how", how.String())

	out, err := s.engine.Join(frames, keys, how)
	if err != nil {
		s.replyKindError(ctx, log, err)
		return
	}

	s.replyFrames(ctx, log, out)
}

func (s *Server) handleUnion(ctx *fasthttp.RequestCtx, log logger.Logger) {
	frames, ok := s.readFrames(ctx, log)
	if !ok {
		return
	}

	log.InfoWith("Union request", "frames", len(frames))
	out, err := s.engine.Union(frames)
	if err != nil {
		s.replyKindError(ctx, log, err)
		return
	}

	s.replyFrames(ctx, log, out)
}

func (s *Server) readFrames(ctx *fasthttp.RequestCtx, log logger.Logger) ([]tabular.Frame, bool) {
	if !ctx.IsPost() { // ctx.PostBody() blocks on GET
		ctx.Error("unsupported method", http.StatusMethodNotAllowed)
		return nil, false
	}

	// each real row costs at least a byte, so the body size bounds declared null rows
	decoder := tabular.NewDecoder(bytes.NewReader(ctx.PostBody())).WithMaxRows(s.config.HTTP.MaxBodySize)
	frames, err := decoder.DecodeAll()
	if err != nil {
		s.replyError(ctx, log, errors.Wrap(err, "can't decode frames"), http.StatusBadRequest)
		return nil, false
	}

	return frames, true
}

func (s *Server) replyFrames(ctx *fasthttp.RequestCtx, log logger.Logger, frames ...tabular.Frame) {
	ctx.Response.Header.SetContentType(MsgpackContentType)
	enc := tabular.NewEncoder(ctx)
	for i, frame := range frames {
		if err := enc.Encode(frame); err != nil {
			log.ErrorWith("Can't encode result", "frame", i, "error", err)
			ctx.ResetBody()
			s.replyError(ctx, log, err, http.StatusInternalServerError)
			return
		}
	}
}

func (s *Server) replyJSON(ctx *fasthttp.RequestCtx, log logger.Logger, reply interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(reply); err != nil {
		log.ErrorWith("Can't encode JSON", "error", err, "reply", reply)
		ctx.Error("can't encode JSON", http.StatusInternalServerError)
	}
}

func (s *Server) replyKindError(ctx *fasthttp.RequestCtx, log logger.Logger, err error) {
	s.replyError(ctx, log, err, statusCode(err))
}

func (s *Server) replyError(ctx *fasthttp.RequestCtx, log logger.Logger, err error, status int) {
	log.WarnWith("Request failed", "error", err.Error(), "status", status)
	ctx.Error(err.Error(), status)
	if kind := tabular.KindOf(err); kind != nil {
		ctx.Response.Header.Set(ErrorKindHeader, kind.Error())
	}
}

// statusCode maps error kinds to HTTP status codes
func statusCode(err error) int {
	switch tabular.KindOf(err) {
	case tabular.ErrColumnNotFound, tabular.ErrKeyColumnMissing:
		return http.StatusNotFound
	case tabular.ErrInvalidChunkSize,
		tabular.ErrEmptyInputList,
		tabular.ErrIncompatibleSchema,
		tabular.ErrRowCountMismatch,
		tabular.ErrDuplicateColumn,
		tabular.ErrEmptyTable:
		return http.StatusBadRequest
	case tabular.ErrSerialization:
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func (s *Server) initRoutes() {
	s.routes = map[string]func(*fasthttp.RequestCtx, logger.Logger){
		"/_/config":  s.handleConfig,
		"/_/status":  s.handleStatus,
		"/transpose": s.handleTranspose,
		"/partition": s.handlePartition,
		"/join":      s.handleJoin,
		"/union":     s.handleUnion,
	}
}
