package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"stitchflow/internal/access"
	"stitchflow/internal/daemon"
	"stitchflow/internal/engine"
	"stitchflow/internal/logging"
	"stitchflow/internal/workflow"
)

// serviceName is the RPC namespace clients address methods under.
const serviceName = "Stitchflow"

// Server exposes daemon operations over a unix socket using JSON-RPC.
type Server struct {
	ctx        context.Context
	socketPath string
	logger     *slog.Logger
	listener   net.Listener
	rpcServer  *rpc.Server

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type service struct {
	ctx    context.Context
	daemon *daemon.Daemon
	engine *engine.Engine
}

// NewServer creates a JSON-RPC server listening on the given unix socket.
// Any stale socket file is removed before binding.
func NewServer(ctx context.Context, socketPath string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires a daemon")
	}
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", socketPath, err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{ctx: ctx, daemon: d, engine: d.Engine()}
	if err := rpcServer.RegisterName(serviceName, svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		ctx:        ctx,
		socketPath: socketPath,
		logger:     logging.NewComponentLogger(logger, "ipc"),
		listener:   listener,
		rpcServer:  rpcServer,
	}, nil
}

// SocketPath returns the path the server is bound to.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if strings.Contains(err.Error(), "use of closed network connection") {
				return nil
			}
			return fmt.Errorf("accept connection: %w", err)
		}

		s.wg.Add(1)
		go func(conn net.Conn) {
			defer s.wg.Done()
			defer conn.Close()
			s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
		}(conn)
	}
}

// Close stops accepting connections, waits for in-flight requests, and
// removes the socket file.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.listener.Close()
	s.wg.Wait()
	if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = removeErr
	}
	s.logger.Info("ipc server closed", logging.String("socket", s.socketPath))
	return err
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status, err := s.daemon.Status(s.ctx)
	if err != nil {
		return err
	}
	*resp = StatusResponse{
		Running:            status.Running,
		DBPath:             status.DBPath,
		LockPath:           status.LockFilePath,
		TotalWorkflows:     status.Health.TotalWorkflows,
		ActiveWorkflows:    status.Health.ActiveWorkflows,
		CompletedWorkflows: status.Health.CompletedWorkflows,
		CancelledWorkflows: status.Health.CancelledWorkflows,
		TotalCards:         status.Health.TotalCards,
		BlockedCards:       status.Health.BlockedCards,
	}
	return nil
}

func (s *service) WorkflowCreate(req WorkflowCreateRequest, resp *WorkflowCreateResponse) error {
	wf, err := s.engine.CreateWorkflow(s.ctx, engine.CreateRequest{
		SampleRequestID:     req.SampleRequestID,
		WorkflowName:        req.WorkflowName,
		Priority:            req.Priority,
		CreatedBy:           req.CreatedBy,
		DueDate:             req.DueDate,
		Designer:            req.Designer,
		Programmer:          req.Programmer,
		SupervisorKnitting:  req.SupervisorKnitting,
		SupervisorFinishing: req.SupervisorFinishing,
	})
	if err != nil {
		return err
	}
	resp.Workflow = fromWorkflow(wf)
	return nil
}

func (s *service) WorkflowShow(req WorkflowShowRequest, resp *WorkflowShowResponse) error {
	wf, err := s.engine.GetWorkflow(s.ctx, req.ID)
	if err != nil {
		return err
	}
	cards, err := s.engine.GetWorkflowCards(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Workflow = fromWorkflow(wf)
	resp.Cards = fromCards(cards)
	return nil
}

func (s *service) WorkflowList(req WorkflowListRequest, resp *WorkflowListResponse) error {
	statuses := make([]workflow.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		status, ok := workflow.ParseStatus(raw)
		if !ok {
			return fmt.Errorf("unknown workflow status %q", raw)
		}
		statuses = append(statuses, status)
	}
	workflows, err := s.engine.ListWorkflows(s.ctx, statuses...)
	if err != nil {
		return err
	}
	resp.Workflows = make([]Workflow, 0, len(workflows))
	for _, wf := range workflows {
		resp.Workflows = append(resp.Workflows, fromWorkflow(wf))
	}
	return nil
}

func (s *service) WorkflowCancel(req WorkflowCancelRequest, resp *WorkflowCancelResponse) error {
	wf, err := s.engine.CancelWorkflow(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Workflow = fromWorkflow(wf)
	return nil
}

func (s *service) CardUpdate(req CardUpdateRequest, resp *CardUpdateResponse) error {
	target, ok := workflow.ParseCardStatus(req.Target)
	if !ok {
		return fmt.Errorf("unknown card status %q", req.Target)
	}
	user := &access.User{
		ID:          req.User.ID,
		Username:    req.User.Username,
		Role:        access.Role(req.User.Role),
		Permissions: req.User.Permissions,
	}
	card, err := s.engine.UpdateCardStatus(s.ctx, user, req.CardID, target, req.Reason)
	if err != nil {
		return err
	}
	resp.Card = fromCard(card)
	return nil
}

func (s *service) CardValidate(req CardValidateRequest, resp *CardValidateResponse) error {
	target, ok := workflow.ParseCardStatus(req.Target)
	if !ok {
		return fmt.Errorf("unknown card status %q", req.Target)
	}
	verdict, err := s.engine.ValidateStageSequence(s.ctx, req.CardID, target)
	if err != nil {
		return err
	}
	resp.IsValid = verdict.IsValid
	resp.Error = verdict.Error
	return nil
}

func (s *service) CardComment(req CardCommentRequest, resp *CardCommentResponse) error {
	comment, err := s.engine.AddComment(s.ctx, req.CardID, req.Author, req.Body)
	if err != nil {
		return err
	}
	resp.Comment = Comment{
		ID:        comment.ID,
		CardID:    comment.CardID,
		Author:    comment.Author,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
	return nil
}

func (s *service) CardAttach(req CardAttachRequest, resp *CardAttachResponse) error {
	attachment, err := s.engine.AddAttachment(s.ctx, req.CardID, req.FileName, req.FilePath, req.UploadedBy)
	if err != nil {
		return err
	}
	resp.Attachment = Attachment{
		ID:         attachment.ID,
		CardID:     attachment.CardID,
		FileName:   attachment.FileName,
		FilePath:   attachment.FilePath,
		UploadedBy: attachment.UploadedBy,
		CreatedAt:  attachment.CreatedAt,
	}
	return nil
}

func (s *service) Board(req BoardRequest, resp *BoardResponse) error {
	view, err := s.engine.BoardView(s.ctx, req.WorkflowIDs...)
	if err != nil {
		return err
	}
	resp.Lanes = fromBoardView(view)
	return nil
}

func (s *service) Stats(_ StatsRequest, resp *StatsResponse) error {
	report, err := s.engine.Statistics(s.ctx)
	if err != nil {
		return err
	}
	*resp = fromReport(report)
	return nil
}

func (s *service) Health(_ StatusRequest, resp *StatusResponse) error {
	return s.Status(StatusRequest{}, resp)
}
