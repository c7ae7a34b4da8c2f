package ipc

import (
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

const dialTimeout = 2 * time.Second

// Client is a JSON-RPC client for the daemon's unix socket.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to the daemon socket. It fails fast when no daemon is
// listening so CLI commands can report a useful error.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s: %w", socketPath, err)
	}
	return &Client{rpc: jsonrpc.NewClient(conn)}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

func (c *Client) call(method string, req, resp any) error {
	return c.rpc.Call(serviceName+"."+method, req, resp)
}

// Start asks the daemon to run preflight and begin processing.
func (c *Client) Start() (StartResponse, error) {
	var resp StartResponse
	err := c.call("Start", StartRequest{}, &resp)
	return resp, err
}

// Stop asks the daemon to release its lock and stop.
func (c *Client) Stop() (StopResponse, error) {
	var resp StopResponse
	err := c.call("Stop", StopRequest{}, &resp)
	return resp, err
}

// Status fetches daemon runtime state and store health counts.
func (c *Client) Status() (StatusResponse, error) {
	var resp StatusResponse
	err := c.call("Status", StatusRequest{}, &resp)
	return resp, err
}

// WorkflowCreate instantiates a workflow from the configured template.
func (c *Client) WorkflowCreate(req WorkflowCreateRequest) (WorkflowCreateResponse, error) {
	var resp WorkflowCreateResponse
	err := c.call("WorkflowCreate", req, &resp)
	return resp, err
}

// WorkflowShow fetches a workflow with its cards.
func (c *Client) WorkflowShow(id int64) (WorkflowShowResponse, error) {
	var resp WorkflowShowResponse
	err := c.call("WorkflowShow", WorkflowShowRequest{ID: id}, &resp)
	return resp, err
}

// WorkflowList returns workflows, optionally filtered by status.
func (c *Client) WorkflowList(statuses ...string) (WorkflowListResponse, error) {
	var resp WorkflowListResponse
	err := c.call("WorkflowList", WorkflowListRequest{Statuses: statuses}, &resp)
	return resp, err
}

// WorkflowCancel cancels an active workflow.
func (c *Client) WorkflowCancel(id int64) (WorkflowCancelResponse, error) {
	var resp WorkflowCancelResponse
	err := c.call("WorkflowCancel", WorkflowCancelRequest{ID: id}, &resp)
	return resp, err
}

// CardUpdate transitions a card on behalf of a user.
func (c *Client) CardUpdate(req CardUpdateRequest) (CardUpdateResponse, error) {
	var resp CardUpdateResponse
	err := c.call("CardUpdate", req, &resp)
	return resp, err
}

// CardValidate dry-runs a card transition.
func (c *Client) CardValidate(cardID int64, target string) (CardValidateResponse, error) {
	var resp CardValidateResponse
	err := c.call("CardValidate", CardValidateRequest{CardID: cardID, Target: target}, &resp)
	return resp, err
}

// CardComment appends a comment to a card.
func (c *Client) CardComment(req CardCommentRequest) (CardCommentResponse, error) {
	var resp CardCommentResponse
	err := c.call("CardComment", req, &resp)
	return resp, err
}

// CardAttach records a file reference against a card.
func (c *Client) CardAttach(req CardAttachRequest) (CardAttachResponse, error) {
	var resp CardAttachResponse
	err := c.call("CardAttach", req, &resp)
	return resp, err
}

// Board fetches the grouped board view.
func (c *Client) Board(workflowIDs ...int64) (BoardResponse, error) {
	var resp BoardResponse
	err := c.call("Board", BoardRequest{WorkflowIDs: workflowIDs}, &resp)
	return resp, err
}

// Stats fetches the aggregate statistics report.
func (c *Client) Stats() (StatsResponse, error) {
	var resp StatsResponse
	err := c.call("Stats", StatsRequest{}, &resp)
	return resp, err
}

// Health fetches the store health counts.
func (c *Client) Health() (StatusResponse, error) {
	var resp StatusResponse
	err := c.call("Health", StatusRequest{}, &resp)
	return resp, err
}
