package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DevnetEndpoint = "https://api.devnet.solana.com"

	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int64
	Message string
}

func (e *RPCError) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

// RPCClient is a Ledger backed by a Solana JSON-RPC endpoint.
type RPCClient struct {
	endpoint     string
	httpClient   *http.Client
	commitment   string
	pollInterval time.Duration
	nextID       atomic.Uint64
}

type RPCOption func(*RPCClient)

func WithHTTPClient(c *http.Client) RPCOption {
	return func(r *RPCClient) { r.httpClient = c }
}

func WithCommitment(level string) RPCOption {
	return func(r *RPCClient) { r.commitment = NormalizeCommitment(level) }
}

// NormalizeCommitment maps a configured commitment level onto one the node
// understands. Empty or unknown levels mean confirmed.
func NormalizeCommitment(level string) string {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
		return l
	default:
		return CommitmentConfirmed
	}
}

func WithPollInterval(d time.Duration) RPCOption {
	return func(r *RPCClient) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func NewRPCClient(endpoint string, opts ...RPCOption) *RPCClient {
	c := &RPCClient{
		endpoint:     strings.TrimRight(endpoint, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		commitment:   CommitmentConfirmed,
		pollInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RPCClient) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      c.nextID.Add(1),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: encode request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: create request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%s: returned status %d", method, resp.StatusCode)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%s: malformed response", method)
	}
	if e := gjson.GetBytes(raw, "error"); e.Exists() && e.Type != gjson.Null {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, &RPCError{
			Code:    e.Get("code").Int(),
			Message: e.Get("message").String(),
		})
	}
	result := gjson.GetBytes(raw, "result")
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("%s: response has no result", method)
	}
	return result, nil
}

func (c *RPCClient) RecentCheckpoint(ctx context.Context) (Checkpoint, error) {
	res, err := c.call(ctx, "getLatestBlockhash", map[string]any{"commitment": c.commitment})
	if err != nil {
		return Checkpoint{}, err
	}
	hash, err := ParseHash(res.Get("value.blockhash").String())
	if err != nil {
		return Checkpoint{}, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	return Checkpoint{
		Blockhash:            hash,
		LastValidBlockHeight: res.Get("value.lastValidBlockHeight").Uint(),
	}, nil
}

func (c *RPCClient) Balance(ctx context.Context, account PublicKey) (uint64, error) {
	res, err := c.call(ctx, "getBalance", account.String(), map[string]any{"commitment": c.commitment})
	if err != nil {
		return 0, err
	}
	v := res.Get("value")
	if !v.Exists() {
		return 0, fmt.Errorf("getBalance: response has no value")
	}
	return v.Uint(), nil
}

func (c *RPCClient) Submit(ctx context.Context, raw []byte) (Signature, error) {
	res, err := c.call(ctx, "sendTransaction",
		base64.StdEncoding.EncodeToString(raw),
		map[string]any{
			"encoding":            "base64",
			"skipPreflight":       false,
			"preflightCommitment": c.commitment,
		})
	if err != nil {
		return Signature{}, err
	}
	sig, err := ParseSignature(res.String())
	if err != nil {
		return Signature{}, fmt.Errorf("sendTransaction: %w", err)
	}
	return sig, nil
}

func (c *RPCClient) blockHeight(ctx context.Context) (uint64, error) {
	res, err := c.call(ctx, "getBlockHeight", map[string]any{"commitment": c.commitment})
	if err != nil {
		return 0, err
	}
	return res.Uint(), nil
}

// Confirm polls getSignatureStatuses until the transaction reaches the
// client's commitment, reports an execution error, or the blockhash expires.
func (c *RPCClient) Confirm(ctx context.Context, sig Signature, cp Checkpoint) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		done, err := c.checkStatus(ctx, sig)
		if err != nil || done {
			return err
		}
		if cp.LastValidBlockHeight > 0 {
			height, err := c.blockHeight(ctx)
			if err != nil {
				return err
			}
			if height > cp.LastValidBlockHeight {
				return fmt.Errorf("%w: blockhash expired at height %d", ErrNotConfirmed, height)
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrNotConfirmed, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *RPCClient) checkStatus(ctx context.Context, sig Signature) (bool, error) {
	res, err := c.call(ctx, "getSignatureStatuses",
		[]string{sig.String()},
		map[string]any{"searchTransactionHistory": true})
	if err != nil {
		return false, err
	}
	status := res.Get("value.0")
	if !status.Exists() || status.Type == gjson.Null {
		return false, nil
	}
	if e := status.Get("err"); e.Exists() && e.Type != gjson.Null {
		return false, fmt.Errorf("%w: %s", ErrTransactionFailed, e.Raw)
	}
	return reached(status.Get("confirmationStatus").String(), c.commitment), nil
}

func reached(status, want string) bool {
	rank := map[string]int{
		CommitmentProcessed: 1,
		CommitmentConfirmed: 2,
		CommitmentFinalized: 3,
	}
	return rank[status] > 0 && rank[status] >= rank[want]
}
