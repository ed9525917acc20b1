package rpc

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"donation-widget/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fromAddr = "0x95222290DD7278Aa3Ddd389Cc1E1d165CC4BAfe5"
	toAddr   = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
)

var txHash = "0x" + strings.Repeat("ab", 32)

// mockNode is a JSON-RPC server answering from a method table
type mockNode struct {
	mu       sync.Mutex
	calls    []models.RPCRequest
	handlers map[string]func(params json.RawMessage) (interface{}, *models.RPCError)
	status   int
}

func (m *mockNode) Calls(method string) []models.RPCRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RPCRequest
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func setupTestClient(t *testing.T, node *mockNode) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		node.mu.Lock()
		node.calls = append(node.calls, models.RPCRequest{Method: req.Method})
		status := node.status
		node.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}

		response := models.RPCResponse{Jsonrpc: "2.0", ID: req.ID}
		handler, ok := node.handlers[req.Method]
		if !ok {
			response.Error = &models.RPCError{Code: -32601, Message: "Method not found"}
		} else {
			result, rpcErr := handler(req.Params)
			response.Error = rpcErr
			if rpcErr == nil {
				response.Result, _ = json.Marshal(result)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)

	logger := zerolog.Nop()
	return NewClient(models.Ethereum, server.URL, "testkey", 1000, 3, time.Millisecond, 5*time.Second, &logger)
}

func TestClient_GetBlockHead(t *testing.T) {
	node := &mockNode{handlers: map[string]func(json.RawMessage) (interface{}, *models.RPCError){
		"eth_blockNumber": func(json.RawMessage) (interface{}, *models.RPCError) { return "0x12d687", nil },
	}}
	client := setupTestClient(t, node)

	head, err := client.GetBlockHead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567), head)
	assert.Equal(t, models.Ethereum, client.GetChainID())
}

func TestClient_RemoteChainID(t *testing.T) {
	node := &mockNode{handlers: map[string]func(json.RawMessage) (interface{}, *models.RPCError){
		"eth_chainId": func(json.RawMessage) (interface{}, *models.RPCError) { return "0x2105", nil },
	}}
	client := setupTestClient(t, node)

	id, err := client.RemoteChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Base, id)
}

func TestClient_CallRetriesReads(t *testing.T) {
	node := &mockNode{status: http.StatusBadGateway}
	client := setupTestClient(t, node)

	_, err := client.GetBlockHead(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error: 502")
	assert.Len(t, node.Calls("eth_blockNumber"), 3)
}

func TestClient_CallError(t *testing.T) {
	node := &mockNode{handlers: map[string]func(json.RawMessage) (interface{}, *models.RPCError){}}
	client := setupTestClient(t, node)

	_, err := client.CallOnce(context.Background(), "eth_unknown", nil)
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, -32601, callErr.Code)
}

func TestCustomTransport_SetsHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":"0x1"}`))
	}))
	defer server.Close()

	logger := zerolog.Nop()
	client := NewClient(models.Ethereum, server.URL, "secret", 10, 1, 0, time.Second, &logger)
	_, err := client.CallOnce(context.Background(), "eth_chainId", nil)
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
}

func TestWalletSigner_RequestTransfer(t *testing.T) {
	var sent []models.SendTransactionArgs
	node := &mockNode{handlers: map[string]func(json.RawMessage) (interface{}, *models.RPCError){
		"eth_sendTransaction": func(params json.RawMessage) (interface{}, *models.RPCError) {
			var args []models.SendTransactionArgs
			if err := json.Unmarshal(params, &args); err != nil {
				return nil, &models.RPCError{Code: -32602, Message: err.Error()}
			}
			sent = append(sent, args...)
			return txHash, nil
		},
	}}
	signer := NewWalletSigner(setupTestClient(t, node))

	amount, _ := new(big.Int).SetString("333333333333333334", 10)
	hash, err := signer.RequestTransfer(context.Background(), models.TransferRequest{
		From: fromAddr, To: toAddr, Amount: amount, ChainID: models.Ethereum,
	})
	require.NoError(t, err)
	assert.Equal(t, txHash, hash)

	require.Len(t, sent, 1)
	assert.Equal(t, fromAddr, sent[0].From)
	assert.Equal(t, toAddr, sent[0].To)
	assert.Equal(t, "0x4a03ce68d215556", sent[0].Value)
}

func TestWalletSigner_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rpcErr  *models.RPCError
		result  interface{}
		wantErr error
	}{
		{name: "user rejected code", rpcErr: &models.RPCError{Code: 4001, Message: "User rejected the request."}, wantErr: models.ErrSignerRejected},
		{name: "denied message", rpcErr: &models.RPCError{Code: -32000, Message: "request denied by signer"}, wantErr: models.ErrSignerRejected},
		{name: "insufficient funds", rpcErr: &models.RPCError{Code: -32000, Message: "insufficient funds for gas * price + value"}, wantErr: models.ErrTransferFailed},
		{name: "malformed hash", result: "0x1234", wantErr: models.ErrTransferFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &mockNode{handlers: map[string]func(json.RawMessage) (interface{}, *models.RPCError){
				"eth_sendTransaction": func(json.RawMessage) (interface{}, *models.RPCError) { return tt.result, tt.rpcErr },
			}}
			signer := NewWalletSigner(setupTestClient(t, node))

			_, err := signer.RequestTransfer(context.Background(), models.TransferRequest{
				From: fromAddr, To: toAddr, Amount: big.NewInt(1), ChainID: models.Ethereum,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, node.Calls("eth_sendTransaction"), 1, "transfers are never retried")
		})
	}
}

func TestWalletSigner_NotRetriedOnHTTPFailure(t *testing.T) {
	node := &mockNode{status: http.StatusServiceUnavailable}
	signer := NewWalletSigner(setupTestClient(t, node))

	_, err := signer.RequestTransfer(context.Background(), models.TransferRequest{
		From: fromAddr, To: toAddr, Amount: big.NewInt(1), ChainID: models.Ethereum,
	})
	assert.ErrorIs(t, err, models.ErrTransferFailed)
	assert.Len(t, node.Calls("eth_sendTransaction"), 1)
}

func TestWalletSigner_RejectsOtherChain(t *testing.T) {
	node := &mockNode{}
	signer := NewWalletSigner(setupTestClient(t, node))

	_, err := signer.RequestTransfer(context.Background(), models.TransferRequest{
		From: fromAddr, To: toAddr, Amount: big.NewInt(1), ChainID: models.Polygon,
	})
	assert.ErrorIs(t, err, models.ErrUnsupportedChain)
	assert.Empty(t, node.Calls("eth_sendTransaction"))
}
