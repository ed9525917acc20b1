package signer

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"donation-widget/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipient = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"

type fakeBackend struct {
	nonce   uint64
	gas     uint64
	price   *big.Int
	sendErr error
	sent    []*types.Transaction
	calls   []ethereum.CallMsg
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return f.price, nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.calls = append(f.calls, msg)
	return f.gas, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func newTestSigner(t *testing.T, backend Backend) *KeySigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	logger := zerolog.Nop()
	return NewKeySigner(models.Base, backend, key, &logger)
}

func TestKeySigner_SignsLegacyTransfer(t *testing.T) {
	backend := &fakeBackend{nonce: 7, gas: 21000, price: big.NewInt(1_000_000_000)}
	s := newTestSigner(t, backend)

	amount, _ := new(big.Int).SetString("500000000000000000", 10)
	hash, err := s.RequestTransfer(context.Background(), models.TransferRequest{
		From: s.Address().Hex(), To: recipient, Amount: amount, ChainID: models.Base,
	})
	require.NoError(t, err)

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, tx.Hash().Hex(), hash)
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.Equal(t, 0, amount.Cmp(tx.Value()))
	assert.Equal(t, common.HexToAddress(recipient), *tx.To())
	assert.Equal(t, big.NewInt(int64(models.Base)), tx.ChainId())

	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), sender)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, s.Address(), backend.calls[0].From)
}

func TestKeySigner_Rejections(t *testing.T) {
	backend := &fakeBackend{gas: 21000, price: big.NewInt(1)}
	s := newTestSigner(t, backend)

	tests := []struct {
		name    string
		req     models.TransferRequest
		wantErr error
	}{
		{
			name:    "other chain",
			req:     models.TransferRequest{From: s.Address().Hex(), To: recipient, Amount: big.NewInt(1), ChainID: models.Polygon},
			wantErr: models.ErrUnsupportedChain,
		},
		{
			name:    "foreign sender",
			req:     models.TransferRequest{From: recipient, To: recipient, Amount: big.NewInt(1), ChainID: models.Base},
			wantErr: models.ErrSignerRejected,
		},
		{
			name:    "bad recipient",
			req:     models.TransferRequest{From: s.Address().Hex(), To: "0x123", Amount: big.NewInt(1), ChainID: models.Base},
			wantErr: models.ErrTransferFailed,
		},
		{
			name:    "zero amount",
			req:     models.TransferRequest{From: s.Address().Hex(), To: recipient, Amount: big.NewInt(0), ChainID: models.Base},
			wantErr: models.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RequestTransfer(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, backend.sent)
}

func TestKeySigner_BroadcastFailure(t *testing.T) {
	backend := &fakeBackend{gas: 21000, price: big.NewInt(1), sendErr: errors.New("insufficient funds")}
	s := newTestSigner(t, backend)

	_, err := s.RequestTransfer(context.Background(), models.TransferRequest{
		From: s.Address().Hex(), To: recipient, Amount: big.NewInt(1), ChainID: models.Base,
	})
	assert.ErrorIs(t, err, models.ErrTransferFailed)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestParseKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	encoded := hexutil.Encode(crypto.FromECDSA(key))

	parsed, err := ParseKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(parsed.PublicKey))

	_, err = ParseKey("not-a-key")
	assert.Error(t, err)
}

func TestDialKeySigner_AgainstNode(t *testing.T) {
	var (
		mu  sync.Mutex
		raw []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var result interface{}
		switch req.Method {
		case "eth_getTransactionCount":
			result = "0x3"
		case "eth_gasPrice":
			result = "0x3b9aca00"
		case "eth_estimateGas":
			result = "0x5208"
		case "eth_sendRawTransaction":
			var data string
			_ = json.Unmarshal(req.Params[0], &data)
			mu.Lock()
			raw = append(raw, data)
			mu.Unlock()
			result = "0x" + "00"
		default:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]interface{}{"code": -32601, "message": "Method not found"},
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	defer server.Close()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	logger := zerolog.Nop()

	s, client, err := DialKeySigner(context.Background(), models.Base, server.URL, key, &logger)
	require.NoError(t, err)
	defer client.Close()

	hash, err := s.RequestTransfer(context.Background(), models.TransferRequest{
		From: s.Address().Hex(), To: recipient, Amount: big.NewInt(1000), ChainID: models.Base,
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, raw, 1)

	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(hexutil.MustDecode(raw[0])))
	assert.Equal(t, hash, tx.Hash().Hex())
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.Equal(t, int64(1000), tx.Value().Int64())
}

type stubSigner struct {
	hash string
	reqs []models.TransferRequest
}

func (s *stubSigner) RequestTransfer(_ context.Context, req models.TransferRequest) (string, error) {
	s.reqs = append(s.reqs, req)
	return s.hash, nil
}

func TestRouter(t *testing.T) {
	base := &stubSigner{hash: "0xbase"}
	celo := &stubSigner{hash: "0xcelo"}

	router := NewRouter()
	router.Register(models.Celo, celo)
	router.Register(models.Base, base)

	assert.Equal(t, []models.ChainID{models.Base, models.Celo}, router.Chains())

	hash, err := router.RequestTransfer(context.Background(), models.TransferRequest{ChainID: models.Celo, Amount: big.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "0xcelo", hash)
	assert.Len(t, celo.reqs, 1)
	assert.Empty(t, base.reqs)

	_, err = router.RequestTransfer(context.Background(), models.TransferRequest{ChainID: models.Ethereum})
	assert.ErrorIs(t, err, models.ErrUnsupportedChain)
}
