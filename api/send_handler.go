package api

import (
	"errors"
	"io"
	"math/big"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seenimoa/sendwallet/internal/send"
	"github.com/seenimoa/sendwallet/pkg/models"
)

// sendSession is one open send screen. Calls on the same screen are
// serialized so amount edits and swaps apply in arrival order.
type sendSession struct {
	mu      sync.Mutex
	id      string
	vm      *send.ViewModel
	created time.Time
}

// SendResponse is the JSON form of a send screen.
type SendResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	send.View
}

func (ss *sendSession) response() SendResponse {
	return SendResponse{ID: ss.id, CreatedAt: ss.created, View: ss.vm.View()}
}

// sendRegistry holds the open send screens by id.
type sendRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*sendSession
}

func newSendRegistry() *sendRegistry {
	return &sendRegistry{sessions: make(map[string]*sendSession)}
}

func (r *sendRegistry) Add(vm *send.ViewModel) *sendSession {
	ss := &sendSession{id: uuid.NewString(), vm: vm, created: time.Now().UTC()}
	r.mu.Lock()
	r.sessions[ss.id] = ss
	r.mu.Unlock()
	return ss
}

func (r *sendRegistry) Get(id string) (*sendSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ss, ok := r.sessions[id]
	return ss, ok
}

func (r *sendRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *sendRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the open session ids, sorted.
func (r *sendRegistry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (s *Server) handleCreateSend(w http.ResponseWriter, r *http.Request) {
	if s.session == nil {
		writeError(w, http.StatusServiceUnavailable, "wallet session not configured")
		return
	}

	var req CreateSendRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transfer := s.session.NativeTransfer()
	if req.Token != nil {
		tt, msg := tokenTransfer(req.Token)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		transfer = tt
	}

	ss := s.sends.Add(s.session.NewSendViewModel(transfer))
	resp := ss.response()
	s.logger.Info("send screen opened",
		zap.String("id", ss.id),
		zap.String("symbol", transfer.Symbol()))
	s.broadcastSend(resp)

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: resp})
}

func tokenTransfer(t *TokenRequest) (models.TransferType, string) {
	if !common.IsHexAddress(t.Address) {
		return nil, "token.address must be a hex address"
	}
	symbol := strings.TrimSpace(t.Symbol)
	if symbol == "" {
		return nil, "token.symbol is required"
	}
	if t.Decimals < 0 || t.Decimals > 36 {
		return nil, "token.decimals must be between 0 and 36"
	}
	token := models.NewToken(common.HexToAddress(t.Address), symbol, t.Decimals)
	token.Info.Name = t.Name
	return token, ""
}

func (s *Server) handleGetSend(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookupSend(w, r)
	if !ok {
		return
	}
	ss.mu.Lock()
	resp := ss.response()
	ss.mu.Unlock()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleDeleteSend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sends.Remove(id) {
		writeError(w, http.StatusNotFound, "send session not found")
		return
	}
	s.wsHub.Broadcast(WSMessage{Type: "send.closed", Data: map[string]string{"id": id}})
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"id": id}})
}

func (s *Server) handleUpdateAmount(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookupSend(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ss.mu.Lock()
	_, err := ss.vm.Refresh(req.Amount)
	resp := ss.response()
	ss.mu.Unlock()

	if err != nil {
		if errors.Is(err, send.ErrInvalidAmount) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.broadcastSend(resp)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleSwapPair(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookupSend(w, r)
	if !ok {
		return
	}

	ss.mu.Lock()
	ss.vm.SwapPair()
	resp := ss.response()
	ss.mu.Unlock()

	s.broadcastSend(resp)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleSetGasPrice(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.lookupSend(w, r)
	if !ok {
		return
	}

	var req GasPriceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var wei *big.Int
	if req.GasPrice != "" {
		v, ok := new(big.Int).SetString(req.GasPrice, 10)
		if !ok {
			writeError(w, http.StatusBadRequest, "gas_price must be an integer amount of wei")
			return
		}
		wei = v
	}

	ss.mu.Lock()
	err := ss.vm.SetGasPrice(wei)
	resp := ss.response()
	ss.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcastSend(resp)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) lookupSend(w http.ResponseWriter, r *http.Request) (*sendSession, bool) {
	ss, ok := s.sends.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "send session not found")
		return nil, false
	}
	return ss, true
}

func (s *Server) broadcastSend(resp SendResponse) {
	s.wsHub.Broadcast(WSMessage{Type: "send.state", Data: resp})
}
