package ibgw

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/helpers"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/interfaces"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// GatewaySource talks to a local broker-gateway bridge over HTTP/JSON. The
// bridge owns the TWS/Gateway socket; this adapter only qualifies contracts,
// manages subscriptions and samples quotes, which keeps the engine testable
// behind the IQuoteSource seam.
// -----------------------------------------------------------------------------

type GatewaySource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	baseURL   string
	mu        sync.Mutex
	connected bool
}

// -----------------------------------------------------------------------------

func NewGatewaySource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *GatewaySource {
	return &GatewaySource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger("GatewaySource"),
		baseURL: fmt.Sprintf("http://%s:%d/v1", cfg.Gateway.Host, cfg.Gateway.Port),
	}
}

// -----------------------------------------------------------------------------
// Wire payloads
// -----------------------------------------------------------------------------

type sessionRequest struct {
	ClientID int  `json:"client_id"`
	Readonly bool `json:"readonly"`
}

type chainResponse struct {
	TradingClass string    `json:"trading_class"`
	Exchange     string    `json:"exchange"`
	Expirations  []string  `json:"expirations"`
	Strikes      []float64 `json:"strikes"`
}

type subscribeResponse struct {
	ID int64 `json:"id"`
}

type statusResponse struct {
	Connected bool `json:"connected"`
}

// -----------------------------------------------------------------------------

// Connect opens the bridge session with the configured client id.
func (s *GatewaySource) Connect(ctx context.Context) error {
	body, err := json.Marshal(sessionRequest{
		ClientID: s.Config.Gateway.ClientID,
		Readonly: s.Config.Gateway.Readonly,
	})
	if err != nil {
		return err
	}

	if _, err := s.Network.Post(s.baseURL+"/session", body); err != nil {
		return helpers.NewConnectionError("gateway session open failed", err)
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	s.Logger.Info("Connected to gateway at %s (clientId=%d)", s.baseURL, s.Config.Gateway.ClientID)
	return nil
}

// -----------------------------------------------------------------------------

// IsConnected polls the bridge session status.
func (s *GatewaySource) IsConnected() bool {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	raw, err := s.Network.Get(s.baseURL+"/session/status", nil)
	if err != nil {
		return false
	}
	var st statusResponse
	if err := json.Unmarshal(raw, &st); err != nil {
		return false
	}
	return st.Connected
}

// -----------------------------------------------------------------------------

// QualifyFrontFuture resolves the nearest-expiry future for symbol/exchange.
func (s *GatewaySource) QualifyFrontFuture(ctx context.Context, symbol, exchange string) (models.MContract, error) {
	contracts, err := s.fetchContracts(symbol, "FUT", exchange)
	if err != nil {
		return models.MContract{}, err
	}
	if len(contracts) == 0 {
		return models.MContract{}, helpers.NewContractError(
			fmt.Sprintf("no qualifiable future for %s@%s", symbol, exchange), nil)
	}

	// Front month = smallest lastTradeDate
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].Expiry < contracts[j].Expiry
	})
	front := contracts[0]
	s.Logger.Info("Front future: %s (exp=%s)", front.LocalSymbol, front.Expiry)
	return front, nil
}

// -----------------------------------------------------------------------------

// QualifyIndex resolves the cash index contract.
func (s *GatewaySource) QualifyIndex(ctx context.Context, symbol, exchange string) (models.MContract, error) {
	contracts, err := s.fetchContracts(symbol, "IND", exchange)
	if err != nil {
		return models.MContract{}, err
	}
	if len(contracts) == 0 {
		return models.MContract{}, helpers.NewContractError(
			fmt.Sprintf("no qualifiable index for %s@%s", symbol, exchange), nil)
	}
	return contracts[0], nil
}

// -----------------------------------------------------------------------------

func (s *GatewaySource) fetchContracts(symbol, secType, exchange string) ([]models.MContract, error) {
	raw, err := s.Network.Get(s.baseURL+"/contracts", map[string]string{
		"symbol":   symbol,
		"sec_type": secType,
		"exchange": exchange,
	})
	if err != nil {
		return nil, helpers.NewConnectionError("contract request failed", err)
	}

	var contracts []models.MContract
	if err := json.Unmarshal(raw, &contracts); err != nil {
		return nil, helpers.NewContractError("malformed contract response", err)
	}
	return contracts, nil
}

// -----------------------------------------------------------------------------

// OptionChain returns the strike list for the trading class whose expirations
// contain the requested date.
func (s *GatewaySource) OptionChain(ctx context.Context, underlying models.MContract, tradingClass, expiry string) (models.MOptionChain, error) {
	raw, err := s.Network.Get(s.baseURL+"/chains", map[string]string{
		"con_id":        strconv.FormatInt(underlying.ConID, 10),
		"symbol":        underlying.Symbol,
		"exchange":      underlying.Exchange,
		"sec_type":      underlying.SecType,
		"trading_class": tradingClass,
	})
	if err != nil {
		return models.MOptionChain{}, helpers.NewConnectionError("chain request failed", err)
	}

	var chains []chainResponse
	if err := json.Unmarshal(raw, &chains); err != nil {
		return models.MOptionChain{}, helpers.NewContractError("malformed chain response", err)
	}

	for _, c := range chains {
		if c.TradingClass != tradingClass {
			continue
		}
		if !containsExpiry(c.Expirations, expiry) {
			continue
		}
		strikes := append([]float64(nil), c.Strikes...)
		sort.Float64s(strikes)
		s.Logger.Info("Option chain: %s exp=%s strikes=%d", c.TradingClass, expiry, len(strikes))
		return models.MOptionChain{
			TradingClass: c.TradingClass,
			Exchange:     c.Exchange,
			Expiry:       expiry,
			Strikes:      strikes,
		}, nil
	}

	return models.MOptionChain{}, helpers.NewContractError(
		fmt.Sprintf("no %s chain with expiration %s", tradingClass, expiry), nil)
}

// -----------------------------------------------------------------------------

// Subscribe opens a streaming subscription and returns a sampling handle.
func (s *GatewaySource) Subscribe(ctx context.Context, contract models.MContract) (interfaces.IQuoteHandle, error) {
	body, err := json.Marshal(contract)
	if err != nil {
		return nil, err
	}

	raw, err := s.Network.Post(s.baseURL+"/subscriptions", body)
	if err != nil {
		return nil, helpers.NewMarketDataError(
			fmt.Sprintf("subscribe failed for %s", contract.LocalSymbol), err)
	}

	var resp subscribeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, helpers.NewMarketDataError("malformed subscribe response", err)
	}

	return &quoteHandle{src: s, id: resp.ID, contract: contract}, nil
}

// -----------------------------------------------------------------------------

// Unsubscribe tears down a streaming subscription. Must be called before
// re-subscribing a different strike so the bridge does not leak lines.
func (s *GatewaySource) Unsubscribe(handle interfaces.IQuoteHandle) error {
	h, ok := handle.(*quoteHandle)
	if !ok || h == nil {
		return nil
	}
	return s.Network.Delete(fmt.Sprintf("%s/subscriptions/%d", s.baseURL, h.id))
}

// -----------------------------------------------------------------------------

// HistoricalDailyBar returns the most recent 1-day bar for a contract.
func (s *GatewaySource) HistoricalDailyBar(ctx context.Context, contract models.MContract) (models.MDailyBar, error) {
	raw, err := s.Network.Get(s.baseURL+"/historical", map[string]string{
		"con_id":   strconv.FormatInt(contract.ConID, 10),
		"duration": "1 D",
		"bar_size": "1 day",
		"what":     "TRADES",
		"rth":      "true",
	})
	if err != nil {
		return models.MDailyBar{}, helpers.NewMarketDataError("historical request failed", err)
	}

	var bars []models.MDailyBar
	if err := json.Unmarshal(raw, &bars); err != nil {
		return models.MDailyBar{}, helpers.NewMarketDataError("malformed historical response", err)
	}
	if len(bars) == 0 {
		return models.MDailyBar{}, helpers.NewMarketDataError("empty historical response", nil)
	}
	return bars[len(bars)-1], nil
}

// -----------------------------------------------------------------------------

// Close tears down the bridge session and all subscriptions server-side.
func (s *GatewaySource) Close() error {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return s.Network.Delete(s.baseURL + "/session")
}

// -----------------------------------------------------------------------------

func containsExpiry(expirations []string, expiry string) bool {
	for _, e := range expirations {
		if strings.TrimSpace(e) == expiry {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// quoteHandle samples the bridge's latest quote for one subscription.
// -----------------------------------------------------------------------------

type quoteHandle struct {
	src      *GatewaySource
	id       int64
	contract models.MContract
}

func (h *quoteHandle) Contract() models.MContract {
	return h.contract
}

// Latest fetches the current quote fields. A failed fetch returns an empty
// snapshot: absence propagates through the indicator math instead of erroring
// a whole tick.
func (h *quoteHandle) Latest() models.MQuoteSnapshot {
	raw, err := h.src.Network.Get(fmt.Sprintf("%s/subscriptions/%d/quote", h.src.baseURL, h.id), nil)
	if err != nil {
		return models.MQuoteSnapshot{}
	}
	var snap models.MQuoteSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.MQuoteSnapshot{}
	}
	return snap
}
