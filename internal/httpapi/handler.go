// Package httpapi exposes the table over JSON HTTP and a websocket feed.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"

	"github.com/xtding233/plinko-backend/internal/engine"
	"github.com/xtding233/plinko-backend/internal/lib/logger/sl"
	"github.com/xtding233/plinko-backend/internal/physics"
	"github.com/xtding233/plinko-backend/internal/plinko"
	"github.com/xtding233/plinko-backend/internal/table"
)

// Host is the part of table.Table the handlers use.
type Host interface {
	Drop(amount plinko.Amount) (engine.BallView, error)
	Configure(cfg plinko.BoardConfig) error
	Board() engine.Board
	Stats() engine.RoundStats
	Balls() []engine.BallView
	Falling() int
	Limits() table.Limits
	Profiles() plinko.Profiles
	Subscribe(buffer int) (<-chan table.Update, func())
}

type Wallet interface {
	Balance() plinko.Amount
	InFlight() int
	Deposit(amount plinko.Amount) error
}

type Handler struct {
	log       *slog.Logger
	validator *validator.Validate
	host      Host
	wallet    Wallet
	rtp       *cache.Cache
}

func New(log *slog.Logger, host Host, wallet Wallet) *Handler {
	return &Handler{
		log:       log,
		validator: validator.New(),
		host:      host,
		wallet:    wallet,
		rtp:       cache.New(10*time.Minute, 30*time.Minute),
	}
}

type BoardResponse struct {
	Response
	Rows     int              `json:"rows"`
	Risk     plinko.Risk      `json:"risk"`
	Table    plinko.Table     `json:"table"`
	Tiers    []plinko.Tier    `json:"tiers"`
	Geometry physics.Geometry `json:"geometry"`
	Limits   limitsView       `json:"limits"`
	Locked   bool             `json:"locked"`
}

type limitsView struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

type ConfigureRequest struct {
	Rows int    `json:"rows" validate:"required,min=8,max=16"`
	Risk string `json:"risk" validate:"required"`
}

type DropRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type DropResponse struct {
	Response
	BallID  uuid.UUID `json:"ball_id"`
	Wager   string    `json:"wager"`
	Balance string    `json:"balance"`
}

type BalanceResponse struct {
	Response
	Balance  string `json:"balance"`
	InFlight int    `json:"in_flight"`
}

type DepositRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type StatsResponse struct {
	Response
	engine.RoundStats
}

type RTPResponse struct {
	Response
	plinko.Analysis
}

// ballView leaves out the planned bucket and path.
type ballView struct {
	ID    uuid.UUID    `json:"id"`
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
	Row   int          `json:"row"`
	State engine.State `json:"state"`
	Wager string       `json:"wager"`
}

type BallsResponse struct {
	Response
	Balls []ballView `json:"balls"`
}

func (h *Handler) logFor(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	b := h.host.Board()
	lim := h.host.Limits()

	tiers := make([]plinko.Tier, len(b.Table))
	for i, m := range b.Table {
		tiers[i] = plinko.TierOf(m)
	}
	resp := BoardResponse{
		Response: OK(),
		Rows:     b.Config.Rows,
		Risk:     b.Config.Risk,
		Table:    b.Table,
		Tiers:    tiers,
		Geometry: b.Geometry,
		Locked:   h.host.Falling() > 0,
	}
	if lim.Min > 0 {
		resp.Limits.Min = lim.Min.String()
	}
	if lim.Max > 0 {
		resp.Limits.Max = lim.Max.String()
	}
	reply(w, r, http.StatusOK, resp)
}

func (h *Handler) PutBoard(w http.ResponseWriter, r *http.Request) {
	log := h.logFor(r, "httpapi.PutBoard")

	var req ConfigureRequest
	if !h.decode(w, r, log, &req) {
		return
	}
	risk, err := plinko.ParseRisk(req.Risk)
	if err != nil {
		replyError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	if err = h.host.Configure(plinko.BoardConfig{Rows: req.Rows, Risk: risk}); err != nil {
		log.Warn("configure rejected", sl.Err(err))
		replyError(w, r, err.Error(), statusFor(err))
		return
	}
	log.Info("board configured", slog.Int("rows", req.Rows), sl.String("risk", risk.String()))

	h.GetBoard(w, r)
}

func (h *Handler) PostDrop(w http.ResponseWriter, r *http.Request) {
	log := h.logFor(r, "httpapi.PostDrop")

	var req DropRequest
	if !h.decode(w, r, log, &req) {
		return
	}
	amount, err := plinko.ParseAmount(req.Amount)
	if err != nil {
		replyError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := h.host.Drop(amount)
	if err != nil {
		log.Info("drop refused", sl.Err(err), sl.String("amount", amount.String()))
		replyError(w, r, err.Error(), statusFor(err))
		return
	}

	reply(w, r, http.StatusCreated, DropResponse{
		Response: Response{Status: http.StatusCreated},
		BallID:   v.ID,
		Wager:    v.Wager.String(),
		Balance:  h.wallet.Balance().String(),
	})
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	reply(w, r, http.StatusOK, BalanceResponse{
		Response: OK(),
		Balance:  h.wallet.Balance().String(),
		InFlight: h.wallet.InFlight(),
	})
}

func (h *Handler) PostDeposit(w http.ResponseWriter, r *http.Request) {
	log := h.logFor(r, "httpapi.PostDeposit")

	var req DepositRequest
	if !h.decode(w, r, log, &req) {
		return
	}
	amount, err := plinko.ParseAmount(req.Amount)
	if err == nil {
		err = h.wallet.Deposit(amount)
	}
	if err != nil {
		replyError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	log.Info("deposit", sl.String("amount", amount.String()))

	h.GetBalance(w, r)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	reply(w, r, http.StatusOK, StatsResponse{Response: OK(), RoundStats: h.host.Stats()})
}

func (h *Handler) GetBalls(w http.ResponseWriter, r *http.Request) {
	views := h.host.Balls()
	out := make([]ballView, 0, len(views))
	for _, v := range views {
		out = append(out, ballView{ID: v.ID, X: v.X, Y: v.Y, Row: v.Row, State: v.State, Wager: v.Wager.String()})
	}
	reply(w, r, http.StatusOK, BallsResponse{Response: OK(), Balls: out})
}

// GetRTP reports the analytic return of a board. rows and risk default to
// the live board.
func (h *Handler) GetRTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.host.Board().Config

	q := r.URL.Query()
	if s := q.Get("rows"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			replyError(w, r, fmt.Sprintf("rows: %q is not a number", s), http.StatusBadRequest)
			return
		}
		cfg.Rows = n
	}
	if s := q.Get("risk"); s != "" {
		risk, err := plinko.ParseRisk(s)
		if err != nil {
			replyError(w, r, err.Error(), http.StatusBadRequest)
			return
		}
		cfg.Risk = risk
	}
	if err := cfg.Validate(); err != nil {
		replyError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	p := h.host.Profiles()[cfg.Risk]
	key := fmt.Sprintf("%d/%s/%g/%g/%g", cfg.Rows, cfg.Risk, p.Center, p.Edge, p.Curve)
	if a, ok := h.rtp.Get(key); ok {
		reply(w, r, http.StatusOK, RTPResponse{Response: OK(), Analysis: a.(plinko.Analysis)})
		return
	}

	a, err := plinko.Analyze(cfg, p)
	if err != nil {
		replyError(w, r, err.Error(), http.StatusInternalServerError)
		return
	}
	h.rtp.Set(key, a, cache.DefaultExpiration)
	reply(w, r, http.StatusOK, RTPResponse{Response: OK(), Analysis: a})
}

// decode reads and validates a JSON body, replying on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		replyError(w, r, "failed to decode request body", http.StatusBadRequest)
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			reply(w, r, http.StatusBadRequest, ValidationError(verrs))
		} else {
			replyError(w, r, err.Error(), http.StatusBadRequest)
		}
		log.Info("invalid request", sl.Err(err))
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, plinko.ErrConfigurationLocked):
		return http.StatusConflict
	case errors.Is(err, plinko.ErrWagerRejected):
		return http.StatusPaymentRequired
	case errors.Is(err, plinko.ErrInvalidWager),
		errors.Is(err, plinko.ErrInvalidAmount),
		errors.Is(err, plinko.ErrInvalidRows),
		errors.Is(err, plinko.ErrInvalidRisk),
		errors.Is(err, plinko.ErrInvalidProfile):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
