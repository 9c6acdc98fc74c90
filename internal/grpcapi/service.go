// Package grpcapi serves the table over gRPC. Messages are
// google.protobuf.Struct values so no generated code is needed.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/plinko-backend/internal/engine"
	"github.com/xtding233/plinko-backend/internal/lib/logger/sl"
	"github.com/xtding233/plinko-backend/internal/plinko"
	"github.com/xtding233/plinko-backend/internal/table"
)

const ServiceName = "plinko.v1.Plinko"

type Host interface {
	Drop(amount plinko.Amount) (engine.BallView, error)
	Configure(cfg plinko.BoardConfig) error
	Board() engine.Board
	Subscribe(buffer int) (<-chan table.Update, func())
}

type Balance interface {
	Balance() plinko.Amount
}

// PlinkoServer is the handler set behind ServiceDesc.
type PlinkoServer interface {
	Board(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Configure(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Drop(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Watch(*structpb.Struct, grpc.ServerStream) error
}

type Service struct {
	log    *slog.Logger
	host   Host
	wallet Balance
}

func NewService(log *slog.Logger, host Host, wallet Balance) *Service {
	return &Service{log: log, host: host, wallet: wallet}
}

func (s *Service) Board(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	b := s.host.Board()
	tiers := make([]string, len(b.Table))
	for i, m := range b.Table {
		tiers[i] = string(plinko.TierOf(m))
	}
	return toStruct(map[string]any{
		"rows":     b.Config.Rows,
		"risk":     b.Config.Risk,
		"table":    b.Table,
		"tiers":    tiers,
		"geometry": b.Geometry,
	})
}

// Configure expects {"rows": number, "risk": string}.
func (s *Service) Configure(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	rows, ok := f["rows"].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "rows is required")
	}
	if rows.NumberValue != float64(int(rows.NumberValue)) {
		return nil, status.Errorf(codes.InvalidArgument, "rows must be an integer, got %v", rows.NumberValue)
	}
	risk, err := plinko.ParseRisk(f["risk"].GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}

	if err := s.host.Configure(plinko.BoardConfig{Rows: int(rows.NumberValue), Risk: risk}); err != nil {
		s.log.Warn("configure rejected", sl.Err(err))
		return nil, toStatus(err)
	}
	return s.Board(ctx, nil)
}

// Drop expects {"amount": "10.50"}.
func (s *Service) Drop(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	amount, err := plinko.ParseAmount(req.GetFields()["amount"].GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}
	v, err := s.host.Drop(amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{
		"ball_id": v.ID.String(),
		"wager":   v.Wager.String(),
		"balance": s.wallet.Balance().String(),
	})
}

// Watch streams every table update until the client cancels.
func (s *Service) Watch(_ *structpb.Struct, stream grpc.ServerStream) error {
	updates, cancel := s.host.Subscribe(128)
	defer cancel()

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			msg, err := toStruct(u)
			if err != nil {
				return err
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		}
	}
}

// toStruct round-trips v through JSON so the wire shape matches the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return st, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, plinko.ErrConfigurationLocked),
		errors.Is(err, plinko.ErrWagerRejected):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, plinko.ErrInvalidWager),
		errors.Is(err, plinko.ErrInvalidAmount),
		errors.Is(err, plinko.ErrInvalidRows),
		errors.Is(err, plinko.ErrInvalidRisk):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, fmt.Sprintf("internal: %v", err))
}
