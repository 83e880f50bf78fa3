package core

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// DeliverBatch delivers msgs in submission order. Stateless validation runs
// concurrently before execution. Each datagram commits or rolls back on its
// own: a rejected datagram does not undo the ones committed before it. The
// returned results are aligned with msgs and hold nil for rejected datagrams.
// The combined error lists every rejection.
func (d *Dispatcher) DeliverBatch(goCtx context.Context, ctx ExecutionContext, msgs []Msg) ([]*sdk.Result, error) {
	validationErrs := make([]error, len(msgs))
	var g errgroup.Group
	for i, msg := range msgs {
		i, msg := i, msg
		g.Go(func() error {
			if msg == nil {
				validationErrs[i] = sdkerrors.Wrap(ErrInvalidDatagram, "datagram cannot be nil")
				return nil
			}
			validationErrs[i] = msg.ValidateBasic()
			return nil
		})
	}
	// the workers record errors per datagram and never fail the group
	_ = g.Wait()

	results := make([]*sdk.Result, len(msgs))
	var errs error
	for i, msg := range msgs {
		if err := goCtx.Err(); err != nil {
			return results, multierr.Append(errs, err)
		}
		if err := validationErrs[i]; err != nil {
			errs = multierr.Append(errs, fmt.Errorf("datagram %d (%s): %w", i, msgType(msg), err))
			continue
		}
		res, err := d.execute(ctx, msg)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("datagram %d (%s): %w", i, msg.Type(), err))
			continue
		}
		results[i] = res
	}
	return results, errs
}

func msgType(msg Msg) string {
	if msg == nil {
		return "nil"
	}
	return msg.Type()
}
