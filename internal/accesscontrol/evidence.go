package accesscontrol

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	facilitymodels "visitgate/internal/facility/models"
	operatormodels "visitgate/internal/operator/models"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/tx"
	"visitgate/pkg/requestcontext"
)

// evidenceTimeout bounds the whole gathering phase.
const evidenceTimeout = 3 * time.Second

type evidenceRequest struct {
	VisitorDocument string
	InmateFile      string
	Facility        *facilitymodels.Facility
}

// gatherEvidence loads everything the rules need. Identity lookups run in
// parallel, then the pair-dependent lookups run in parallel once visitor and
// inmate are known. Inside a SQL transaction the lookups run one at a time,
// since a transaction's connection cannot serve concurrent queries.
func (c *Controller) gatherEvidence(ctx context.Context, req evidenceRequest) (*Evidence, error) {
	ctx, cancel := context.WithTimeout(ctx, evidenceTimeout)
	defer cancel()

	now := requestcontext.Now(ctx)
	ev := &Evidence{
		Facility: req.Facility,
		Now:      now,
		Today:    req.Facility.Today(now),
	}

	g, gctx := c.newGroup(ctx)
	g.Go(func() error {
		start := time.Now()
		v, err := c.visitors.FindByDocument(gctx, req.VisitorDocument)
		ev.Latencies.Visitor = time.Since(start)
		c.metrics.ObserveEvidenceLatency("visitor", ev.Latencies.Visitor)
		if err != nil {
			return missingOrFail(err, "failed to load visitor")
		}
		ev.Visitor = v
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		i, err := c.inmates.FindByFileNumber(gctx, req.InmateFile)
		ev.Latencies.Inmate = time.Since(start)
		c.metrics.ObserveEvidenceLatency("inmate", ev.Latencies.Inmate)
		if err != nil {
			return missingOrFail(err, "failed to load inmate")
		}
		ev.Inmate = i
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		ok, err := c.capacity.WithinCapacity(gctx, req.Facility)
		ev.Latencies.Capacity = time.Since(start)
		c.metrics.ObserveEvidenceLatency("capacity", ev.Latencies.Capacity)
		if err != nil {
			return err
		}
		ev.WithinCapacity = ok
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if ev.Visitor == nil {
		return ev, nil
	}

	g, gctx = c.newGroup(ctx)
	if ev.Inmate != nil {
		g.Go(func() error {
			start := time.Now()
			a, err := c.authorizations.FindStanding(gctx, ev.Visitor.ID, ev.Inmate.ID)
			ev.Latencies.Authorization = time.Since(start)
			c.metrics.ObserveEvidenceLatency("authorization", ev.Latencies.Authorization)
			if err != nil {
				return err
			}
			ev.Authorization = a
			return nil
		})
	}
	g.Go(func() error {
		// Without an inmate only all-inmates restrictions can match.
		var inmateID id.InmateID
		if ev.Inmate != nil {
			inmateID = ev.Inmate.ID
		}
		start := time.Now()
		blocked, reasons, err := c.restrictions.IsBlocked(gctx, ev.Visitor.ID, inmateID, ev.Today)
		ev.Latencies.Restrictions = time.Since(start)
		c.metrics.ObserveEvidenceLatency("restrictions", ev.Latencies.Restrictions)
		if err != nil {
			return err
		}
		ev.Restricted = blocked
		ev.RestrictionReasons = reasons
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (c *Controller) newGroup(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if _, inTx := tx.From(ctx); inTx {
		g.SetLimit(1)
	}
	return g, gctx
}

// validate gathers evidence and applies the rules for one check-in attempt.
func (c *Controller) validate(ctx context.Context, visitorDoc, inmateFile string, operator *operatormodels.User, f *facilitymodels.Facility) (*ValidationResult, error) {
	ev, err := c.gatherEvidence(ctx, evidenceRequest{
		VisitorDocument: visitorDoc,
		InmateFile:      inmateFile,
		Facility:        f,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "check-in validation timed out")
		}
		return nil, err
	}
	return EvaluateCheckIn(ev, operator, c.minVisitorAge), nil
}

// missingOrFail turns a not-found lookup into missing evidence and wraps any
// other failure as a storage error.
func missingOrFail(err error, msg string) error {
	if dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeInvalidInput) {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
