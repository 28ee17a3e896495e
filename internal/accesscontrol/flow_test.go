package accesscontrol

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/accesscontrol/metrics"
	authmodels "visitgate/internal/authorization/models"
	authservice "visitgate/internal/authorization/service"
	authstore "visitgate/internal/authorization/store"
	facilitymodels "visitgate/internal/facility/models"
	facilityservice "visitgate/internal/facility/service"
	facilitystore "visitgate/internal/facility/store"
	inmatemodels "visitgate/internal/inmate/models"
	inmateservice "visitgate/internal/inmate/service"
	inmatestore "visitgate/internal/inmate/store"
	operatormodels "visitgate/internal/operator/models"
	operatorservice "visitgate/internal/operator/service"
	operatorstore "visitgate/internal/operator/store"
	restrictionmodels "visitgate/internal/restriction/models"
	restrictionservice "visitgate/internal/restriction/service"
	restrictionstore "visitgate/internal/restriction/store"
	visitmodels "visitgate/internal/visit/models"
	visitstore "visitgate/internal/visit/store"
	visitormodels "visitgate/internal/visitor/models"
	visitorservice "visitgate/internal/visitor/service"
	visitorstore "visitgate/internal/visitor/store"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/audit/publisher"
	auditmemory "visitgate/pkg/platform/audit/store/memory"
	"visitgate/pkg/requestcontext"
	bdd "visitgate/pkg/testutil"
)

// =============================================================================
// Check-in Flow Tests
// =============================================================================
// Justification: these run the controller against the real services and
// in-memory stores, so the rules, the unit of work and the capacity-guarded
// insert are exercised together the way the server wires them.

var flowNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

type gate struct {
	controller     *Controller
	metrics        *metrics.Metrics
	auditStore     *auditmemory.InMemoryStore
	visitors       *visitorservice.Service
	inmates        *inmateservice.Service
	operators      *operatorservice.Service
	authorizations *authservice.Resolver
	restrictions   *restrictionservice.Evaluator
	visits         *visitstore.InMemory
	facility       *facilitymodels.Facility
	operator       *operatormodels.User
	supervisor     *operatormodels.User
}

func newGate(t *testing.T, capacity int) *gate {
	t.Helper()
	ctx := requestcontext.WithTime(context.Background(), flowNow)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	g := &gate{
		auditStore: auditmemory.NewInMemoryStore(),
		visits:     visitstore.NewInMemory(),
		metrics:    metrics.New(prometheus.NewRegistry()),
	}
	g.visitors = visitorservice.New(visitorstore.NewInMemory(), visitorservice.WithLogger(logger))
	g.inmates = inmateservice.New(inmatestore.NewInMemory(), inmateservice.WithLogger(logger))
	g.operators = operatorservice.New(operatorstore.NewInMemory(), operatorservice.WithLogger(logger))
	g.authorizations = authservice.New(authstore.NewInMemory(), authservice.WithLogger(logger))
	g.restrictions = restrictionservice.New(restrictionstore.NewInMemory(), restrictionservice.WithLogger(logger))
	facilities := facilityservice.New(facilitystore.NewInMemory(), facilityservice.WithLogger(logger))

	f, err := facilities.Configure(ctx, &facilitymodels.Facility{
		ID:              id.FacilityID(uuid.New()),
		Name:            "North Unit",
		MaxCapacity:     capacity,
		Timezone:        "UTC",
		VisitingWindows: []facilitymodels.Window{{From: "08:00", To: "18:00"}},
	})
	require.NoError(t, err)
	g.facility = f

	g.operator, err = g.operators.Create(ctx, operatorservice.CreateRequest{
		Username: "gate1", FullName: "Gate Officer", Role: operatormodels.RoleOperator, FacilityID: f.ID,
	})
	require.NoError(t, err)
	g.supervisor, err = g.operators.Create(ctx, operatorservice.CreateRequest{
		Username: "chief", FullName: "Shift Chief", Role: operatormodels.RoleSupervisor, FacilityID: f.ID,
	})
	require.NoError(t, err)

	g.controller, err = New(Deps{
		Visitors:       g.visitors,
		Inmates:        g.inmates,
		Operators:      g.operators,
		Authorizations: g.authorizations,
		Restrictions:   g.restrictions,
		Facilities:     facilities,
		Capacity:       facilityservice.NewCapacityGate(g.visits),
		Visits:         g.visits,
	},
		WithLogger(logger),
		WithMetrics(g.metrics),
		WithAuditPublisher(publisher.NewPublisher(g.auditStore, publisher.WithLogger(logger))),
	)
	require.NoError(t, err)
	return g
}

func (g *gate) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), flowNow)
}

func (g *gate) visitor(t *testing.T, document string) *visitormodels.Visitor {
	t.Helper()
	v, err := g.visitors.Register(g.ctx(), visitorservice.RegisterRequest{
		DocumentNumber: document,
		FullName:       "Visitor " + document,
		BirthDate:      time.Date(1985, 7, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return v
}

func (g *gate) inmate(t *testing.T, file string) *inmatemodels.Inmate {
	t.Helper()
	i, err := g.inmates.Register(g.ctx(), inmateservice.RegisterRequest{FileNumber: file, FullName: "Inmate " + file})
	require.NoError(t, err)
	return i
}

func (g *gate) authorize(t *testing.T, v *visitormodels.Visitor, i *inmatemodels.Inmate) {
	t.Helper()
	_, err := g.authorizations.Create(g.ctx(), authservice.CreateRequest{VisitorID: v.ID, InmateID: i.ID, Relationship: "sibling"})
	require.NoError(t, err)
}

func (g *gate) checkIn(document, file string, op *operatormodels.User, confirm bool) (*CheckInResult, error) {
	return g.controller.CheckIn(g.ctx(), CheckInRequest{
		VisitorDocument:  document,
		InmateFile:       file,
		OperatorUsername: op.Username,
		ConfirmImmediate: confirm,
	})
}

func TestCheckInWithStandingAuthorization(t *testing.T) {
	g := newGate(t, 10)
	v := g.visitor(t, "V-1")
	i := g.inmate(t, "F-1")
	g.authorize(t, v, i)

	// Four visitors already inside.
	for n := 0; n < 4; n++ {
		other := g.visitor(t, fmt.Sprintf("V-OTHER-%d", n))
		g.authorize(t, other, i)
		_, err := g.checkIn(other.DocumentNumber, i.FileNumber, g.operator, false)
		require.NoError(t, err)
	}

	validation, err := g.controller.ValidateCheckIn(g.ctx(), ValidateRequest{
		VisitorDocument: "v-1", InmateFile: "f-1", OperatorUsername: "gate1",
	})
	require.NoError(t, err)
	assert.True(t, validation.Permitted)
	assert.False(t, validation.RequiresImmediateAuthorization)

	result, err := g.checkIn("V-1", "F-1", g.operator, false)
	require.NoError(t, err)
	assert.Equal(t, visitmodels.StateInProgress, result.Visit.State)

	count, err := g.controller.CountInProgress(g.ctx(), g.facility.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	op, err := g.operators.Get(g.ctx(), g.operator.ID)
	require.NoError(t, err)
	require.NotNil(t, op.LastAccessAt)
	assert.Equal(t, flowNow, *op.LastAccessAt)

	assert.Equal(t, float64(5), testutil.ToFloat64(g.metrics.CheckIns.WithLabelValues("permitted")))
}

func TestImmediateAuthorizationFlow(t *testing.T) {
	g := newGate(t, 10)
	v := g.visitor(t, "V-1")
	g.inmate(t, "F-1")

	bdd.Given(t, "no authorization between visitor and inmate", func(t *testing.T) {
		bdd.When(t, "a plain operator checks the visitor in", func(t *testing.T) {
			_, err := g.checkIn("V-1", "F-1", g.operator, false)

			bdd.Then(t, "the check-in is denied for lack of authorization", func(t *testing.T) {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeDenied))
				assert.Equal(t, []string{ReasonNoAuthorization}, dErrors.Reasons(err))
			})
		})

		bdd.When(t, "a supervisor checks in without confirming", func(t *testing.T) {
			result, err := g.checkIn("V-1", "F-1", g.supervisor, false)

			bdd.Then(t, "confirmation is required and nothing is stored", func(t *testing.T) {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeConfirmationRequired))
				assert.True(t, result.Validation.Permitted)
				assert.True(t, result.Validation.RequiresImmediateAuthorization)
				assert.True(t, result.Validation.OperatorCanGrantImmediate)

				visits, err := g.controller.VisitsByVisitor(g.ctx(), v.ID)
				require.NoError(t, err)
				assert.Empty(t, visits)
			})
		})

		bdd.When(t, "the supervisor confirms the immediate grant", func(t *testing.T) {
			result, err := g.checkIn("V-1", "F-1", g.supervisor, true)
			require.NoError(t, err)

			bdd.Then(t, "an immediate authorization valid until tomorrow 23:59 backs the visit", func(t *testing.T) {
				require.NotNil(t, result.ImmediateAuthorization)
				assert.True(t, result.ImmediateAuthorization.Immediate)
				assert.Equal(t, time.Date(2026, 3, 11, 23, 59, 0, 0, time.UTC), *result.ImmediateAuthorization.ExpiresAt)
				assert.Equal(t, result.ImmediateAuthorization.ID, result.Visit.AuthorizationID)
				assert.False(t, result.Validation.RequiresImmediateAuthorization)
				assert.True(t, result.Validation.Permitted)
			})

			bdd.And(t, "a new validation needs no further grant", func(t *testing.T) {
				validation, err := g.controller.ValidateCheckIn(g.ctx(), ValidateRequest{
					VisitorDocument: "V-1", InmateFile: "F-1", OperatorUsername: "chief",
				})
				require.NoError(t, err)
				assert.True(t, validation.Permitted)
				assert.False(t, validation.RequiresImmediateAuthorization)
			})
		})
	})

	actions := make([]string, 0)
	events, err := g.auditStore.ListBySubject(context.Background(), "V-1")
	require.NoError(t, err)
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, string(audit.EventVisitCheckInDenied))
	assert.Contains(t, actions, string(audit.EventVisitConfirmationNeeded))
}

func TestImmediateAuthorizationOverSuspendedPair(t *testing.T) {
	g := newGate(t, 10)
	v := g.visitor(t, "V-1")
	i := g.inmate(t, "F-1")
	g.authorize(t, v, i)
	standing, err := g.authorizations.FindStanding(g.ctx(), v.ID, i.ID)
	require.NoError(t, err)
	_, err = g.authorizations.Suspend(g.ctx(), standing.ID, "disturbance in the visiting room")
	require.NoError(t, err)

	bdd.Given(t, "a suspended authorization between visitor and inmate", func(t *testing.T) {
		bdd.When(t, "a supervisor validates the check-in", func(t *testing.T) {
			validation, err := g.controller.ValidateCheckIn(g.ctx(), ValidateRequest{
				VisitorDocument: "V-1", InmateFile: "F-1", OperatorUsername: "chief",
			})
			require.NoError(t, err)

			bdd.Then(t, "an immediate grant is offered", func(t *testing.T) {
				assert.True(t, validation.Permitted)
				assert.True(t, validation.RequiresImmediateAuthorization)
			})
		})

		bdd.When(t, "the supervisor confirms the immediate grant", func(t *testing.T) {
			result, err := g.checkIn("V-1", "F-1", g.supervisor, true)
			require.NoError(t, err)

			bdd.Then(t, "the suspended authorization is reissued in place as valid", func(t *testing.T) {
				require.NotNil(t, result.ImmediateAuthorization)
				assert.Equal(t, standing.ID, result.ImmediateAuthorization.ID)
				assert.Equal(t, standing.ID, result.Visit.AuthorizationID)

				stored, err := g.authorizations.Get(g.ctx(), standing.ID)
				require.NoError(t, err)
				assert.Equal(t, authmodels.StatusValid, stored.Status)
				assert.Empty(t, stored.StatusReason)
				assert.True(t, stored.Immediate)
				assert.Equal(t, time.Date(2026, 3, 11, 23, 59, 0, 0, time.UTC), *stored.ExpiresAt)
			})
		})
	})
}

func TestImmediateAuthorizationOverRevokedPair(t *testing.T) {
	g := newGate(t, 10)
	v := g.visitor(t, "V-1")
	i := g.inmate(t, "F-1")
	g.authorize(t, v, i)
	standing, err := g.authorizations.FindStanding(g.ctx(), v.ID, i.ID)
	require.NoError(t, err)
	_, err = g.authorizations.Revoke(g.ctx(), standing.ID, "court order 2026-114")
	require.NoError(t, err)

	bdd.Given(t, "a revoked authorization between visitor and inmate", func(t *testing.T) {
		bdd.When(t, "a supervisor confirms an immediate grant", func(t *testing.T) {
			_, err := g.checkIn("V-1", "F-1", g.supervisor, true)

			bdd.Then(t, "the check-in conflicts with the revoked authorization", func(t *testing.T) {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
				assert.Equal(t, standing.ID.String(), dErrors.Ref(err))
			})

			bdd.And(t, "nothing is admitted and the revocation stands", func(t *testing.T) {
				visits, err := g.controller.VisitsByVisitor(g.ctx(), v.ID)
				require.NoError(t, err)
				assert.Empty(t, visits)

				stored, err := g.authorizations.Get(g.ctx(), standing.ID)
				require.NoError(t, err)
				assert.Equal(t, authmodels.StatusRevoked, stored.Status)
				assert.False(t, stored.Immediate)
			})
		})
	})
}

func TestRestrictionOnSpecificInmate(t *testing.T) {
	g := newGate(t, 10)
	v := g.visitor(t, "V-1")
	inmateI := g.inmate(t, "F-I")
	inmateJ := g.inmate(t, "F-J")
	g.authorize(t, v, inmateI)
	g.authorize(t, v, inmateJ)

	_, err := g.restrictions.Create(g.ctx(), restrictionmodels.Draft{
		VisitorID: v.ID,
		Type:      restrictionmodels.TypeConduct,
		Scope:     restrictionmodels.ScopeSpecificInmate,
		InmateID:  inmateJ.ID,
		Motive:    "passed contraband during last visit",
		StartDate: flowNow.AddDate(0, 0, -7),
	})
	require.NoError(t, err)

	other, err := g.controller.ValidateCheckIn(g.ctx(), ValidateRequest{VisitorDocument: "V-1", InmateFile: "F-I", OperatorUsername: "gate1"})
	require.NoError(t, err)
	assert.True(t, other.Permitted)

	_, err = g.checkIn("V-1", "F-J", g.operator, false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDenied))
	assert.Equal(t, []string{"restricted: passed contraband during last visit"}, dErrors.Reasons(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(g.metrics.Denials.WithLabelValues("restriction")))
}

func TestFullFacilityDeniesCheckIn(t *testing.T) {
	g := newGate(t, 2)
	i := g.inmate(t, "F-1")
	for n := 0; n < 3; n++ {
		g.authorize(t, g.visitor(t, fmt.Sprintf("V-%d", n)), i)
	}

	_, err := g.checkIn("V-0", "F-1", g.operator, false)
	require.NoError(t, err)
	_, err = g.checkIn("V-1", "F-1", g.operator, false)
	require.NoError(t, err)

	_, err = g.checkIn("V-2", "F-1", g.operator, false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDenied))
	assert.Equal(t, []string{ReasonCapacityExceeded}, dErrors.Reasons(err))
}

func TestConcurrentCheckInsNeverExceedCapacity(t *testing.T) {
	const capacity = 3
	const gates = 12
	g := newGate(t, capacity)
	i := g.inmate(t, "F-1")
	for n := 0; n < gates; n++ {
		g.authorize(t, g.visitor(t, fmt.Sprintf("V-%d", n)), i)
	}

	var wg sync.WaitGroup
	errs := make([]error, gates)
	for n := 0; n < gates; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = g.checkIn(fmt.Sprintf("V-%d", n), "F-1", g.operator, false)
		}(n)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDenied), "unexpected error: %v", err)
		assert.Equal(t, []string{ReasonCapacityExceeded}, dErrors.Reasons(err))
	}
	assert.Equal(t, capacity, admitted)

	count, err := g.controller.CountInProgress(g.ctx(), g.facility.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}

func TestVisitorCannotBeInsideTwice(t *testing.T) {
	g := newGate(t, 10)
	v := g.visitor(t, "V-1")
	i := g.inmate(t, "F-1")
	g.authorize(t, v, i)

	_, err := g.checkIn("V-1", "F-1", g.operator, false)
	require.NoError(t, err)

	_, err = g.checkIn("V-1", "F-1", g.operator, false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestCheckOutRoundTrip(t *testing.T) {
	g := newGate(t, 1)
	v := g.visitor(t, "V-1")
	i := g.inmate(t, "F-1")
	g.authorize(t, v, i)
	other := g.visitor(t, "V-2")
	g.authorize(t, other, i)

	in, err := g.checkIn("V-1", "F-1", g.operator, false)
	require.NoError(t, err)

	_, err = g.checkIn("V-2", "F-1", g.operator, false)
	require.True(t, dErrors.HasCode(err, dErrors.CodeDenied))

	out, err := g.controller.CheckOut(g.ctx(), CheckOutRequest{VisitID: in.Visit.ID, OperatorUsername: "gate1", Notes: "no incidents"})
	require.NoError(t, err)
	assert.Equal(t, visitmodels.StateFinished, out.State)
	assert.False(t, out.ExitAt.Before(*out.EntryAt))
	assert.GreaterOrEqual(t, out.Duration(flowNow), time.Duration(0))
	assert.Equal(t, "no incidents", out.Notes)

	_, err = g.controller.CheckOut(g.ctx(), CheckOutRequest{VisitID: in.Visit.ID, OperatorUsername: "gate1"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	// The freed slot admits the next visitor.
	_, err = g.checkIn("V-2", "F-1", g.operator, false)
	assert.NoError(t, err)
}

func TestScheduledVisitLifecycle(t *testing.T) {
	g := newGate(t, 10)
	v := g.visitor(t, "V-1")
	i := g.inmate(t, "F-1")
	g.authorize(t, v, i)

	_, err := g.controller.Schedule(g.ctx(), ScheduleRequest{
		VisitorDocument: "V-1", InmateFile: "F-1", OperatorUsername: "gate1", Date: flowNow.AddDate(0, 0, -1),
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	scheduled, err := g.controller.Schedule(g.ctx(), ScheduleRequest{
		VisitorDocument: "V-1", InmateFile: "F-1", OperatorUsername: "gate1", Date: flowNow,
	})
	require.NoError(t, err)
	assert.Equal(t, visitmodels.StateScheduled, scheduled.State)

	onDay, err := g.controller.VisitsOn(g.ctx(), g.facility.ID, flowNow)
	require.NoError(t, err)
	require.Len(t, onDay, 1)

	result, err := g.controller.CheckIn(g.ctx(), CheckInRequest{
		VisitorDocument: "V-1", InmateFile: "F-1", OperatorUsername: "gate1", ScheduledVisitID: scheduled.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, scheduled.ID, result.Visit.ID)
	assert.Equal(t, visitmodels.StateInProgress, result.Visit.State)

	inside, err := g.controller.InProgress(g.ctx(), g.facility.ID)
	require.NoError(t, err)
	require.Len(t, inside, 1)
	assert.Equal(t, scheduled.ID, inside[0].ID)

	byInmate, err := g.controller.VisitsByInmate(g.ctx(), i.ID)
	require.NoError(t, err)
	assert.Len(t, byInmate, 1)
}

func TestCancelIsNotRepeatable(t *testing.T) {
	g := newGate(t, 10)
	v := g.visitor(t, "V-1")
	i := g.inmate(t, "F-1")
	g.authorize(t, v, i)

	in, err := g.checkIn("V-1", "F-1", g.operator, false)
	require.NoError(t, err)

	req := CancelRequest{VisitID: in.Visit.ID, OperatorUsername: "gate1", Motive: "inmate called to court"}
	cancelled, err := g.controller.Cancel(g.ctx(), req)
	require.NoError(t, err)
	assert.Equal(t, visitmodels.StateCancelled, cancelled.State)
	assert.Equal(t, "inmate called to court", cancelled.CancelMotive)

	_, err = g.controller.Cancel(g.ctx(), req)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestUnknownVisitorAndInmateAreDenialReasons(t *testing.T) {
	g := newGate(t, 10)

	validation, err := g.controller.ValidateCheckIn(g.ctx(), ValidateRequest{
		VisitorDocument: "NOBODY", InmateFile: "", OperatorUsername: "chief",
	})
	require.NoError(t, err)
	assert.False(t, validation.Permitted)
	assert.False(t, validation.RequiresImmediateAuthorization)
	assert.Equal(t, []string{ReasonVisitorNotFound, ReasonInmateNotFound, ReasonNoAuthorization}, validation.Errors)
}
