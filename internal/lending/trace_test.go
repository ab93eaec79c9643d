package lending

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/model"
)

// tracer records each transition of one request and the events it emits.
type tracer struct {
	t    *testing.T
	s    Snapshot
	b    strings.Builder
	name map[int64]string
}

func newTracer(t *testing.T, typ model.ItemType) *tracer {
	tr := &tracer{t: t, name: map[int64]string{ana.ID: "Ana", bor.ID: "Bor"}}
	name := "Drill"
	if typ == model.ItemTypeSell {
		name = "Bike"
	}
	s, events, err := openRequest(itemOf(typ, name), ana, bor, t0)
	require.NoError(t, err)
	s.Request.ID = 100
	tr.s = s
	tr.write("CreateRequest", events)
	return tr
}

func (tr *tracer) do(op string, fn func(Snapshot) (Outcome, error)) {
	tr.t.Helper()
	out, err := fn(tr.s)
	require.NoError(tr.t, err, op)
	tr.s = advance(tr.s, out)
	tr.write(op, out.Events)
}

func (tr *tracer) write(op string, events []Event) {
	r := tr.s.Request
	fmt.Fprintf(&tr.b, "%s request=%s item=%s lent=%t received=%t returned=%t/%t completed=%t\n",
		op, r.Status, tr.s.Item.Status,
		r.LenderMarkedAsLent, r.BorrowerConfirmedReceipt,
		r.BorrowerConfirmedReturn, r.LenderConfirmedReturn, r.Completed())
	for _, ev := range events {
		fmt.Fprintf(&tr.b, "  %s -> %s: %s\n", ev.Type, tr.name[ev.RecipientID], ev.Message)
	}
}

func (tr *tracer) assertGolden(name string) {
	g := goldie.New(tr.t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(tr.t, name, []byte(tr.b.String()))
}

func TestLendLifecycleTrace(t *testing.T) {
	tr := newTracer(t, model.ItemTypeLend)
	tr.do("UpdateRequestStatus", func(s Snapshot) (Outcome, error) {
		return updateStatus(s, model.RequestStatusAccepted, t0)
	})
	tr.do("MarkAsLent", func(s Snapshot) (Outcome, error) { return markAsLent(s, ana.ID, t0) })
	tr.do("ConfirmReceipt", func(s Snapshot) (Outcome, error) { return confirmReceipt(s, bor.ID, t0) })
	tr.do("MarkRequestAsDone", func(s Snapshot) (Outcome, error) { return markDone(s, t0) })
	tr.do("ConfirmReturn", func(s Snapshot) (Outcome, error) { return confirmReturn(s, bor.ID, true, t0) })
	tr.do("ConfirmReturn", func(s Snapshot) (Outcome, error) { return confirmReturn(s, ana.ID, false, t0) })
	tr.assertGolden("lend_lifecycle")
}

func TestSellLifecycleTrace(t *testing.T) {
	tr := newTracer(t, model.ItemTypeSell)
	tr.do("UpdateRequestStatus", func(s Snapshot) (Outcome, error) {
		return updateStatus(s, model.RequestStatusAccepted, t0)
	})
	tr.do("MarkAsLent", func(s Snapshot) (Outcome, error) { return markAsLent(s, ana.ID, t0) })
	tr.do("ConfirmReceipt", func(s Snapshot) (Outcome, error) { return confirmReceipt(s, bor.ID, t0) })
	tr.assertGolden("sell_lifecycle")
}
