package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"extranet_rates/config"
	"extranet_rates/ledger"
	"extranet_rates/surface"
	"extranet_rates/surface/surfacetest"
)

var (
	testToday   = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	testHorizon = time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC)
)

type applied struct {
	room, from, to, rooms, plan, price string
}

// extranet scripts a bulk-edit modal on top of the in-memory surface. Every
// modal element is visible only while the modal is open.
type extranet struct {
	*surfacetest.Surface
	sel config.Selectors

	modalSelectors []string
	hidden         map[string]bool

	room    string
	opens   int
	closes  int
	applied []applied

	close, from, to, rooms, plan, price  *surfacetest.Element
	inventorySave, priceSave, statusSave *surfacetest.Element
	banner                               *surfacetest.Element
}

func newExtranet(t *testing.T, roomIDs ...string) *extranet {
	t.Helper()
	sel := config.DefaultSelectors()
	x := &extranet{Surface: surfacetest.New(), sel: sel, hidden: make(map[string]bool)}

	modal := func(selector string) *surfacetest.Element {
		x.modalSelectors = append(x.modalSelectors, selector)
		return x.Add(&surfacetest.Element{Selector: selector})
	}

	for _, id := range roomIDs {
		id := id
		x.Add(&surfacetest.Element{
			Selector: config.ForRoom(sel.BulkEditOpen, id)[0],
			Visible:  true,
			OnClick:  func() { x.open(id) },
		})
	}

	modal(sel.ModalMarkers[0])
	x.close = modal(sel.ModalClose[0])
	x.close.OnClick = x.shut
	x.from = modal(sel.DateFrom[0])
	x.to = modal(sel.DateTo[0])

	modal(sel.InventoryGroup[0])
	x.rooms = modal(sel.InventoryInput[0])
	x.inventorySave = modal(sel.InventorySave[0])

	modal(sel.PriceGroup[0])
	x.plan = modal(sel.RatePlanSelect[0])
	x.plan.Options = []surface.Option{
		{Value: "", Label: "Choose a rate plan"},
		{Value: "101", Label: "Standard rate (1 guest)"},
		{Value: "102", Label: "Standard rate (2 guests)"},
		{Value: "103", Label: "Standard rate (3 guests)", Disabled: true},
	}
	x.price = modal(sel.PriceInput[0])
	x.priceSave = modal(sel.PriceSave[0])

	modal(sel.StatusGroup[0])
	modal(sel.StatusOpenLabel[0])
	modal(sel.StatusOpenRadio[0])
	x.statusSave = modal(sel.StatusSave[0])
	x.statusSave.OnClick = x.capture

	x.banner = x.Add(&surfacetest.Element{Selector: sel.SaveErrorBanner[0], Text: "Something went wrong"})
	return x
}

func (x *extranet) hide(selector string) {
	x.hidden[selector] = true
}

func (x *extranet) open(room string) {
	x.opens++
	x.room = room
	for _, sel := range x.modalSelectors {
		if !x.hidden[sel] {
			x.SetVisible(sel, true)
		}
	}
	for _, el := range []*surfacetest.Element{x.from, x.to, x.rooms, x.price, x.plan} {
		el.Value = ""
	}
}

func (x *extranet) shut() {
	x.closes++
	for _, sel := range x.modalSelectors {
		x.SetVisible(sel, false)
	}
	x.banner.Visible = false
}

func (x *extranet) capture() {
	x.applied = append(x.applied, applied{
		room:  x.room,
		from:  x.from.Value,
		to:    x.to.Value,
		rooms: x.rooms.Value,
		plan:  x.plan.Value,
		price: x.price.Value,
	})
}

func (x *extranet) modalOpen() bool {
	for _, el := range x.Lookup(x.sel.ModalMarkers[0]) {
		if el.Visible {
			return true
		}
	}
	return false
}

func (x *extranet) runContext(l Completer) RunContext {
	return RunContext{
		Surface:           x.Surface,
		Ledger:            l,
		Selectors:         x.sel,
		Today:             testToday,
		Horizon:           testHorizon,
		ModalOpenAttempts: 2,
		CalendarURL:       "https://extranet.test/calendar",
	}
}

func writeLedger(t *testing.T, body string) *ledger.Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing_data.csv")
	data := "Room ID,Room Name,Date Range,Price,Number of Rooms,Status\n" + body
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write ledger: %v", err)
	}
	l, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	return l
}
