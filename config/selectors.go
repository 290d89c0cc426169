package config

import "strings"

// RoomIDPlaceholder is replaced with the room id in BulkEditOpen candidates.
const RoomIDPlaceholder = "{room_id}"

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Selectors holds the ordered candidate locators for every element the
// workflow touches. Each list is tried first to last.
type Selectors struct {
	CalendarLoaded  []string `yaml:"calendar_loaded"`
	NavAvailability []string `yaml:"nav_availability"`
	NavCalendar     []string `yaml:"nav_calendar"`

	// RoomRow is matched against a DOM snapshot, so it must be plain CSS.
	RoomRow []string `yaml:"room_row"`

	BulkEditOpen []string `yaml:"bulk_edit_open"`
	ModalMarkers []string `yaml:"modal_markers"`
	ModalClose   []string `yaml:"modal_close"`

	DateFrom []string `yaml:"date_from"`
	DateTo   []string `yaml:"date_to"`

	InventoryGroup []string `yaml:"inventory_group"`
	InventoryInput []string `yaml:"inventory_input"`
	InventorySave  []string `yaml:"inventory_save"`

	PriceGroup     []string `yaml:"price_group"`
	RatePlanSelect []string `yaml:"rate_plan_select"`
	PriceInput     []string `yaml:"price_input"`
	PriceSave      []string `yaml:"price_save"`

	StatusGroup     []string `yaml:"status_group"`
	StatusOpenLabel []string `yaml:"status_open_label"`
	StatusOpenRadio []string `yaml:"status_open_radio"`
	StatusSave      []string `yaml:"status_save"`

	SaveErrorBanner []string `yaml:"save_error_banner"`
	BackgroundPoint Point    `yaml:"background_point"`
}

// ForRoom expands the room id placeholder in each candidate.
func ForRoom(candidates []string, roomID string) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = strings.ReplaceAll(c, RoomIDPlaceholder, roomID)
	}
	return out
}

func DefaultSelectors() Selectors {
	return Selectors{
		CalendarLoaded: []string{
			".calendar",
			".calendar-container",
			"[data-testid='calendar']",
			".rate-calendar",
			".availability-calendar",
		},
		NavAvailability: []string{
			"li[data-nav-tag='availability'] button",
			"li[data-nav-tag='availability'] a",
		},
		NavCalendar: []string{
			"li[data-nav-tag='availability_calendar'] a",
		},
		RoomRow: []string{
			".av-cal-list-room__name",
			"[data-testid='room-name']",
			".room-name",
		},
		BulkEditOpen: []string{
			"[data-room-id='{room_id}'] button[data-testid='bulk-edit-button']",
			"[data-room-id='{room_id}'] button:has-text('Bulk edit')",
			"button[data-bulk-edit-room='{room_id}']",
		},
		ModalMarkers: []string{
			"[data-testid='bulk-edit-modal']",
			".bui-modal--active [role='dialog']",
			"[role='dialog']:has-text('Bulk edit')",
		},
		ModalClose: []string{
			"[data-testid='bulk-edit-modal'] button[aria-label='Close']",
			".bui-modal__close",
			"[role='dialog'] button:has-text('Close')",
		},
		DateFrom: []string{
			"input[name='date_from']",
			"input[data-testid='bulk-edit-date-from']",
			"[role='dialog'] input[type='date'] >> nth=0",
		},
		DateTo: []string{
			"input[name='date_to']",
			"input[data-testid='bulk-edit-date-to']",
			"[role='dialog'] input[type='date'] >> nth=1",
		},
		InventoryGroup: []string{
			"[data-testid='bulk-edit-rooms-to-sell'] button",
			"button:has-text('Rooms to sell')",
		},
		InventoryInput: []string{
			"input[name='rooms_to_sell']",
			"[data-testid='bulk-edit-rooms-to-sell'] input[type='number']",
		},
		InventorySave: []string{
			"[data-testid='bulk-edit-rooms-to-sell'] button[type='submit']",
			"[data-testid='bulk-edit-rooms-to-sell'] button:has-text('Save')",
		},
		PriceGroup: []string{
			"[data-testid='bulk-edit-prices'] button",
			"button:has-text('Prices')",
		},
		RatePlanSelect: []string{
			"select[name='rate_plan']",
			"[data-testid='bulk-edit-prices'] select",
		},
		PriceInput: []string{
			"input[name='price']",
			"[data-testid='bulk-edit-prices'] input[type='number']",
		},
		PriceSave: []string{
			"[data-testid='bulk-edit-prices'] button[type='submit']",
			"[data-testid='bulk-edit-prices'] button:has-text('Save')",
		},
		StatusGroup: []string{
			"[data-testid='bulk-edit-room-status'] button",
			"button:has-text('Room status')",
		},
		StatusOpenLabel: []string{
			"[data-testid='bulk-edit-room-status'] label:has-text('Open')",
			"[data-testid='bulk-edit-room-status'] label:has-text('Bookable')",
		},
		StatusOpenRadio: []string{
			"[data-testid='bulk-edit-room-status'] input[type='radio'][value='open']",
			"[data-testid='bulk-edit-room-status'] input[type='radio'] >> nth=0",
		},
		StatusSave: []string{
			"[data-testid='bulk-edit-room-status'] button[type='submit']",
			"[data-testid='bulk-edit-room-status'] button:has-text('Save')",
		},
		SaveErrorBanner: []string{
			"[data-testid='bulk-edit-modal'] .bui-alert--error",
			"[role='dialog'] [role='alert']",
			".bui-inline-alert--error",
		},
		BackgroundPoint: Point{X: 10, Y: 10},
	}
}
