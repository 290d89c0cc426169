package rooms

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"extranet_rates/models"
)

var roomLabelRegex = regexp.MustCompile(`(.*?)\s*\(Room ID:\s*(\d+)\)`)

// Snapshotter supplies the serialised DOM of the current view.
type Snapshotter interface {
	Content() (string, error)
}

type Enumerator struct {
	surface Snapshotter
	rowSels []string
}

func NewEnumerator(s Snapshotter, rowSelectors []string) *Enumerator {
	return &Enumerator{surface: s, rowSels: rowSelectors}
}

// ListRooms takes one snapshot of the calendar and returns every room it can
// identify, in view order. Rows that do not carry a room id are skipped.
func (e *Enumerator) ListRooms() ([]models.RoomView, error) {
	html, err := e.surface.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot calendar: %w", err)
	}
	return Parse(html, e.rowSels)
}

// Parse extracts rooms from an HTML document. The first row selector that
// matches anything is used.
func Parse(html string, rowSelectors []string) ([]models.RoomView, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar html: %w", err)
	}

	var rows *goquery.Selection
	for _, sel := range rowSelectors {
		rows = doc.Find(sel)
		if rows.Length() > 0 {
			break
		}
	}
	if rows == nil || rows.Length() == 0 {
		log.Printf("[warn] rooms: no room rows matched %v", rowSelectors)
		return nil, nil
	}

	var result []models.RoomView
	seen := make(map[string]bool)
	rows.Each(func(i int, row *goquery.Selection) {
		text := strings.Join(strings.Fields(row.Text()), " ")
		room, ok := ParseLabel(text)
		if !ok {
			log.Printf("[warn] rooms: row %d has no room id: %q", i, text)
			return
		}
		if seen[room.RoomID] {
			return
		}
		seen[room.RoomID] = true
		result = append(result, room)
	})

	return result, nil
}

// ParseLabel reads "<Name> (Room ID: <digits>)".
func ParseLabel(text string) (models.RoomView, bool) {
	m := roomLabelRegex.FindStringSubmatch(text)
	if m == nil {
		return models.RoomView{}, false
	}
	return models.RoomView{RoomID: m[2], DisplayName: strings.TrimSpace(m[1])}, true
}
