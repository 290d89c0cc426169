package models

// RoomView is a room as discovered in the live calendar. It is rediscovered
// on every scan and never persisted.
type RoomView struct {
	RoomID      string `json:"room_id"`
	DisplayName string `json:"display_name"`
}
