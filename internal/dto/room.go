package dto

// RoomPeriodRequest adds or removes a vacancy/occupancy period. RoomName is
// the human-entered form ("RM. 9/CL3") and may resolve to several rooms.
type RoomPeriodRequest struct {
	RoomName  string `json:"room_name" validate:"required"`
	DayOfWeek string `json:"day_of_week" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Label     string `json:"label"`
}

// RoomStatusItem reports a room's state at the queried instant.
type RoomStatusItem struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Building string `json:"building"`
	Vacant   bool   `json:"vacant"`
	Label    string `json:"label,omitempty"`
}
