package dto

type ReturnsResult struct {
	SettlementID       string `json:"settlement_id"`
	TotalReturnedUnits int64  `json:"total_returned_units"`
	LinesRestocked     int    `json:"lines_restocked"`
	NotificationSent   bool   `json:"notification_sent"`
}
