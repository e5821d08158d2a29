package dto

type AppointmentListDTO struct {
	ID          uint     `json:"id"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	DurationMin int      `json:"duration"`
	Status      string   `json:"status"`
	ClientName  string   `json:"client_name"`
	PetName     string   `json:"pet_name"`
	Services    []string `json:"services"`
	StaffIDs    []uint   `json:"staff_ids"`
	TotalPrice  float64  `json:"total_price"`
	Override    bool     `json:"override"`
}
