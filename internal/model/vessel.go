package model

// Vessel is a ship subject to audits.
type Vessel struct {
	Base
	Name       string `gorm:"type:varchar(255);not null;index" json:"name"`
	IMONumber  string `gorm:"column:imo_number;type:varchar(20);index" json:"imo_number"`
	VesselType string `gorm:"type:varchar(100)" json:"vessel_type"`
	Flag       string `gorm:"type:varchar(100)" json:"flag"`
	IsActive   bool   `gorm:"not null;default:true" json:"is_active"`
	SoftDelete
}
