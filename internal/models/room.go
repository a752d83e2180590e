package models

type Room struct {
	BaseModel
	ProjectID   uint       `gorm:"index;not null" json:"project_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	RoomType    string     `gorm:"type:varchar(50);not null" json:"room_type"`
	FloorNumber int        `gorm:"not null" json:"floor_number"`
	SortOrder   int        `gorm:"not null;default:0" json:"sort_order"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	Locations   []Location `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"locations,omitempty"`
}

type Location struct {
	BaseModel
	RoomID       uint         `gorm:"index;not null" json:"room_id"`
	Name         string       `gorm:"type:varchar(255);not null" json:"name"`
	LocationType string       `gorm:"type:varchar(50);not null" json:"location_type"`
	CabinetLevel int          `gorm:"not null" json:"cabinet_level"`
	SortOrder    int          `gorm:"not null;default:0" json:"sort_order"`
	Notes        string       `gorm:"type:text" json:"notes,omitempty"`
	Runs         []CabinetRun `gorm:"foreignKey:RoomLocationID;constraint:OnDelete:CASCADE" json:"runs,omitempty"`
}

func (Location) TableName() string {
	return "room_locations"
}

type CabinetRun struct {
	BaseModel
	RoomLocationID uint      `gorm:"index;not null" json:"room_location_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	RunType        string    `gorm:"type:varchar(50);not null" json:"run_type"`
	SortOrder      int       `gorm:"not null;default:0" json:"sort_order"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	Cabinets       []Cabinet `gorm:"foreignKey:CabinetRunID;constraint:OnDelete:CASCADE" json:"cabinets,omitempty"`
}
