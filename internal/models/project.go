package models

type Project struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	TreeVersion uint   `gorm:"not null;default:0" json:"tree_version"`
	Rooms       []Room `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"rooms,omitempty"`
}

// PdfPage mirrors the page records owned by the document storage service.
type PdfPage struct {
	BaseModel
	ProjectID  uint   `gorm:"index;not null" json:"project_id"`
	PageNumber int    `gorm:"not null" json:"page_number"`
	Title      string `gorm:"type:varchar(255)" json:"title,omitempty"`
}

func (PdfPage) TableName() string {
	return "pdf_pages"
}
