package models

// Session is one logged-in terminal as reported by the collector feeding the
// store. (Host, Line) is unique among active sessions.
type Session struct {
	Host    string `gorm:"primaryKey;size:255" json:"host"`
	Line    string `gorm:"primaryKey;size:64" json:"line"`
	User    string `gorm:"index;size:64;not null" json:"user"`
	RHost   string `gorm:"column:rhost;size:255" json:"rhost"`
	UID     int64  `gorm:"column:uid;not null" json:"uid"`
	Updated int64  `gorm:"index;not null" json:"updated"` // epoch seconds
}

func (Session) TableName() string {
	return "utmp"
}
