package model

// 学期季节的合法取值
const (
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonFall   = "Fall"
)

// ValidSeason 判断季节取值是否合法
func ValidSeason(season string) bool {
	switch season {
	case SeasonSpring, SeasonSummer, SeasonFall:
		return true
	}
	return false
}

// Semester 学期表 — 对应 semesters
// 全局最多一个 Active=true 的学期（由部分唯一索引保证）
type Semester struct {
	Season  string `gorm:"type:varchar(10);primaryKey" json:"season"`
	CalYear int    `gorm:"column:cal_year;primaryKey"  json:"cal_year"`
	Active  bool   `gorm:"not null;default:false"      json:"active"`
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }
