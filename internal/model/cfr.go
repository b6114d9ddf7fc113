package model

import "time"

// CFRRevision CFR 修订表 — 对应 cfr_revisions
//
// 一个部门在一个学期内的 CFR 表现为一条修订链：revision_num 从 0 开始
// 连续递增，最大修订号即"当前修订"。除 dean_committed 外修订行不可变，
// 且永不删除。
type CFRRevision struct {
	DeptName      string     `gorm:"column:dept_name;primaryKey"     json:"dept_name"`
	Season        string     `gorm:"primaryKey"                      json:"season"`
	CalYear       int        `gorm:"column:cal_year;primaryKey"      json:"cal_year"`
	RevisionNum   int        `gorm:"column:revision_num;primaryKey"  json:"revision_num"`
	DateInitial   time.Time  `gorm:"column:date_initial;not null"    json:"date_initial"`
	DateRevised   *time.Time `gorm:"column:date_revised"             json:"date_revised,omitempty"`
	Submitter     string     `gorm:"not null"                        json:"submitter"`
	DeanCommitted float64    `gorm:"column:dean_committed;not null"  json:"dean_committed"`
}

// TableName 指定表名
func (CFRRevision) TableName() string { return "cfr_revisions" }

// Key 返回修订的复合主键
func (r *CFRRevision) Key() RevisionKey {
	return RevisionKey{
		DeptName:    r.DeptName,
		Season:      r.Season,
		CalYear:     r.CalYear,
		RevisionNum: r.RevisionNum,
	}
}

// RevisionKey 修订复合主键，用于链接表查询
type RevisionKey struct {
	DeptName    string
	Season      string
	CalYear     int
	RevisionNum int
}
