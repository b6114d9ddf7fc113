package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/internal/model"
	pkgerrors "github.com/camtauxe/nmsu-cfr/pkg/errors"
)

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]*model.Semester
}

func semesterKey(season string, calYear int) string {
	return fmt.Sprintf("%s-%d", season, calYear)
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]*model.Semester)}
}

func (m *mockSemesterRepo) Get(_ context.Context, season string, calYear int) (*model.Semester, error) {
	if s, ok := m.semesters[semesterKey(season, calYear)]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetActive(_ context.Context) (*model.Semester, error) {
	for _, s := range m.semesters {
		if s.Active {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CalYear != result[j].CalYear {
			return result[i].CalYear < result[j].CalYear
		}
		return result[i].Season < result[j].Season
	})
	return result, nil
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	key := semesterKey(semester.Season, semester.CalYear)
	if _, ok := m.semesters[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.semesters[key] = semester
	return nil
}

func (m *mockSemesterRepo) ClearActive(_ context.Context) error {
	for _, s := range m.semesters {
		s.Active = false
	}
	return nil
}

func (m *mockSemesterRepo) SetActive(_ context.Context, season string, calYear int) error {
	if s, ok := m.semesters[semesterKey(season, calYear)]; ok {
		s.Active = true
	}
	return nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts map[string]*model.Department
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DeptName < result[j].DeptName })
	return result, nil
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	if d, ok := m.depts[name]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) LockByName(ctx context.Context, name string) (*model.Department, error) {
	return m.GetByName(ctx, name)
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	m.depts[dept.DeptName] = dept
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users      map[string]*model.User
	submitters map[string]string // username → dept_name
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:      make(map[string]*model.User),
		submitters: make(map[string]string),
	}
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetSubmitterDept(_ context.Context, username string) (string, error) {
	if dept, ok := m.submitters[username]; ok {
		return dept, nil
	}
	return "", gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) CreateSubmitter(_ context.Context, submitter *model.Submitter) error {
	m.submitters[submitter.Username] = submitter.DeptName
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, username, passwordHash string) error {
	if u, ok := m.users[username]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, username string) error {
	delete(m.users, username)
	delete(m.submitters, username)
	return nil
}

func (m *mockUserRepo) ListUsernames(_ context.Context) ([]string, error) {
	var result []string
	for name := range m.users {
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

func (m *mockUserRepo) EmailsByDept(_ context.Context, deptName string) ([]string, error) {
	var result []string
	for username, dept := range m.submitters {
		if dept == deptName && m.users[username] != nil && m.users[username].Email != "" {
			result = append(result, m.users[username].Email)
		}
	}
	return result, nil
}

func (m *mockUserRepo) EmailsByRole(_ context.Context, role string) ([]string, error) {
	var result []string
	for _, u := range m.users {
		if u.Role == role && u.Email != "" {
			result = append(result, u.Email)
		}
	}
	return result, nil
}

func (m *mockUserRepo) AllEmails(_ context.Context) ([]string, error) {
	var result []string
	for _, u := range m.users {
		if u.Email != "" {
			result = append(result, u.Email)
		}
	}
	return result, nil
}

// ── Mock CFRRepository ──

type mockCFRRepo struct {
	revisions []*model.CFRRevision
}

func newMockCFRRepo() *mockCFRRepo {
	return &mockCFRRepo{}
}

func (m *mockCFRRepo) GetCurrent(_ context.Context, deptName, season string, calYear int) (*model.CFRRevision, error) {
	var current *model.CFRRevision
	for _, r := range m.revisions {
		if r.DeptName == deptName && r.Season == season && r.CalYear == calYear {
			if current == nil || r.RevisionNum > current.RevisionNum {
				current = r
			}
		}
	}
	if current == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *current
	return &copied, nil
}

func (m *mockCFRRepo) ListRevisions(_ context.Context, deptName, season string, calYear int) ([]model.CFRRevision, error) {
	var result []model.CFRRevision
	for _, r := range m.revisions {
		if r.DeptName == deptName && r.Season == season && r.CalYear == calYear {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RevisionNum > result[j].RevisionNum })
	return result, nil
}

func (m *mockCFRRepo) Create(_ context.Context, revision *model.CFRRevision) error {
	for _, r := range m.revisions {
		if r.Key() == revision.Key() {
			return pkgerrors.ErrRevisionConflict
		}
	}
	copied := *revision
	m.revisions = append(m.revisions, &copied)
	return nil
}

func (m *mockCFRRepo) UpdateDeanCommitted(_ context.Context, key model.RevisionKey, amount float64) error {
	for _, r := range m.revisions {
		if r.Key() == key {
			r.DeanCommitted = amount
		}
	}
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	nextID  int64
	courses map[int64]*model.CourseRequest
	links   []model.CFRCourseLink
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{nextID: 1, courses: make(map[int64]*model.CourseRequest)}
}

func (m *mockCourseRepo) ListByRevision(_ context.Context, key model.RevisionKey) ([]model.CourseRequest, error) {
	var result []model.CourseRequest
	for _, link := range m.links {
		if link.DeptName == key.DeptName && link.Season == key.Season &&
			link.CalYear == key.CalYear && link.RevisionNum == key.RevisionNum {
			if c, ok := m.courses[link.CourseID]; ok {
				result = append(result, *c)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].Course < result[j].Course
	})
	return result, nil
}

func (m *mockCourseRepo) FindDuplicate(ctx context.Context, key model.RevisionKey, course *model.CourseRequest) (*model.CourseRequest, error) {
	linked, err := m.ListByRevision(ctx, key)
	if err != nil {
		return nil, err
	}
	for i := range linked {
		if linked[i].ContentEquals(course) {
			found := linked[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockCourseRepo) Insert(_ context.Context, course *model.CourseRequest) error {
	course.ID = m.nextID
	m.nextID++
	copied := *course
	m.courses[course.ID] = &copied
	return nil
}

func (m *mockCourseRepo) Link(_ context.Context, courseID int64, key model.RevisionKey) error {
	m.links = append(m.links, model.CFRCourseLink{
		CourseID:    courseID,
		DeptName:    key.DeptName,
		Season:      key.Season,
		CalYear:     key.CalYear,
		RevisionNum: key.RevisionNum,
	})
	return nil
}

func (m *mockCourseRepo) ApproveByCourseSec(ctx context.Context, key model.RevisionKey, course, sec string, commitmentCode *string, cost float64, approver string) (int64, error) {
	affected := int64(0)
	for _, link := range m.links {
		if link.DeptName != key.DeptName || link.Season != key.Season ||
			link.CalYear != key.CalYear || link.RevisionNum != key.RevisionNum {
			continue
		}
		c, ok := m.courses[link.CourseID]
		if !ok || c.Course != course || c.Sec != sec {
			continue
		}
		c.CommitmentCode = commitmentCode
		c.Cost = cost
		c.Approver = &approver
		affected++
	}
	return affected, nil
}

// linkedIDs 返回链接到指定修订的课程行 ID（测试断言用）
func (m *mockCourseRepo) linkedIDs(key model.RevisionKey) []int64 {
	var ids []int64
	for _, link := range m.links {
		if link.DeptName == key.DeptName && link.Season == key.Season &&
			link.CalYear == key.CalYear && link.RevisionNum == key.RevisionNum {
			ids = append(ids, link.CourseID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ── Mock SavingsRepository ──

type mockSavingsRepo struct {
	nextID  int64
	savings map[int64]*model.SalarySaving
	links   []model.CFRSavingsLink
}

func newMockSavingsRepo() *mockSavingsRepo {
	return &mockSavingsRepo{nextID: 1, savings: make(map[int64]*model.SalarySaving)}
}

func (m *mockSavingsRepo) ListByRevision(_ context.Context, key model.RevisionKey) ([]model.SalarySaving, error) {
	var result []model.SalarySaving
	for _, link := range m.links {
		if link.DeptName == key.DeptName && link.Season == key.Season &&
			link.CalYear == key.CalYear && link.RevisionNum == key.RevisionNum {
			if s, ok := m.savings[link.SavingsID]; ok {
				result = append(result, *s)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].InstName < result[j].InstName })
	return result, nil
}

func (m *mockSavingsRepo) FindDuplicate(ctx context.Context, key model.RevisionKey, saving *model.SalarySaving) (*model.SalarySaving, error) {
	linked, err := m.ListByRevision(ctx, key)
	if err != nil {
		return nil, err
	}
	for i := range linked {
		if linked[i].ContentEquals(saving) {
			found := linked[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockSavingsRepo) Insert(_ context.Context, saving *model.SalarySaving) error {
	saving.ID = m.nextID
	m.nextID++
	copied := *saving
	m.savings[saving.ID] = &copied
	return nil
}

func (m *mockSavingsRepo) Link(_ context.Context, savingsID int64, key model.RevisionKey) error {
	m.links = append(m.links, model.CFRSavingsLink{
		SavingsID:   savingsID,
		DeptName:    key.DeptName,
		Season:      key.Season,
		CalYear:     key.CalYear,
		RevisionNum: key.RevisionNum,
	})
	return nil
}

func (m *mockSavingsRepo) ApproveByInstName(_ context.Context, key model.RevisionKey, instName string, confirmedAmt *float64, approver string) (int64, error) {
	affected := int64(0)
	for _, link := range m.links {
		if link.DeptName != key.DeptName || link.Season != key.Season ||
			link.CalYear != key.CalYear || link.RevisionNum != key.RevisionNum {
			continue
		}
		s, ok := m.savings[link.SavingsID]
		if !ok || s.InstName != instName {
			continue
		}
		s.ConfirmedAmt = confirmedAmt
		s.Approver = &approver
		affected++
	}
	return affected, nil
}

func (m *mockSavingsRepo) linkedIDs(key model.RevisionKey) []int64 {
	var ids []int64
	for _, link := range m.links {
		if link.DeptName == key.DeptName && link.Season == key.Season &&
			link.CalYear == key.CalYear && link.RevisionNum == key.RevisionNum {
			ids = append(ids, link.SavingsID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ── Mock NotificationService ──

type mockNotifier struct {
	newCFRs       []string
	revisions     []string
	statusUpdates []string
	semesterOpens []string
}

func newMockNotifier() *mockNotifier { return &mockNotifier{} }

func (m *mockNotifier) NotifyNewCFR(deptName string)    { m.newCFRs = append(m.newCFRs, deptName) }
func (m *mockNotifier) NotifyRevision(deptName string)  { m.revisions = append(m.revisions, deptName) }
func (m *mockNotifier) NotifyStatusUpdate(deptName string) {
	m.statusUpdates = append(m.statusUpdates, deptName)
}
func (m *mockNotifier) NotifySemesterOpen(season string) {
	m.semesterOpens = append(m.semesterOpens, season)
}
