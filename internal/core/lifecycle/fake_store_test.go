package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/attendance"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/leave"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/resignation"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *recordingNotifier) Publish(_ context.Context, ev notification.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Events() []notification.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Event(nil), n.events...)
}

// fakeStore は全エンティティを保持するインメモリストアです。
// fail に操作名を登録するとその操作が指定のエラーを返します。
type fakeStore struct {
	mu           sync.Mutex
	employees    map[string]*employee.Employee
	archives     map[string]*employee.ArchivedEmployee
	resignations map[string]*resignation.Resignation
	leaves       map[string]*leave.Request
	records      map[string]*attendance.Record
	fail         map[string]error
	calls        []string
	// beforeLeaveUpdate は休暇申請の状態更新直前に呼ばれます。競合の再現に使います。
	beforeLeaveUpdate func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees:    make(map[string]*employee.Employee),
		archives:     make(map[string]*employee.ArchivedEmployee),
		resignations: make(map[string]*resignation.Resignation),
		leaves:       make(map[string]*leave.Request),
		records:      make(map[string]*attendance.Record),
		fail:         make(map[string]error),
	}
}

func (s *fakeStore) repositories() Repositories {
	return Repositories{
		Employees:    fakeEmployees{s},
		Archives:     fakeArchives{s},
		Resignations: fakeResignations{s},
		Leaves:       fakeLeaves{s},
		Attendance:   fakeAttendance{s},
	}
}

func (s *fakeStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// enter は呼び出しを記録し、注入されたエラーがあれば返します。ロックを保持した状態で戻ります。
func (s *fakeStore) enter(op string) error {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	return s.fail[op]
}

func (s *fakeStore) called(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (s *fakeStore) employee(id string) *employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employees[id].Clone()
}

func (s *fakeStore) resignation(id string) *resignation.Resignation {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resignations[id]
	if !ok {
		return nil
	}
	c := *r
	return &c
}

func (s *fakeStore) leave(id string) *leave.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.leaves[id]
	if !ok {
		return nil
	}
	c := *r
	return &c
}

func (s *fakeStore) attendanceRecord(id string) *attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil
	}
	c := *r
	if r.ClockOut != nil {
		out := *r.ClockOut
		c.ClockOut = &out
	}
	return &c
}

func (s *fakeStore) archiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.archives)
}

type fakeEmployees struct{ s *fakeStore }

func (r fakeEmployees) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	if err := r.s.enter("employees.Create"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[e.ID]; ok {
		return nil, employee.ErrEmployeeAlreadyExists
	}
	r.s.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (r fakeEmployees) FindByID(_ context.Context, id string) (*employee.Employee, error) {
	if err := r.s.enter("employees.FindByID"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return e.Clone(), nil
}

func (r fakeEmployees) UpdateLeaveBalance(_ context.Context, id string, expected, next int, updatedAt time.Time) (*employee.Employee, error) {
	if err := r.s.enter("employees.UpdateLeaveBalance"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	if e.LeaveBalance != expected {
		return nil, employee.ErrBalanceConflict
	}
	e.LeaveBalance = next
	e.UpdatedAt = updatedAt
	return e.Clone(), nil
}

func (r fakeEmployees) Delete(_ context.Context, id string) error {
	if err := r.s.enter("employees.Delete"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.s.employees, id)
	return nil
}

type fakeArchives struct{ s *fakeStore }

func (r fakeArchives) Create(_ context.Context, a *employee.ArchivedEmployee) (*employee.ArchivedEmployee, error) {
	if err := r.s.enter("archives.Create"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, existing := range r.s.archives {
		if existing.ID == a.ID || existing.ResignationID == a.ResignationID {
			return nil, employee.ErrArchiveAlreadyExists
		}
	}
	r.s.archives[a.ID] = a.Clone()
	return a.Clone(), nil
}

func (r fakeArchives) FindByID(_ context.Context, id string) (*employee.ArchivedEmployee, error) {
	if err := r.s.enter("archives.FindByID"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	a, ok := r.s.archives[id]
	if !ok {
		return nil, employee.ErrArchivedEmployeeNotFound
	}
	return a.Clone(), nil
}

func (r fakeArchives) FindByResignationID(_ context.Context, resignationID string) (*employee.ArchivedEmployee, error) {
	if err := r.s.enter("archives.FindByResignationID"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, a := range r.s.archives {
		if a.ResignationID == resignationID {
			return a.Clone(), nil
		}
	}
	return nil, employee.ErrArchivedEmployeeNotFound
}

func (r fakeArchives) Delete(_ context.Context, id string) error {
	if err := r.s.enter("archives.Delete"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.archives[id]; !ok {
		return employee.ErrArchivedEmployeeNotFound
	}
	delete(r.s.archives, id)
	return nil
}

type fakeResignations struct{ s *fakeStore }

func (r fakeResignations) Create(_ context.Context, res *resignation.Resignation) (*resignation.Resignation, error) {
	if err := r.s.enter("resignations.Create"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	c := *res
	r.s.resignations[res.ID] = &c
	out := c
	return &out, nil
}

func (r fakeResignations) FindByID(_ context.Context, id string) (*resignation.Resignation, error) {
	if err := r.s.enter("resignations.FindByID"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	res, ok := r.s.resignations[id]
	if !ok {
		return nil, resignation.ErrResignationNotFound
	}
	c := *res
	return &c, nil
}

func (r fakeResignations) UpdateStatus(_ context.Context, id string, change resignation.StatusChange) (*resignation.Resignation, error) {
	if err := r.s.enter("resignations.UpdateStatus"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	res, ok := r.s.resignations[id]
	if !ok {
		return nil, resignation.ErrResignationNotFound
	}
	if res.Status != change.From {
		return nil, resignation.ErrStatusConflict
	}
	res.Status = change.To
	res.ReviewedBy = change.ReviewedBy
	res.ReviewedAt = nil
	if change.ReviewedBy != "" {
		at := change.At
		res.ReviewedAt = &at
	}
	res.UpdatedAt = change.At
	c := *res
	return &c, nil
}

type fakeLeaves struct{ s *fakeStore }

func (r fakeLeaves) Create(_ context.Context, req *leave.Request) (*leave.Request, error) {
	if err := r.s.enter("leaves.Create"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	c := *req
	r.s.leaves[req.ID] = &c
	out := c
	return &out, nil
}

func (r fakeLeaves) FindByID(_ context.Context, id string) (*leave.Request, error) {
	if err := r.s.enter("leaves.FindByID"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	req, ok := r.s.leaves[id]
	if !ok {
		return nil, leave.ErrLeaveRequestNotFound
	}
	c := *req
	return &c, nil
}

func (r fakeLeaves) UpdateStatus(_ context.Context, id string, change leave.StatusChange) (*leave.Request, error) {
	r.s.mu.Lock()
	hook := r.s.beforeLeaveUpdate
	r.s.beforeLeaveUpdate = nil
	r.s.mu.Unlock()
	if hook != nil {
		hook()
	}

	if err := r.s.enter("leaves.UpdateStatus"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	req, ok := r.s.leaves[id]
	if !ok {
		return nil, leave.ErrLeaveRequestNotFound
	}
	if req.Status != change.From {
		return nil, leave.ErrStatusConflict
	}
	req.Status = change.To
	req.ReviewedBy = change.ReviewedBy
	at := change.At
	req.ReviewedAt = &at
	req.UpdatedAt = change.At
	c := *req
	return &c, nil
}

type fakeAttendance struct{ s *fakeStore }

func (r fakeAttendance) Create(_ context.Context, rec *attendance.Record) (*attendance.Record, error) {
	if err := r.s.enter("attendance.Create"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, existing := range r.s.records {
		if existing.EmployeeID == rec.EmployeeID && existing.WorkDate.Equal(rec.WorkDate) {
			return nil, attendance.ErrAlreadyClockedIn
		}
	}
	c := *rec
	r.s.records[rec.ID] = &c
	out := c
	return &out, nil
}

func (r fakeAttendance) FindByEmployeeAndDate(_ context.Context, employeeID string, workDate time.Time) (*attendance.Record, error) {
	if err := r.s.enter("attendance.FindByEmployeeAndDate"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, rec := range r.s.records {
		if rec.EmployeeID == employeeID && rec.WorkDate.Equal(workDate) {
			c := *rec
			return &c, nil
		}
	}
	return nil, attendance.ErrRecordNotFound
}

func (r fakeAttendance) CloseSession(_ context.Context, id string, clockOut time.Time, notes string) (*attendance.Record, error) {
	if err := r.s.enter("attendance.CloseSession"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok {
		return nil, attendance.ErrRecordNotFound
	}
	if rec.ClockOut != nil {
		return nil, attendance.ErrNoOpenSession
	}
	out := clockOut
	rec.ClockOut = &out
	rec.Notes = notes
	rec.UpdatedAt = clockOut
	c := *rec
	return &c, nil
}

func (s *fakeStore) seedEmployee(id string, balance int) *employee.Employee {
	e := &employee.Employee{
		ID:           id,
		EmployeeCode: "code-" + id,
		Name:         fmt.Sprintf("Employee %s", id),
		Email:        id + "@example.com",
		Department:   "engineering",
		Position:     "engineer",
		BaseSalary:   350000,
		LeaveBalance: balance,
		LoginEnabled: true,
		JoinDate:     time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[id] = e.Clone()
	return e
}

func (s *fakeStore) seedResignation(id, employeeID string, status resignation.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resignations[id] = &resignation.Resignation{
		ID:              id,
		EmployeeID:      employeeID,
		ResignationDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		LastWorkingDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Reason:          "moving abroad",
		Status:          status,
	}
}

func (s *fakeStore) seedLeave(id, employeeID string, start, end time.Time, status leave.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves[id] = &leave.Request{
		ID:         id,
		EmployeeID: employeeID,
		Type:       leave.TypeAnnual,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
	}
}
