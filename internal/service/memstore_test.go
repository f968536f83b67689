package service

import (
	"context"
	"sync"
	"time"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

// memStore is an in-memory Store used by the service tests.  It mirrors the
// SQL store's conditional-update semantics (status-guarded writes report
// whether a row matched) but skips rollback: the tests only exercise paths
// where a failed critical section performs no writes before failing.
type memStore struct {
	mu            sync.Mutex
	events        map[uint64]*model.Event
	channels      map[uint64]string
	approvals     map[uint64]*model.ApprovalRequest
	registrations map[uint64]*model.Registration
	attendances   map[uint64]*model.Attendance
	roles         map[uint64]string
	nextID        uint64
}

func newMemStore() *memStore {
	return &memStore{
		events:        make(map[uint64]*model.Event),
		channels:      make(map[uint64]string),
		approvals:     make(map[uint64]*model.ApprovalRequest),
		registrations: make(map[uint64]*model.Registration),
		attendances:   make(map[uint64]*model.Attendance),
		roles:         make(map[uint64]string),
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) Transact(ctx context.Context, fn func(ops StoreOps) error) error {
	return fn(m)
}

// Events.

func (m *memStore) EventByID(ctx context.Context, id uint64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *memStore) CreateEvent(ctx context.Context, ev *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.ID = m.id()
	ev.CreatedAt = time.Now().UTC()
	ev.UpdatedAt = ev.CreatedAt
	cp := *ev
	m.events[ev.ID] = &cp
	return nil
}

func (m *memStore) ListEvents(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, ev := range m.events {
		if status == "" || ev.Status == status {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (m *memStore) UpdateEventStatus(ctx context.Context, id uint64, from []model.EventStatus, to model.EventStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if ev.Status == f {
			ev.Status = to
			ev.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SetEventCancellation(ctx context.Context, id uint64, reason string, actorID uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	ev.CancelReason = &reason
	ev.CancelledBy = &actorID
	ev.CancelledAt = &at
	return nil
}

func (m *memStore) AdjustEventParticipants(ctx context.Context, id uint64, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	n := int(ev.CurrentParticipants) + delta
	if n < 0 {
		n = 0
	}
	ev.CurrentParticipants = uint32(n)
	return nil
}

func (m *memStore) SetEventParticipants(ctx context.Context, id uint64, n uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	ev.CurrentParticipants = n
	return nil
}

func (m *memStore) SetEventRating(ctx context.Context, id uint64, avg float64, count uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	ev.AverageRating = avg
	ev.RatingCount = count
	return nil
}

func (m *memStore) CountRegistered(ctx context.Context, eventID uint64) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n uint32
	for _, reg := range m.registrations {
		if reg.EventID == eventID && reg.Status == model.RegistrationRegistered {
			n++
		}
	}
	return n, nil
}

func (m *memStore) EventRatingStats(ctx context.Context, eventID uint64) (int64, uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		sum   int64
		count uint32
	)
	for _, att := range m.attendances {
		if att.EventID == eventID && att.Feedback != nil {
			sum += int64(att.Feedback.Rating)
			count++
		}
	}
	return sum, count, nil
}

func (m *memStore) EnsureEventChannel(ctx context.Context, eventID uint64, roomID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.channels[eventID]; ok {
		return existing, nil
	}
	m.channels[eventID] = roomID
	return roomID, nil
}

// Approval requests.

func (m *memStore) ApprovalByID(ctx context.Context, id uint64) (*model.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.approvals[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *memStore) CreateApproval(ctx context.Context, req *model.ApprovalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.id()
	req.CreatedAt = time.Now().UTC()
	cp := *req
	m.approvals[req.ID] = &cp
	return nil
}

func (m *memStore) PendingApproval(ctx context.Context, typ model.ApprovalType, eventID, requesterID uint64) (*model.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.approvals {
		if req.Type != typ || req.Status != model.ApprovalPending {
			continue
		}
		if eventID > 0 {
			if req.EventID != nil && *req.EventID == eventID {
				cp := *req
				return &cp, nil
			}
			continue
		}
		if req.RequesterID == requesterID {
			cp := *req
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) ListApprovals(ctx context.Context, status model.ApprovalStatus) ([]model.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ApprovalRequest
	for _, req := range m.approvals {
		if status == "" || req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memStore) StampApproval(ctx context.Context, id uint64, status model.ApprovalStatus, reviewerID uint64, note string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.approvals[id]
	if !ok || req.Status != model.ApprovalPending {
		return false, nil
	}
	req.Status = status
	req.ReviewerID = &reviewerID
	req.ReviewNote = note
	req.ResolvedAt = &at
	return true, nil
}

// Registrations.

func (m *memStore) RegistrationByID(ctx context.Context, id uint64) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

func (m *memStore) RegistrationForVolunteer(ctx context.Context, volunteerID, eventID uint64) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, reg := range m.registrations {
		if reg.VolunteerID == volunteerID && reg.EventID == eventID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg.ID = m.id()
	reg.CreatedAt = time.Now().UTC()
	reg.UpdatedAt = reg.CreatedAt
	cp := *reg
	m.registrations[reg.ID] = &cp
	return nil
}

func (m *memStore) RegistrationsByEvent(ctx context.Context, eventID uint64) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Registration
	for _, reg := range m.registrations {
		if reg.EventID == eventID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (m *memStore) UpdateRegistrationStatus(ctx context.Context, id uint64, from []model.RegistrationStatus, to model.RegistrationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if reg.Status == f {
			reg.Status = to
			reg.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CancelOpenRegistrations(ctx context.Context, eventID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, reg := range m.registrations {
		if reg.EventID == eventID && reg.Status.Open() {
			reg.Status = model.RegistrationEventCancelled
			reg.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

// Attendances.

func (m *memStore) AttendanceByID(ctx context.Context, id uint64) (*model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att, ok := m.attendances[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *att
	return &cp, nil
}

func (m *memStore) AttendanceForRegistration(ctx context.Context, registrationID uint64) (*model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, att := range m.attendances {
		if att.RegistrationID == registrationID {
			cp := *att
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CreateAttendance(ctx context.Context, att *model.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	att.ID = m.id()
	att.CreatedAt = time.Now().UTC()
	att.UpdatedAt = att.CreatedAt
	cp := *att
	m.attendances[att.ID] = &cp
	return nil
}

func (m *memStore) SetAttendanceCheckOut(ctx context.Context, id uint64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att, ok := m.attendances[id]
	if !ok || att.Status != model.AttendanceInProgress || att.CheckOutTime != nil {
		return false, nil
	}
	att.Status = model.AttendanceCompleted
	att.CheckOutTime = &at
	att.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *memStore) SetAttendanceFeedback(ctx context.Context, id uint64, fb model.Feedback) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att, ok := m.attendances[id]
	if !ok || att.Status != model.AttendanceCompleted || att.Feedback != nil {
		return false, nil
	}
	cp := fb
	att.Feedback = &cp
	att.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Users.

func (m *memStore) SetUserRole(ctx context.Context, userID uint64, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
	return nil
}
