package store

// DefaultUndoCapacity bounds both the log size and one Undo call.
const DefaultUndoCapacity = 3

// Record is a reversible seat mutation.
type Record interface {
	revert(s *AssignmentStore)
}

// AddPlayer records a player appended to a seat.
type AddPlayer struct {
	Seat   string
	Player string
}

// RemovePlayer records a player removed from Index of a seat.
type RemovePlayer struct {
	Seat   string
	Player string
	Index  int
}

// RemoveSeat records a deleted seat with the players it held.
type RemoveSeat struct {
	Seat    string
	Players []string
}

func (r AddPlayer) revert(s *AssignmentStore) { s.filterPlayer(r.Seat, r.Player) }

func (r RemovePlayer) revert(s *AssignmentStore) { s.insertPlayer(r.Seat, r.Player, r.Index) }

func (r RemoveSeat) revert(s *AssignmentStore) {
	s.seats.Put(r.Seat, append([]string{}, r.Players...))
}

// UndoLog is a bounded LIFO of the most recent mutations.
type UndoLog struct {
	capacity int
	records  []Record
}

// NewUndoLog returns a log holding at most DefaultUndoCapacity records.
func NewUndoLog() *UndoLog {
	return &UndoLog{capacity: DefaultUndoCapacity}
}

// Record pushes r, evicting the oldest entry when full.
func (l *UndoLog) Record(r Record) {
	if r == nil {
		return
	}
	if len(l.records) == l.capacity {
		l.records = append(l.records[:0], l.records[1:]...)
	}
	l.records = append(l.records, r)
}

// Undo reverses up to capacity records, most recent first, and returns how
// many were reversed.
func (l *UndoLog) Undo(s *AssignmentStore) int {
	n := 0
	for n < l.capacity && len(l.records) > 0 {
		last := l.records[len(l.records)-1]
		l.records = l.records[:len(l.records)-1]
		last.revert(s)
		n++
	}
	return n
}

// Len reports how many records are pending.
func (l *UndoLog) Len() int { return len(l.records) }

// Reset drops every pending record.
func (l *UndoLog) Reset() { l.records = nil }
