package sim

// RowID identifies one row of the OccupancyTable. The set is fixed when the
// table is built: BLOCKED, READY, OS and up to MaxProcesses process rows.
type RowID int

const (
	RowBlocked RowID = iota
	RowReady
	RowOS
	rowProcessBase
)

// RowProcess returns the row of the i-th registered process (0-based).
func RowProcess(i int) RowID {
	return rowProcessBase + RowID(i)
}

// IsProcess reports whether the row belongs to a process.
func (r RowID) IsProcess() bool { return r >= rowProcessBase }

// CPUMark is written into a process row for every tick it holds the CPU.
const CPUMark = "x"

// OccupancyTable is the per-tick snapshot grid consumed by renderers. Every
// row holds exactly one cell per column; times holds the label of each column.
type OccupancyTable struct {
	order  []RowID
	labels map[RowID]string
	cells  map[RowID][]string
	times  []int64
}

// NewOccupancyTable declares the rows for the given process names, in display
// order: BLOCKED, processes, READY, OS. Names beyond MaxProcesses are ignored.
func NewOccupancyTable(processNames []string) *OccupancyTable {
	t := &OccupancyTable{
		labels: make(map[RowID]string),
		cells:  make(map[RowID][]string),
	}
	t.declare(RowBlocked, "BLOCKED")
	for i, name := range processNames {
		if i >= MaxProcesses {
			break
		}
		t.declare(RowProcess(i), name)
	}
	t.declare(RowReady, "READY")
	t.declare(RowOS, "OS")
	return t
}

func (t *OccupancyTable) declare(row RowID, label string) {
	t.order = append(t.order, row)
	t.labels[row] = label
	t.cells[row] = make([]string, 0)
}

// EnsureColumn extends every row with empty cells until column k exists.
// Idempotent.
func (t *OccupancyTable) EnsureColumn(k int) {
	for len(t.times) <= k {
		t.times = append(t.times, int64(len(t.times)+1)*TickUnit)
		for _, row := range t.order {
			t.cells[row] = append(t.cells[row], "")
		}
	}
}

// ClearColumn empties every cell of column k.
func (t *OccupancyTable) ClearColumn(k int) {
	for _, row := range t.order {
		t.SetCell(row, k, "")
	}
}

// SetCell overwrites one cell. No-op on an unknown row or column.
func (t *OccupancyTable) SetCell(row RowID, k int, value string) {
	cells, ok := t.cells[row]
	if !ok || k < 0 || k >= len(cells) {
		return
	}
	cells[k] = value
}

// AppendCell adds value to a cell, separated by ", " from what is already there.
func (t *OccupancyTable) AppendCell(row RowID, k int, value string) {
	cur := t.Cell(row, k)
	if cur != "" {
		value = cur + ", " + value
	}
	t.SetCell(row, k, value)
}

// Cell returns one cell, or "" when the row or column is unknown.
func (t *OccupancyTable) Cell(row RowID, k int) string {
	cells, ok := t.cells[row]
	if !ok || k < 0 || k >= len(cells) {
		return ""
	}
	return cells[k]
}

// Rows returns the declared rows in display order.
func (t *OccupancyTable) Rows() []RowID {
	return append([]RowID(nil), t.order...)
}

// Label returns the display label of a row.
func (t *OccupancyTable) Label(row RowID) string {
	return t.labels[row]
}

// Row returns a copy of one row's cells.
func (t *OccupancyTable) Row(row RowID) []string {
	return append([]string(nil), t.cells[row]...)
}

// Times returns the label of every column.
func (t *OccupancyTable) Times() []int64 {
	return append([]int64(nil), t.times...)
}

// Columns returns the number of columns.
func (t *OccupancyTable) Columns() int { return len(t.times) }

// Clone returns a deep copy of the table.
func (t *OccupancyTable) Clone() *OccupancyTable {
	cp := &OccupancyTable{
		order:  append([]RowID(nil), t.order...),
		labels: make(map[RowID]string, len(t.labels)),
		cells:  make(map[RowID][]string, len(t.cells)),
		times:  append([]int64(nil), t.times...),
	}
	for row, label := range t.labels {
		cp.labels[row] = label
	}
	for row, cells := range t.cells {
		cp.cells[row] = append([]string(nil), cells...)
	}
	return cp
}
