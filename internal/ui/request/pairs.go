package request

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/model"
)

// pairRow is the widgets for one key-value pair. Rows are keyed by pair ID
// and reused across updates so focus stays in the entry being typed in.
type pairRow struct {
	id    int64
	key   *widget.Entry
	value *widget.Entry
	on    *widget.Check
	del   *widget.Button
	box   *fyne.Container
}

// PairsEditor edits the query parameters or headers of the active request.
type PairsEditor struct {
	widget.BaseWidget

	kind   domain.PairKind
	rows   []*pairRow
	list   *fyne.Container
	addBtn *widget.Button
	empty  *widget.Label

	syncing bool
	onEdit  func(model.Pair)
}

// NewPairsEditor creates an empty editor for kind
func NewPairsEditor(kind domain.PairKind) *PairsEditor {
	e := &PairsEditor{kind: kind}

	e.list = container.NewVBox()

	label := "Add parameter"
	placeholder := "No query parameters"
	if kind == domain.Header {
		label = "Add header"
		placeholder = "No headers"
	}
	e.empty = widget.NewLabel(placeholder)
	e.empty.Importance = widget.LowImportance
	e.list.Add(e.empty)

	e.addBtn = widget.NewButtonWithIcon(label, theme.ContentAddIcon(), func() {
		e.emit(model.PairAdd, 0, "")
	})

	e.ExtendBaseWidget(e)
	return e
}

// SetOnEdit sets the callback receiving every user edit
func (e *PairsEditor) SetOnEdit(fn func(model.Pair)) {
	e.onEdit = fn
}

func (e *PairsEditor) emit(op model.PairOp, id int64, text string) {
	if e.syncing || e.onEdit == nil {
		return
	}
	e.onEdit(model.Pair{Kind: e.kind, Op: op, ID: id, Text: text})
}

// SetPairs shows pairs in order, reusing rows whose ID is unchanged.
func (e *PairsEditor) SetPairs(pairs []domain.KeyValue) {
	e.syncing = true
	defer func() { e.syncing = false }()

	existing := make(map[int64]*pairRow, len(e.rows))
	for _, row := range e.rows {
		existing[row.id] = row
	}

	changed := len(pairs) != len(e.rows)
	rows := make([]*pairRow, 0, len(pairs))
	for i, pair := range pairs {
		row, ok := existing[pair.ID]
		if !ok {
			row = e.newRow(pair.ID)
		}
		if !changed && e.rows[i] != row {
			changed = true
		}
		row.set(pair)
		rows = append(rows, row)
	}
	e.rows = rows

	if !changed {
		return
	}
	objects := make([]fyne.CanvasObject, 0, len(rows)+1)
	if len(rows) == 0 {
		objects = append(objects, e.empty)
	}
	for _, row := range rows {
		objects = append(objects, row.box)
	}
	e.list.Objects = objects
	e.list.Refresh()
}

func (e *PairsEditor) newRow(id int64) *pairRow {
	row := &pairRow{id: id}

	row.key = widget.NewEntry()
	row.key.SetPlaceHolder("Key")
	row.key.OnChanged = func(text string) { e.emit(model.PairSetKey, id, text) }

	row.value = widget.NewEntry()
	row.value.SetPlaceHolder("Value")
	row.value.OnChanged = func(text string) { e.emit(model.PairSetValue, id, text) }

	row.on = widget.NewCheck("", func(bool) { e.emit(model.PairToggle, id, "") })

	row.del = widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		e.emit(model.PairDelete, id, "")
	})
	row.del.Importance = widget.LowImportance

	row.box = container.NewBorder(nil, nil, row.on, row.del,
		container.NewGridWithColumns(2, row.key, row.value))
	return row
}

func (r *pairRow) set(pair domain.KeyValue) {
	if r.key.Text != pair.Key {
		r.key.SetText(pair.Key)
	}
	if r.value.Text != pair.Value {
		r.value.SetText(pair.Value)
	}
	if r.on.Checked != pair.On {
		r.on.SetChecked(pair.On)
	}
}

// CreateRenderer implements fyne.Widget.
func (e *PairsEditor) CreateRenderer() fyne.WidgetRenderer {
	content := container.NewBorder(nil,
		container.NewHBox(e.addBtn),
		nil, nil,
		container.NewVScroll(e.list),
	)
	return widget.NewSimpleRenderer(content)
}
