package editor

import "resumeforge/internal/resume"

// DefaultHistorySize 是单份简历保留的快照上限。
const DefaultHistorySize = 50

// History 是线性的快照栈，Cursor 指向当前状态。
// Undo/Redo 只移动游标；Push 会丢弃游标之后的所有快照。
type History struct {
	Entries []resume.Detail `json:"entries"`
	Cursor  int             `json:"cursor"`

	limit int
}

// NewHistory 返回空历史，limit <= 0 时使用 DefaultHistorySize。
func NewHistory(limit int) *History {
	h := &History{Cursor: -1}
	h.SetLimit(limit)
	return h
}

// SetLimit 调整容量，超出部分从最旧的快照开始丢弃。
func (h *History) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	h.limit = limit
	h.trim()
}

// Reset 用单个快照重新初始化历史，通常在首次加载简历时调用。
func (h *History) Reset(snapshot resume.Detail) {
	h.Entries = []resume.Detail{snapshot}
	h.Cursor = 0
}

// Push 记录一次变更后的状态。
func (h *History) Push(snapshot resume.Detail) {
	if h.Cursor < len(h.Entries)-1 {
		h.Entries = h.Entries[:h.Cursor+1]
	}
	h.Entries = append(h.Entries, snapshot)
	h.Cursor = len(h.Entries) - 1
	h.trim()
}

func (h *History) trim() {
	if h.limit <= 0 || len(h.Entries) <= h.limit {
		return
	}
	drop := len(h.Entries) - h.limit
	h.Entries = append([]resume.Detail(nil), h.Entries[drop:]...)
	h.Cursor -= drop
	if h.Cursor < 0 {
		h.Cursor = 0
	}
}

func (h *History) CanUndo() bool {
	return h.Cursor > 0
}

func (h *History) CanRedo() bool {
	return h.Cursor >= 0 && h.Cursor < len(h.Entries)-1
}

// Undo 把游标后退一步并返回新的当前快照。
func (h *History) Undo() (resume.Detail, bool) {
	if !h.CanUndo() {
		return resume.Detail{}, false
	}
	h.Cursor--
	return h.Entries[h.Cursor], true
}

// Redo 把游标前进一步并返回新的当前快照。
func (h *History) Redo() (resume.Detail, bool) {
	if !h.CanRedo() {
		return resume.Detail{}, false
	}
	h.Cursor++
	return h.Entries[h.Cursor], true
}

// Current 返回游标处的快照。
func (h *History) Current() (resume.Detail, bool) {
	if h.Cursor < 0 || h.Cursor >= len(h.Entries) {
		return resume.Detail{}, false
	}
	return h.Entries[h.Cursor], true
}

func (h *History) Len() int {
	return len(h.Entries)
}

// State 是对外暴露的历史摘要。
type State struct {
	Size    int  `json:"size"`
	Cursor  int  `json:"cursor"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

func (h *History) State() State {
	return State{
		Size:    len(h.Entries),
		Cursor:  h.Cursor,
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
	}
}
