package model

// WidgetID はダッシュボード上のウィジェット識別子。固定の閉じた集合。
type WidgetID string

const (
	WidgetTodos      WidgetID = "todos"
	WidgetTimer      WidgetID = "timer"
	WidgetMotivation WidgetID = "motivation"
	WidgetBookmarks  WidgetID = "bookmarks"
)

// WidgetIDs は既知のウィジェットIDの一覧。
var WidgetIDs = []WidgetID{WidgetTodos, WidgetTimer, WidgetMotivation, WidgetBookmarks}

// Valid は既知のウィジェットIDかどうかを返す。
func (id WidgetID) Valid() bool {
	for _, known := range WidgetIDs {
		if id == known {
			return true
		}
	}
	return false
}

// WidgetDescriptor はウィジェット1つの表示設定。
// Orderは全ディスクリプタの中で0..N-1の連番になる。
type WidgetDescriptor struct {
	ID      WidgetID `json:"id"`
	Name    string   `json:"name"`
	Order   int      `json:"order"`
	Visible bool     `json:"visible"`
}
