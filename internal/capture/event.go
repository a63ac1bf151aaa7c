package capture

// KeyEvent はページ上のキー入力。
type KeyEvent struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl"`
	Meta bool   `json:"meta"`
}

// IsTrigger は取り込みのショートカット（Ctrl+X または Cmd+X）かどうかを返す。
// キーは小文字の"x"だけを受け付け、Shiftを伴う"X"は対象外。
func (e KeyEvent) IsTrigger() bool {
	return (e.Ctrl || e.Meta) && e.Key == "x"
}
