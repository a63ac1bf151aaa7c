package model

// TimerSession は実行中のフォーカスタイマー。システム全体で高々1つ。
// アイドル状態ではストアに存在しない。
type TimerSession struct {
	TaskName         string `json:"taskName"`
	TotalSeconds     int    `json:"totalSeconds"`
	RemainingSeconds int    `json:"remainingSeconds"`
	IsRunning        bool   `json:"isRunning"`
	IsPaused         bool   `json:"isPaused"`
}

// Ticking は1秒ごとのカウントダウン対象かどうかを返す。
func (s *TimerSession) Ticking() bool {
	return s != nil && s.IsRunning && !s.IsPaused
}
