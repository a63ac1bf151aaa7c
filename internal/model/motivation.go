package model

// Quote はモチベーション名言。
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// MotivationState はその日に選ばれた名言と背景画像。
// Dateは選択したカレンダー日（YYYY-MM-DD）。
type MotivationState struct {
	Quote    Quote  `json:"quote"`
	ImageURL string `json:"imageUrl"`
	Date     string `json:"date"`
}
