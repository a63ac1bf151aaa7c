package motivation

import "github.com/hitoshi/focusez/internal/model"

// Quotes は選択対象の名言集。
var Quotes = []model.Quote{
	{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
	{Text: "Success is not final, failure is not fatal: it is the courage to continue that counts.", Author: "Winston Churchill"},
	{Text: "Believe you can and you're halfway there.", Author: "Theodore Roosevelt"},
	{Text: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt"},
	{Text: "It does not matter how slowly you go as long as you do not stop.", Author: "Confucius"},
	{Text: "Everything you've ever wanted is on the other side of fear.", Author: "George Addair"},
	{Text: "Success is not how high you have climbed, but how you make a positive difference to the world.", Author: "Roy T. Bennett"},
	{Text: "Don't watch the clock; do what it does. Keep going.", Author: "Sam Levenson"},
	{Text: "The only impossible journey is the one you never begin.", Author: "Tony Robbins"},
	{Text: "Start where you are. Use what you have. Do what you can.", Author: "Arthur Ashe"},
	{Text: "You are never too old to set another goal or to dream a new dream.", Author: "C.S. Lewis"},
	{Text: "The secret of getting ahead is getting started.", Author: "Mark Twain"},
	{Text: "Don't let yesterday take up too much of today.", Author: "Will Rogers"},
	{Text: "You learn more from failure than from success. Don't let it stop you.", Author: "Unknown"},
	{Text: "It's not whether you get knocked down, it's whether you get up.", Author: "Vince Lombardi"},
	{Text: "People who are crazy enough to think they can change the world, are the ones who do.", Author: "Rob Siltanen"},
	{Text: "Failure will never overtake me if my determination to succeed is strong enough.", Author: "Og Mandino"},
	{Text: "We may encounter many defeats but we must not be defeated.", Author: "Maya Angelou"},
	{Text: "Knowing is not enough; we must apply. Wishing is not enough; we must do.", Author: "Johann Wolfgang Von Goethe"},
	{Text: "Whether you think you can or think you can't, you're right.", Author: "Henry Ford"},
}

// ImageIDs は背景画像のUnsplash写真ID。
var ImageIDs = []string{
	"photo-1506905925346-21bda4d32df4",
	"photo-1441974231531-c6227db76b6e",
	"photo-1470071459604-3b5ec3a7fe05",
	"photo-1447752875215-b2761acb3c5d",
	"photo-1501594907352-04cda38ebc29",
	"photo-1469474968028-56623f02e42e",
	"photo-1518531933037-91b2f5f229cc",
	"photo-1507525428034-b723cf961d3e",
	"photo-1472214103451-9374bd1c798e",
	"photo-1464822759023-fed622ff2c3b",
}

// ImageURL は写真IDから背景画像のURLを組み立てる。
func ImageURL(id string) string {
	return "https://images.unsplash.com/" + id + "?w=400&h=300&fit=crop"
}
