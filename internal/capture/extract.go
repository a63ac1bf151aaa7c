package capture

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/security"
)

// titleSanitizer はページスクリプトから渡されたタイトルのマークアップを取り除く。
var titleSanitizer = security.NewTextSanitizer()

// Page は取り込み対象のページ。HTMLは省略できる。
type Page struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	HTML  string `json:"html,omitempty"`
}

// Extract はページからブックマーク入力を組み立てる。
//
// タイトルはPage.Title（マークアップを除去したもの）、無ければHTMLの<title>、
// それも無ければURLを使う。
// faviconはrelにiconを含む最初の<link>のhrefをページURL基準で解決し、
// 見つからない場合は <origin>/favicon.ico とする。
func Extract(page Page) (model.CreateBookmarkInput, error) {
	pageURL, err := url.Parse(strings.TrimSpace(page.URL))
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return model.CreateBookmarkInput{}, model.NewValidationError("url", "absolute page URL required")
	}

	var title, iconHref string
	if page.HTML != "" {
		title, iconHref = scanHead(strings.NewReader(page.HTML))
	}

	title = strings.Join(strings.Fields(title), " ")
	if t := titleSanitizer.Clean(page.Title); t != "" {
		title = t
	}
	if title == "" {
		title = pageURL.String()
	}

	return model.CreateBookmarkInput{
		Title:   title,
		URL:     pageURL.String(),
		Favicon: resolveFavicon(pageURL, iconHref),
	}, nil
}

// scanHead はHTMLから<title>のテキストとicon linkのhrefを取り出す。
// 壊れたHTMLでも読めた範囲の結果を返す。
func scanHead(r io.Reader) (title, iconHref string) {
	z := html.NewTokenizer(r)
	inTitle := false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(title), iconHref
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.Title:
				inTitle = title == "" && tt == html.StartTagToken
			case atom.Link:
				if iconHref == "" && hasAttr {
					iconHref = iconLinkHref(z)
				}
			case atom.Body:
				if title != "" {
					return strings.TrimSpace(title), iconHref
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Title {
				inTitle = false
			}
		case html.TextToken:
			if inTitle {
				title += string(z.Text())
			}
		}
	}
}

// iconLinkHref は現在の<link>のrelにiconが含まれる場合にhrefを返す。
func iconLinkHref(z *html.Tokenizer) string {
	var rel, href string
	for {
		key, val, more := z.TagAttr()
		switch strings.ToLower(string(key)) {
		case "rel":
			rel = strings.ToLower(string(val))
		case "href":
			href = strings.TrimSpace(string(val))
		}
		if !more {
			break
		}
	}
	if strings.Contains(rel, "icon") && href != "" {
		return href
	}
	return ""
}

func resolveFavicon(pageURL *url.URL, href string) string {
	if href != "" {
		if ref, err := url.Parse(href); err == nil {
			return pageURL.ResolveReference(ref).String()
		}
	}
	return fmt.Sprintf("%s://%s/favicon.ico", pageURL.Scheme, pageURL.Host)
}
