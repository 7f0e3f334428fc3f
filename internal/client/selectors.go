package client

// Toutiao DOM selectors and URLs. These are isolated here because the site
// changes its DOM frequently; update these when scraping breaks.

const (
	homeURL           = "https://www.toutiao.com/"
	searchURLFormat   = "https://so.toutiao.com/search?keyword=%s&pd=synthesis&source=input"
	articleURLFormat  = "https://www.toutiao.com/article/%s/"
	groupURLFormat    = "https://www.toutiao.com/group/%s/"
	headlinePublisher = "https://mp.toutiao.com/profile_v4/weitoutiao/publish"

	// Comment form
	commentArea     = `.ttp-comment-input, .comment-input`
	commentEditable = `[contenteditable="true"]`
	commentBlock    = `.ttp-comment-block, .ttp-comment-wrapper`

	// Article detail
	articleTitle   = `.article-title, h1, .title`
	articleContent = `.article-content, .content, article`

	// Headline publisher form
	headlineEditor    = `.ProseMirror, [contenteditable="true"]`
	headlinePublishBn = `发布` // matched by button text
)

// newsLinkSelectors are tried in order when scraping the hot-news listing.
var newsLinkSelectors = []string{
	`a[href*="/group/"]`,
	`a[href*="/article/"]`,
	`.title-link`,
	`a[class*="title"]`,
}
