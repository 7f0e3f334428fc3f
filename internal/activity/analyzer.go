package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/yhzhou/ttagent/internal/ledger"
)

// Analysis is the classification of one campaign page. It is stored as
// the analysis detail on the participation record.
type Analysis struct {
	ActivityTitle string               `json:"activity_title"`
	ActivityIntro string               `json:"activity_intro"`
	Operation     ledger.OperationKind `json:"operation_type"`
	Confidence    float64              `json:"confidence"`
	Detected      pageProbe            `json:"detected_elements"`
	Suggestion    string               `json:"suggested_action"`
}

// pageProbe is what the in-page script finds on a campaign page.
type pageProbe struct {
	PublishEntry bool `json:"publish_entry"`
	OneClick     bool `json:"one_click"`
	LikeShare    bool `json:"like_share"`
	FormFields   int  `json:"form_fields"`
	Editor       bool `json:"editor"`
}

// probeScript inspects the open campaign page for the controls that
// betray how the campaign is entered. Button text is matched against
// the platform's Chinese labels.
const probeScript = `(() => {
	const textOf = (el) => (el.innerText || el.textContent || '').trim();
	const clickable = Array.from(document.querySelectorAll('button, [role="button"], a, .byte-btn'));
	const hasButton = (words) => clickable.some((el) => {
		const t = textOf(el);
		return t && t.length < 30 && words.some((w) => t.includes(w));
	});
	return {
		publish_entry: hasButton(['发布', '参与话题', '去发文', '写微头条']),
		one_click: hasButton(['一键参与', '立即参与', '立即报名', '马上参与']),
		like_share: hasButton(['点赞', '转发', '分享']),
		form_fields: document.querySelectorAll('form input, form textarea, form select').length,
		editor: !!document.querySelector('[contenteditable="true"], .ProseMirror'),
	};
})()`

// Analyzer classifies campaign pages using a live browser context.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze opens the campaign page in browserCtx and guesses the entry
// operation. browserCtx must be a chromedp context with an
// authenticated session.
func (an *Analyzer) Analyze(browserCtx context.Context, act *Activity) (*Analysis, error) {
	runCtx, cancel := context.WithTimeout(browserCtx, time.Minute)
	defer cancel()

	var probe pageProbe
	err := chromedp.Run(runCtx,
		chromedp.Navigate(act.URL()),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(probeScript, &probe),
	)
	if err != nil {
		return nil, fmt.Errorf("probe activity page %d: %w", act.ActivityID, err)
	}

	res := &Analysis{
		ActivityTitle: act.Title,
		ActivityIntro: act.Introduction,
		Detected:      probe,
	}
	res.Operation, res.Confidence, res.Suggestion = classify(act, probe)
	return res, nil
}

// classify turns the probe into an operation guess. A campaign hashtag
// is the strongest signal: hashtag campaigns are entered by publishing
// an original micro-headline under the topic.
func classify(act *Activity, probe pageProbe) (ledger.OperationKind, float64, string) {
	hasHashtag := act.Hashtag() != ""
	switch {
	case hasHashtag && (probe.PublishEntry || probe.Editor):
		return ledger.OpGenerateContent, 0.9, "发布带话题 " + act.Hashtag() + " 的原创微头条"
	case hasHashtag:
		return ledger.OpGenerateContent, 0.7, "发布带话题 " + act.Hashtag() + " 的原创微头条"
	case probe.OneClick:
		return ledger.OpOneClick, 0.8, "点击页面上的一键参与按钮"
	case probe.FormFields > 0:
		return ledger.OpFillForm, 0.7, fmt.Sprintf("填写页面表单（%d 个字段）", probe.FormFields)
	case probe.PublishEntry || probe.Editor:
		return ledger.OpGenerateContent, 0.6, "通过页面发布入口提交原创内容"
	case probe.LikeShare:
		return ledger.OpLikeShare, 0.6, "对活动内容点赞或转发"
	default:
		return ledger.OpOther, 0.3, "未识别参与方式，请人工查看活动页面"
	}
}
